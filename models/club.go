package models

import "time"

type Club struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	ShortName    string    `json:"shortName" db:"short_name"`
	City         string    `json:"city" db:"city"`
	Country      string    `json:"country" db:"country"`
	FoundedYear  *int      `json:"foundedYear,omitempty" db:"founded_year"`
	ContactEmail string    `json:"contactEmail" db:"contact_email"`
	ContactPhone *string   `json:"contactPhone,omitempty" db:"contact_phone"`
	ManagerID    int       `json:"managerId" db:"manager_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logoUrl,omitempty" db:"-"`
}

type ClubFilter struct {
	Search  string
	Country string
	// ManagedBy ограничивает выборку клубами, где пользователь менеджер.
	ManagedBy *int
	PageRequest
}
