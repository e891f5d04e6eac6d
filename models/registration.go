package models

import "time"

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationApproved  RegistrationStatus = "approved"
	RegistrationRejected  RegistrationStatus = "rejected"
	RegistrationWithdrawn RegistrationStatus = "withdrawn"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected, RegistrationWithdrawn:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

type Registration struct {
	ID            int                `json:"id" db:"id"`
	TournamentID  int                `json:"tournamentId" db:"tournament_id"`
	AgeGroupID    int                `json:"ageGroupId" db:"age_group_id"`
	ClubID        int                `json:"clubId" db:"club_id"`
	TeamName      string             `json:"teamName" db:"team_name"`
	CoachName     string             `json:"coachName" db:"coach_name"`
	ContactEmail  string             `json:"contactEmail" db:"contact_email"`
	ContactPhone  *string            `json:"contactPhone,omitempty" db:"contact_phone"`
	Notes         *string            `json:"notes,omitempty" db:"notes"`
	Status        RegistrationStatus `json:"status" db:"status"`
	PaymentStatus PaymentStatus      `json:"paymentStatus" db:"payment_status"`
	PotNumber     *int               `json:"potNumber,omitempty" db:"pot_number"`
	GroupID       *int               `json:"groupId,omitempty" db:"group_id"`
	CreatedAt     time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" db:"updated_at"`

	// Заполняется join'ом при выборке списков.
	ClubName string `json:"clubName,omitempty" db:"-"`
}

type RegistrationFilter struct {
	TournamentID *int
	AgeGroupID   *int
	ClubID       *int
	// ManagedBy ограничивает выборку регистрациями клубов пользователя.
	ManagedBy *int
	Status    *RegistrationStatus
	Search    string
	PageRequest
}
