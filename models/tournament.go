package models

import "time"

type TournamentStatus string

const (
	TournamentDraft              TournamentStatus = "draft"
	TournamentRegistrationOpen   TournamentStatus = "registration_open"
	TournamentRegistrationClosed TournamentStatus = "registration_closed"
	TournamentInProgress         TournamentStatus = "in_progress"
	TournamentCompleted          TournamentStatus = "completed"
	TournamentCancelled          TournamentStatus = "cancelled"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentDraft, TournamentRegistrationOpen, TournamentRegistrationClosed,
		TournamentInProgress, TournamentCompleted, TournamentCancelled:
		return true
	}
	return false
}

func (s TournamentStatus) Terminal() bool {
	return s == TournamentCompleted || s == TournamentCancelled
}

type Tournament struct {
	ID                   int              `json:"id" db:"id"`
	Name                 string           `json:"name" db:"name"`
	Description          *string          `json:"description,omitempty" db:"description"`
	Location             string           `json:"location" db:"location"`
	StartDate            time.Time        `json:"startDate" db:"start_date"`
	EndDate              time.Time        `json:"endDate" db:"end_date"`
	RegistrationDeadline time.Time        `json:"registrationDeadline" db:"registration_deadline"`
	Status               TournamentStatus `json:"status" db:"status"`
	OrganizerID          int              `json:"organizerId" db:"organizer_id"`
	EntryFee             int64            `json:"entryFee" db:"entry_fee"`
	Currency             string           `json:"currency" db:"currency"`
	CreatedAt            time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time        `json:"updatedAt" db:"updated_at"`
	LogoKey              *string          `json:"-" db:"logo_key"`
	LogoURL              *string          `json:"logoUrl,omitempty" db:"-"`

	AgeGroups []AgeGroup `json:"ageGroups,omitempty" db:"-"`
}

type TournamentFilter struct {
	Search      string
	Status      *TournamentStatus
	OrganizerID *int
	PageRequest
}
