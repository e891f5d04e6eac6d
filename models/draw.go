package models

import "time"

const (
	MinPotNumber = 1
	MaxPotNumber = 4
)

func ValidPotNumber(n int) bool {
	return n >= MinPotNumber && n <= MaxPotNumber
}

// Pot is one of the four seeding pots of an age group.
type Pot struct {
	PotNumber int            `json:"potNumber"`
	Count     int            `json:"count"`
	Teams     []Registration `json:"teams"`
}

// PotOverview is what the pots page renders: the four pots, the teams not yet
// placed and whether the draw can run.
type PotOverview struct {
	AgeGroupID         int            `json:"ageGroupId"`
	NumberOfGroups     int            `json:"numberOfGroups"`
	Pots               []Pot          `json:"pots"`
	Unassigned         []Registration `json:"unassigned"`
	TotalAssigned      int            `json:"totalAssigned"`
	TotalRegistrations int            `json:"totalRegistrations"`
	CanExecuteDraw     bool           `json:"canExecuteDraw"`
	Reasons            []string       `json:"reasons"`
	DrawCompleted      bool           `json:"drawCompleted"`
}

type PotAssignment struct {
	RegistrationID int  `json:"registrationId" validate:"required,gt=0"`
	PotNumber      *int `json:"potNumber" validate:"omitempty,min=1,max=4"`
}

type Group struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournamentId" db:"tournament_id"`
	AgeGroupID   int         `json:"ageGroupId" db:"age_group_id"`
	Name         string      `json:"name" db:"name"`
	Seed         int64       `json:"seed" db:"seed"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	Teams        []GroupTeam `json:"teams" db:"-"`
	Fixtures     []Fixture   `json:"fixtures" db:"-"`
}

type GroupTeam struct {
	RegistrationID int    `json:"registrationId" db:"registration_id"`
	TeamName       string `json:"teamName" db:"-"`
	ClubID         int    `json:"clubId" db:"-"`
	ClubName       string `json:"clubName,omitempty" db:"-"`
	PotNumber      int    `json:"potNumber" db:"pot_number"`
	Position       int    `json:"position" db:"position"`
}

type Fixture struct {
	ID           int `json:"id" db:"id"`
	GroupID      int `json:"groupId" db:"group_id"`
	Round        int `json:"round" db:"round"`
	OrderInRound int `json:"orderInRound" db:"order_in_round"`
	HomeTeamID   int `json:"homeRegistrationId" db:"home_registration_id"`
	AwayTeamID   int `json:"awayRegistrationId" db:"away_registration_id"`
}
