package models

import "time"

type AgeGroup struct {
	ID              int        `json:"id" db:"id"`
	TournamentID    int        `json:"tournamentId" db:"tournament_id"`
	Name            string     `json:"name" db:"name"`
	BirthYearFrom   int        `json:"birthYearFrom" db:"birth_year_from"`
	BirthYearTo     int        `json:"birthYearTo" db:"birth_year_to"`
	MaxTeams        int        `json:"maxTeams" db:"max_teams"`
	NumberOfGroups  int        `json:"numberOfGroups" db:"number_of_groups"`
	DrawCompletedAt *time.Time `json:"drawCompletedAt,omitempty" db:"draw_completed_at"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
}

func (a *AgeGroup) DrawCompleted() bool {
	return a.DrawCompletedAt != nil
}
