package draw

import (
	"context"

	"github.com/Dosada05/football-tournaments/models"
)

type Params struct {
	AgeGroup *models.AgeGroup
	Pots     []models.Pot
	// Seed makes the draw reproducible. Nil means "pick one".
	Seed *int64
}

type DrawnTeam struct {
	RegistrationID int
	ClubID         int
	PotNumber      int
	Position       int
}

type DrawnGroup struct {
	Name  string
	Teams []DrawnTeam
}

type Result struct {
	Seed   int64
	Groups []DrawnGroup
}

type Generator interface {
	Draw(ctx context.Context, params Params) (*Result, error)

	GetName() string
}

// GroupName returns "A" for 0, "B" for 1 and so on.
func GroupName(i int) string {
	return string(rune('A' + i))
}
