package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/football-tournaments/models"
)

func intPtr(i int) *int { return &i }

func reg(id, club int, pot *int) models.Registration {
	return models.Registration{ID: id, ClubID: club, PotNumber: pot, Status: models.RegistrationApproved}
}

func potsWithCounts(counts ...int) []models.Pot {
	pots := make([]models.Pot, models.MaxPotNumber)
	id := 1
	for i := range pots {
		pots[i].PotNumber = i + 1
		if i < len(counts) {
			for j := 0; j < counts[i]; j++ {
				pots[i].Teams = append(pots[i].Teams, reg(id, id, intPtr(i+1)))
				id++
			}
			pots[i].Count = counts[i]
		}
	}
	return pots
}

func TestBuildPots(t *testing.T) {
	regs := []models.Registration{
		reg(5, 1, intPtr(2)),
		reg(2, 2, intPtr(1)),
		reg(9, 3, nil),
		reg(1, 4, intPtr(1)),
		reg(3, 5, intPtr(7)),
	}

	pots, unassigned := BuildPots(regs)

	require.Len(t, pots, models.MaxPotNumber)
	assert.Equal(t, 2, pots[0].Count)
	assert.Equal(t, 1, pots[0].Teams[0].ID)
	assert.Equal(t, 2, pots[0].Teams[1].ID)
	assert.Equal(t, 1, pots[1].Count)
	assert.Equal(t, 0, pots[2].Count)
	assert.NotNil(t, pots[3].Teams)

	require.Len(t, unassigned, 2)
	assert.Equal(t, 3, unassigned[0].ID)
	assert.Equal(t, 9, unassigned[1].ID)
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name               string
		pots               []models.Pot
		totalRegistrations int
		numberOfGroups     int
		wantReady          bool
		wantReasons        int
	}{
		{
			name:               "four equal pots split into four groups",
			pots:               potsWithCounts(4, 4, 4, 4),
			totalRegistrations: 16,
			numberOfGroups:     4,
			wantReady:          true,
		},
		{
			name:               "two pots used, rest empty",
			pots:               potsWithCounts(3, 3),
			totalRegistrations: 6,
			numberOfGroups:     2,
			wantReady:          true,
		},
		{
			name:               "one team left outside the pots",
			pots:               potsWithCounts(4, 4),
			totalRegistrations: 9,
			numberOfGroups:     2,
			wantReasons:        1,
		},
		{
			name:               "unequal non-empty pots",
			pots:               potsWithCounts(4, 2, 0, 2),
			totalRegistrations: 8,
			numberOfGroups:     2,
			wantReasons:        1,
		},
		{
			name:               "total not divisible by groups",
			pots:               potsWithCounts(3, 3, 3),
			totalRegistrations: 9,
			numberOfGroups:     2,
			wantReasons:        1,
		},
		{
			name:               "no groups configured",
			pots:               potsWithCounts(2, 2),
			totalRegistrations: 4,
			numberOfGroups:     0,
			wantReasons:        1,
		},
		{
			name:               "nothing to draw",
			pots:               potsWithCounts(),
			totalRegistrations: 0,
			numberOfGroups:     2,
			wantReasons:        1,
		},
		{
			name:               "every rule broken at once",
			pots:               potsWithCounts(3, 2),
			totalRegistrations: 7,
			numberOfGroups:     2,
			wantReasons:        3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CheckReadiness(tt.pots, tt.totalRegistrations, tt.numberOfGroups)
			assert.Equal(t, tt.wantReady, r.CanExecute)
			assert.Len(t, r.Reasons, tt.wantReasons, "reasons: %v", r.Reasons)
			assert.NotNil(t, r.Reasons)
		})
	}
}
