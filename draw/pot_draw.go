package draw

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Dosada05/football-tournaments/models"
)

const MaxGroups = 26

var ErrNotReady = errors.New("pot distribution is not ready for a draw")

type PotDrawGenerator struct {
	now func() time.Time
}

func NewPotDrawGenerator() Generator {
	return &PotDrawGenerator{now: time.Now}
}

func (g *PotDrawGenerator) GetName() string {
	return "PotDraw"
}

// Draw deals the teams of pot 1..4 into groups A, B, ... in one continuing
// cycle, so every group ends up with total/numberOfGroups teams. Each pot is
// shuffled first and dealt in rounds of at most numberOfGroups slots. Inside a
// round teams are matched to slots so that the number of groups receiving a
// club they already hold is minimal; a clash only remains when no arrangement
// of the round avoids it.
func (g *PotDrawGenerator) Draw(ctx context.Context, params Params) (*Result, error) {
	if params.AgeGroup == nil {
		return nil, errors.New("PotDrawGenerator: age group is required")
	}
	numGroups := params.AgeGroup.NumberOfGroups
	if numGroups > MaxGroups {
		return nil, fmt.Errorf("PotDrawGenerator: at most %d groups supported, got %d", MaxGroups, numGroups)
	}

	total := 0
	for _, p := range params.Pots {
		total += p.Count
	}
	readiness := CheckReadiness(params.Pots, total, numGroups)
	if !readiness.CanExecute {
		return nil, fmt.Errorf("%w: %v", ErrNotReady, readiness.Reasons)
	}

	seed := g.now().UnixNano()
	if params.Seed != nil {
		seed = *params.Seed
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))

	groups := make([]DrawnGroup, numGroups)
	clubsInGroup := make([]map[int]bool, numGroups)
	for i := range groups {
		groups[i] = DrawnGroup{Name: GroupName(i), Teams: make([]DrawnTeam, 0, total/numGroups)}
		clubsInGroup[i] = make(map[int]bool)
	}

	cursor := 0
	for _, pot := range params.Pots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pot.Count == 0 {
			continue
		}

		remaining := make([]models.Registration, len(pot.Teams))
		copy(remaining, pot.Teams)
		rng.Shuffle(len(remaining), func(i, j int) { remaining[i], remaining[j] = remaining[j], remaining[i] })

		for len(remaining) > 0 {
			n := min(numGroups, len(remaining))
			slots := make([]int, n)
			for k := range slots {
				slots[k] = (cursor + k) % numGroups
			}

			picks := matchSlots(slots, remaining, clubsInGroup)
			taken := make([]bool, len(remaining))
			for k, gi := range slots {
				reg := remaining[picks[k]]
				taken[picks[k]] = true
				groups[gi].Teams = append(groups[gi].Teams, DrawnTeam{
					RegistrationID: reg.ID,
					ClubID:         reg.ClubID,
					PotNumber:      pot.PotNumber,
					Position:       len(groups[gi].Teams) + 1,
				})
				clubsInGroup[gi][reg.ClubID] = true
			}
			cursor += n

			rest := make([]models.Registration, 0, len(remaining)-n)
			for i, reg := range remaining {
				if !taken[i] {
					rest = append(rest, reg)
				}
			}
			remaining = rest
		}
	}

	return &Result{Seed: seed, Groups: groups}, nil
}

// matchSlots returns, for every slot, the index of the team it takes.
// Максимальное паросочетание (augmenting paths): ребро slot-team есть, если клуба
// команды ещё нет в группе слота. Teams are tried in their (shuffled) order, so
// the result depends only on the seed. Unmatched slots get the leftover teams in
// order. len(teams) must be >= len(slots).
func matchSlots(slots []int, teams []models.Registration, clubsInGroup []map[int]bool) []int {
	slotTeam := make([]int, len(slots))
	teamSlot := make([]int, len(teams))
	for i := range slotTeam {
		slotTeam[i] = -1
	}
	for i := range teamSlot {
		teamSlot[i] = -1
	}

	var augment func(s int, visited []bool) bool
	augment = func(s int, visited []bool) bool {
		for t, reg := range teams {
			if visited[t] || clubsInGroup[slots[s]][reg.ClubID] {
				continue
			}
			visited[t] = true
			if teamSlot[t] == -1 || augment(teamSlot[t], visited) {
				teamSlot[t] = s
				slotTeam[s] = t
				return true
			}
		}
		return false
	}
	for s := range slots {
		augment(s, make([]bool, len(teams)))
	}

	next := 0
	for s := range slotTeam {
		if slotTeam[s] != -1 {
			continue
		}
		for teamSlot[next] != -1 {
			next++
		}
		slotTeam[s] = next
		teamSlot[next] = s
	}
	return slotTeam
}
