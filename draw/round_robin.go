package draw

import (
	"context"
	"fmt"
	"sort"
)

// Match is one fixture of a group stage.
type Match struct {
	UID          string
	Round        int
	OrderInRound int
	HomeID       int
	AwayID       int
}

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() *RoundRobinGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateFixtures builds a single round-robin schedule with the circle method:
// the first team stays fixed, the rest rotate one place per round. An odd field
// gets a bye slot (0) and byes are not emitted. Home/away alternates per round
// for the fixed team.
func (g *RoundRobinGenerator) GenerateFixtures(ctx context.Context, groupName string, teamIDs []int) ([]*Match, error) {
	if len(teamIDs) < 2 {
		return nil, fmt.Errorf("RoundRobinGenerator: not enough teams in group %s (found %d, min 2 required)", groupName, len(teamIDs))
	}

	slots := make([]int, len(teamIDs))
	copy(slots, teamIDs)
	if len(slots)%2 == 1 {
		slots = append(slots, 0)
	}
	n := len(slots)
	rounds := n - 1

	matches := make([]*Match, 0, rounds*n/2)
	for round := 1; round <= rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		order := 0
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home == 0 || away == 0 {
				continue
			}
			if i == 0 && round%2 == 0 {
				home, away = away, home
			}
			order++
			matches = append(matches, &Match{
				UID:          fmt.Sprintf("G%s_R%dM%d", groupName, round, order),
				Round:        round,
				OrderInRound: order,
				HomeID:       home,
				AwayID:       away,
			})
		}

		// rotate everything but the first slot clockwise
		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		return matches[i].OrderInRound < matches[j].OrderInRound
	})

	return matches, nil
}
