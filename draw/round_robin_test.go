package draw

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobin_EveryPairOnce(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6} {
		teams := make([]int, n)
		for i := range teams {
			teams[i] = 10 + i
		}

		matches, err := NewRoundRobinGenerator().GenerateFixtures(context.Background(), "A", teams)
		require.NoError(t, err)
		require.Len(t, matches, n*(n-1)/2, "teams=%d", n)

		pairs := make(map[[2]int]int)
		perRound := make(map[int]map[int]bool)
		for _, m := range matches {
			a, b := m.HomeID, m.AwayID
			if a > b {
				a, b = b, a
			}
			pairs[[2]int{a, b}]++

			if perRound[m.Round] == nil {
				perRound[m.Round] = make(map[int]bool)
			}
			assert.False(t, perRound[m.Round][m.HomeID], "team %d plays twice in round %d", m.HomeID, m.Round)
			assert.False(t, perRound[m.Round][m.AwayID], "team %d plays twice in round %d", m.AwayID, m.Round)
			perRound[m.Round][m.HomeID] = true
			perRound[m.Round][m.AwayID] = true
		}
		for pair, count := range pairs {
			assert.Equal(t, 1, count, "pair %v", pair)
		}

		wantRounds := n - 1
		if n%2 == 1 {
			wantRounds = n
		}
		assert.Len(t, perRound, wantRounds, "teams=%d", n)
	}
}

func TestRoundRobin_NeedsTwoTeams(t *testing.T) {
	_, err := NewRoundRobinGenerator().GenerateFixtures(context.Background(), "B", []int{1})
	require.Error(t, err)
}

func TestRoundRobin_UIDs(t *testing.T) {
	matches, err := NewRoundRobinGenerator().GenerateFixtures(context.Background(), "C", []int{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, "GC_R1M1", matches[0].UID)
	assert.Equal(t, 1, matches[0].Round)
	assert.Equal(t, 3, matches[len(matches)-1].Round)
}
