/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package standings

import (
	"strings"
	"testing"

	"github.com/mikeb26/swisstd/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, players int, totalRounds int, rounds ...tournament.Round) *tournament.Tournament {
	t.Helper()
	tour := tournament.New(tournament.Info{}, totalRounds)
	for i := 0; i < players; i++ {
		_, err := tour.AddPlayer(tournament.Identity{
			Name:       string(rune('A' + i)),
			FideRating: 2000 - 100*i,
		})
		require.NoError(t, err)
	}
	for _, r := range rounds {
		require.NoError(t, tour.AddRound(r))
	}
	return tour
}

func pair(w, b int, res tournament.Result) tournament.Pairing {
	return tournament.Pairing{White: w, Black: b, Result: res}
}

// roundRobin4 yields scores 2.5, 0.5, 1.5, 1.5 for ranks 1..4.
func roundRobin4(t *testing.T) *tournament.Tournament {
	return build(t, 4, 3,
		tournament.Round{Pairings: []tournament.Pairing{
			pair(1, 3, tournament.ResultWhiteWins),
			pair(4, 2, tournament.ResultDraw),
		}},
		tournament.Round{Pairings: []tournament.Pairing{
			pair(2, 1, tournament.ResultBlackWins),
			pair(3, 4, tournament.ResultDraw),
		}},
		tournament.Round{Pairings: []tournament.Pairing{
			pair(1, 4, tournament.ResultDraw),
			pair(3, 2, tournament.ResultWhiteWins),
		}},
	)
}

func ranksOf(st []Standing) map[int]int {
	ret := make(map[int]int)
	for _, s := range st {
		ret[s.Player.StartingRank] = s.Rank
	}
	return ret
}

func TestStandingsBuchholz(t *testing.T) {
	tour := roundRobin4(t)

	st := NewCalculator(Buchholz{}, Buchholz{Cut: 1}).Compute(tour)
	require.Len(t, st, 4)

	want := map[int]struct {
		score, bh, bhc1 float64
		rank            int
	}{
		1: {2.5, 3.5, 3.0, 1},
		3: {1.5, 4.5, 4.0, 2},
		4: {1.5, 4.5, 4.0, 2},
		2: {0.5, 5.5, 4.0, 4},
	}
	for _, s := range st {
		w := want[s.Player.StartingRank]
		assert.Equal(t, w.score, s.Score, "rank %d score", s.Player.StartingRank)
		assert.Equal(t, w.bh, s.Tiebreaks[0], "rank %d BH", s.Player.StartingRank)
		assert.Equal(t, w.bhc1, s.Tiebreaks[1], "rank %d BH/C1", s.Player.StartingRank)
		assert.Equal(t, w.rank, s.Rank, "rank %d place", s.Player.StartingRank)
	}
	// shared places keep starting rank order
	assert.Equal(t, 3, st[1].Player.StartingRank)
	assert.Equal(t, 4, st[2].Player.StartingRank)
}

func TestStandingsLaterTiebreakSeparates(t *testing.T) {
	tour := roundRobin4(t)

	st := NewCalculator(Buchholz{}, DirectEncounter{}, Wins{}).Compute(tour)
	assert.Equal(t, map[int]int{1: 1, 3: 2, 4: 3, 2: 4}, ranksOf(st))
	// ranks 3 and 4 drew each other
	assert.Equal(t, 0.5, st[1].Tiebreaks[1])
	assert.Equal(t, 0.5, st[2].Tiebreaks[1])
	assert.Equal(t, 1.0, st[1].Tiebreaks[2])
	assert.Equal(t, 0.0, st[2].Tiebreaks[2])
}

func TestDirectEncounter(t *testing.T) {
	tour := build(t, 4, 2,
		tournament.Round{Pairings: []tournament.Pairing{
			pair(1, 2, tournament.ResultWhiteWins),
			pair(3, 4, tournament.ResultWhiteWins),
		}},
		tournament.Round{Pairings: []tournament.Pairing{
			pair(3, 1, tournament.ResultWhiteWins),
			pair(2, 4, tournament.ResultWhiteWins),
		}},
	)

	st := NewCalculator(DirectEncounter{}).Compute(tour)
	assert.Equal(t, map[int]int{3: 1, 1: 2, 2: 3, 4: 4}, ranksOf(st))
	assert.Equal(t, 1.0, st[1].Tiebreaks[0])
	assert.Equal(t, 0.0, st[2].Tiebreaks[0])

	// a group where not everybody met is not separated
	d := newData(tour.Players(), 2)
	assert.Equal(t, []float64{0, 0, 0}, DirectEncounter{}.Values(d, []int{0, 1, 3}))
	assert.Equal(t, []float64{0}, DirectEncounter{}.Values(d, []int{0}))
}

func TestBuchholzUnplayedRounds(t *testing.T) {
	tour := build(t, 3, 2,
		tournament.Round{
			Pairings: []tournament.Pairing{pair(1, 2, tournament.ResultWhiteWins)},
			Byes:     []tournament.Bye{{Player: 3, Kind: tournament.ByePairing}},
		},
		tournament.Round{
			Pairings: []tournament.Pairing{pair(3, 1, tournament.ResultWhiteWins)},
			Byes:     []tournament.Bye{{Player: 2, Kind: tournament.ByeZero}},
		},
	)

	st := NewCalculator(Buchholz{}, Buchholz{Cut: 1}).Compute(tour)
	got := make(map[int][]float64)
	for _, s := range st {
		got[s.Player.StartingRank] = s.Tiebreaks
	}
	// rank 2's trailing zero bye counts as a draw for its opponents
	assert.Equal(t, []float64{2.5, 2.0}, got[1])
	// own unplayed rounds count as the player's own score
	assert.Equal(t, []float64{1.0, 1.0}, got[2])
	assert.Equal(t, []float64{3.0, 2.0}, got[3])
}

func TestOtherTiebreaks(t *testing.T) {
	tour := build(t, 3, 2,
		tournament.Round{
			Pairings: []tournament.Pairing{pair(1, 2, tournament.ResultBlackWinsForfeit)},
			Byes:     []tournament.Bye{{Player: 3, Kind: tournament.ByePairing}},
		},
		tournament.Round{
			Pairings: []tournament.Pairing{pair(2, 3, tournament.ResultDraw)},
			Byes:     []tournament.Bye{{Player: 1, Kind: tournament.ByePairing}},
		},
	)
	tbs, err := ParseTiebreaks("PTS,WIN,WON,BPG,SB,AOB")
	require.NoError(t, err)
	st := NewCalculator(tbs...).Compute(tour)

	got := make(map[int][]float64)
	for _, s := range st {
		got[s.Player.StartingRank] = s.Tiebreaks
	}
	// WIN counts forfeit wins and byes, WON only games won over the board
	assert.Equal(t, 2.0, got[2][0]+got[3][0])
	assert.Equal(t, 0.0, got[2][1])
	assert.Equal(t, 1.0, got[3][2], "rank 3 played black in round 2")
	assert.Equal(t, 0.75, got[2][3], "SB: half of rank 3's 1.5")
	assert.Equal(t, 1.0, got[1][0], "bye counts as a win")
	assert.Equal(t, 0.0, got[1][4], "no games played")
}

func TestComputeAtAndInProgress(t *testing.T) {
	tour := roundRobin4(t)

	st := NewDefaultCalculator().ComputeAt(tour, 1)
	scores := make(map[int]float64)
	for _, s := range st {
		scores[s.Player.StartingRank] = s.Score
	}
	assert.Equal(t, map[int]float64{1: 1, 2: 0.5, 3: 0, 4: 0.5}, scores)

	inProgress := build(t, 4, 3,
		tournament.Round{Pairings: []tournament.Pairing{
			pair(1, 3, tournament.ResultWhiteWins),
			pair(4, 2, tournament.ResultWhiteWins),
		}},
		tournament.Round{Pairings: []tournament.Pairing{
			pair(2, 1, tournament.ResultUnset),
			pair(3, 4, tournament.ResultUnset),
		}},
	)
	for _, s := range NewDefaultCalculator().Compute(inProgress) {
		assert.Equal(t, s.Player.ScoreAfter(1), s.Score)
	}
}

func TestStandingsMonotonic(t *testing.T) {
	st := NewDefaultCalculator().Compute(roundRobin4(t))
	for i := range st {
		for j := range st {
			if st[i].Score < st[j].Score {
				assert.Greater(t, st[i].Rank, st[j].Rank)
			}
		}
	}
}

func TestParseTiebreaks(t *testing.T) {
	tbs, err := ParseTiebreaks(" bh/c2 , DE,AOB")
	require.NoError(t, err)
	var codes []string
	for _, tb := range tbs {
		codes = append(codes, tb.Code())
	}
	assert.Equal(t, []string{"BH/C2", "DE", "AOB"}, codes)

	for _, bad := range []string{"XX", "BH/C0", "BH/Cx"} {
		_, err := ParseTiebreaks(bad)
		assert.Error(t, err, bad)
	}
}

func TestBuildOutputs(t *testing.T) {
	tour := roundRobin4(t)
	calc := NewCalculator(Buchholz{})
	st := calc.Compute(tour)

	out := BuildStandingsOutput(st, calc.Tiebreaks())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "Place"))
	assert.Contains(t, lines[0], "BH")
	assert.True(t, strings.HasPrefix(lines[1], "1."))
	assert.True(t, strings.HasPrefix(lines[2], "2."))
	// shared second place
	assert.True(t, strings.HasPrefix(lines[3], " "))

	xt := BuildCrossTableOutput(tour, st)
	assert.Contains(t, xt, "W3(w)")
	assert.Contains(t, xt, "D4(b)")
	assert.NotContains(t, xt, "forfeit")
}
