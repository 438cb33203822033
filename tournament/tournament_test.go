/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFourPlayer(t *testing.T) *Tournament {
	t.Helper()
	tour := New(Info{Name: "Club Swiss"}, 3)
	for _, id := range []Identity{
		{Name: "A", FideRating: 1500},
		{Name: "B", FideRating: 1400},
		{Name: "C", FideRating: 1300},
		{Name: "D", FideRating: 1200},
	} {
		_, err := tour.AddPlayer(id)
		require.NoError(t, err)
	}
	return tour
}

func round1() Round {
	return Round{Pairings: []Pairing{
		{White: 1, Black: 3},
		{White: 4, Black: 2},
	}}
}

func TestAddPlayerAssignsRanks(t *testing.T) {
	tour := newFourPlayer(t)
	assert.Equal(t, 4, tour.PlayerCount())
	assert.Equal(t, 4, tour.RatedPlayerCount())

	rank, err := tour.AddPlayer(Identity{Name: "E", NationalRating: 1100})
	require.NoError(t, err)
	assert.Equal(t, 5, rank)
	assert.Equal(t, 4, tour.RatedPlayerCount())

	_, err = tour.AddPlayer(Identity{StartingRank: 2, Name: "dup"})
	assert.ErrorIs(t, err, ErrDuplicateRank)
}

func TestStateMachine(t *testing.T) {
	tour := newFourPlayer(t)
	assert.Equal(t, StateCreated, tour.State())
	assert.Equal(t, 0, tour.CurrentRoundNumber())

	require.NoError(t, tour.AddRound(round1()))
	assert.Equal(t, StateInProgress, tour.State())
	assert.Equal(t, 1, tour.CurrentRoundNumber())

	// cannot pair ahead while results are missing
	err := tour.AddRound(Round{Pairings: []Pairing{{White: 1, Black: 2}}})
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, tour.RecordResult(1, 1, ResultWhiteWins))
	require.NoError(t, tour.RecordResult(1, 2, ResultDraw))
	assert.Equal(t, StateRoundComplete, tour.State())
	assert.False(t, tour.IsComplete())

	require.NoError(t, tour.AddRound(Round{Pairings: []Pairing{
		{White: 2, Black: 1, Result: ResultBlackWins},
		{White: 3, Black: 4, Result: ResultDraw},
	}}))
	require.NoError(t, tour.AddRound(Round{Pairings: []Pairing{
		{White: 1, Black: 4, Result: ResultDraw},
		{White: 3, Black: 2, Result: ResultWhiteWins},
	}}))
	assert.Equal(t, StateFinished, tour.State())
	assert.True(t, tour.IsComplete())

	_, err = tour.AddPlayer(Identity{Name: "late"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecordResultErrors(t *testing.T) {
	tour := newFourPlayer(t)

	err := tour.RecordResult(1, 1, ResultDraw)
	assert.ErrorIs(t, err, ErrInvalidState, "no round paired yet")

	require.NoError(t, tour.AddRound(round1()))
	cases := []struct {
		name  string
		round int
		board int
		res   Result
		want  error
	}{
		{"future round", 2, 1, ResultDraw, ErrInvalidState},
		{"round zero", 0, 1, ResultDraw, ErrInvalidState},
		{"missing board", 1, 7, ResultDraw, ErrNoSuchPairing},
		{"bogus result", 1, 1, Result(99), ErrInvalidResult},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := tour.RecordResult(c.round, c.board, c.res)
			if !assert.ErrorIs(t, err, c.want) {
				return
			}
			r, _ := tour.Round(1)
			for _, p := range r.Pairings {
				assert.Equal(t, ResultUnset, p.Result, "%s: state changed", c.name)
			}
		})
	}

	// closed rounds cannot be edited
	require.NoError(t, tour.RecordResult(1, 1, ResultDraw))
	require.NoError(t, tour.RecordResult(1, 2, ResultDraw))
	require.NoError(t, tour.AddRound(Round{Pairings: []Pairing{
		{White: 2, Black: 1}, {White: 3, Black: 4},
	}}))
	assert.ErrorIs(t, tour.RecordResult(1, 1, ResultWhiteWins), ErrInvalidState)
}

func TestRemovePlayer(t *testing.T) {
	tour := newFourPlayer(t)
	require.NoError(t, tour.RemovePlayer(4))
	assert.Equal(t, 3, tour.PlayerCount())
	assert.ErrorIs(t, tour.RemovePlayer(4), ErrNoSuchPlayer)

	require.NoError(t, tour.AddRound(Round{
		Pairings: []Pairing{{White: 1, Black: 2}},
		Byes:     []Bye{{Player: 3, Kind: ByePairing}},
	}))
	assert.ErrorIs(t, tour.RemovePlayer(1), ErrInvalidState)
	assert.Equal(t, 3, tour.PlayerCount())
}

func TestAddRoundValidation(t *testing.T) {
	cases := []struct {
		name  string
		round Round
		want  error
	}{
		{"unknown player", Round{Pairings: []Pairing{{White: 1, Black: 9}}}, ErrNoSuchPlayer},
		{"self pairing", Round{Pairings: []Pairing{{White: 1, Black: 1}}}, ErrInvalidRound},
		{"twice", Round{Pairings: []Pairing{{White: 1, Black: 2}, {White: 2, Black: 3}}}, ErrInvalidRound},
		{"pairing and bye", Round{
			Pairings: []Pairing{{White: 1, Black: 2}},
			Byes:     []Bye{{Player: 2, Kind: ByeHalf}},
		}, ErrInvalidRound},
		{"two pairing byes", Round{
			Pairings: []Pairing{{White: 1, Black: 2}},
			Byes:     []Bye{{Player: 3, Kind: ByePairing}, {Player: 4, Kind: ByePairing}},
		}, ErrInvalidRound},
		{"wrong number", Round{Number: 3, Pairings: []Pairing{{White: 1, Black: 2}}}, ErrInvalidState},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tour := newFourPlayer(t)
			assert.ErrorIs(t, tour.AddRound(c.round), c.want)
			assert.Equal(t, 0, tour.CurrentRoundNumber())
		})
	}
}

func TestRoundsNeverExceedTotal(t *testing.T) {
	tour := New(Info{Name: "No rounds"}, 0)
	assert.Equal(t, 1, tour.TotalRounds())
	for _, id := range []Identity{{Name: "A"}, {Name: "B"}} {
		_, err := tour.AddPlayer(id)
		require.NoError(t, err)
	}

	require.NoError(t, tour.AddRound(Round{Pairings: []Pairing{
		{White: 1, Black: 2, Result: ResultDraw},
	}}))
	assert.Equal(t, StateFinished, tour.State())

	err := tour.AddRound(Round{Byes: []Bye{
		{Player: 1, Kind: ByeFull},
		{Player: 2, Kind: ByeFull},
	}})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, tour.CurrentRoundNumber())
	assert.LessOrEqual(t, tour.CurrentRoundNumber(), tour.TotalRounds())
}

func TestAddRoundRejectsRematch(t *testing.T) {
	tour := newFourPlayer(t)
	r := round1()
	r.Pairings[0].Result = ResultDraw
	r.Pairings[1].Result = ResultDraw
	require.NoError(t, tour.AddRound(r))

	err := tour.AddRound(Round{Pairings: []Pairing{{White: 3, Black: 1}, {White: 2, Black: 4}}})
	assert.ErrorIs(t, err, ErrInvalidRound)
}

func TestDerivedState(t *testing.T) {
	tour := New(Info{}, 5)
	for i := 0; i < 5; i++ {
		_, err := tour.AddPlayer(Identity{Name: string(rune('A' + i))})
		require.NoError(t, err)
	}
	require.NoError(t, tour.AddRound(Round{
		Pairings: []Pairing{
			{White: 1, Black: 3, Result: ResultWhiteWins},
			{White: 4, Black: 2, Result: ResultBlackWinsForfeit},
		},
		Byes: []Bye{{Player: 5, Kind: ByePairing}},
	}))

	p1, err := tour.Player(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p1.Score)
	assert.Equal(t, []Color{White}, p1.Colors)
	assert.Equal(t, []int{3}, p1.Opponents)
	assert.True(t, p1.HasMet(3))
	assert.False(t, p1.ReceivedBye())

	p2, err := tour.Player(2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p2.Score)
	// forfeited games carry no color
	assert.Equal(t, []Color{ColorNone}, p2.Colors)
	assert.Empty(t, p2.PlayedColors())
	assert.True(t, p2.HasMet(4))

	p5, err := tour.Player(5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p5.Score)
	assert.Equal(t, []bool{true}, p5.Byes)
	assert.True(t, p5.ReceivedBye())
	assert.Empty(t, p5.Opponents)

	// late entry between rounds is recorded as not paired
	rank, err := tour.AddPlayer(Identity{Name: "F"})
	require.NoError(t, err)
	late, err := tour.Player(rank)
	require.NoError(t, err)
	require.Len(t, late.Slots, 1)
	assert.Equal(t, OutcomeNotPaired, late.Slots[0].Outcome)
	assert.Equal(t, 0.0, late.Score)
}

func TestSortPlayers(t *testing.T) {
	tour := New(Info{}, 5)
	for _, id := range []Identity{
		{Name: "Low", FideRating: 1200},
		{Name: "Zed", FideRating: 2400, Title: IM},
		{Name: "Abe", FideRating: 2400, Title: IM},
		{Name: "Top", FideRating: 2400, Title: GM},
		{Name: "National", NationalRating: 1800},
	} {
		_, err := tour.AddPlayer(id)
		require.NoError(t, err)
	}
	require.NoError(t, tour.SetRequestedBye(1, 2, ByeHalf))
	require.NoError(t, tour.SortPlayers())

	var names []string
	for _, p := range tour.Players() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Top", "Abe", "Zed", "National", "Low"}, names)
	// the request follows the player to the new rank
	assert.Equal(t, []Bye{{Player: 5, Kind: ByeHalf}}, tour.RequestedByes(2))

	require.NoError(t, tour.AddRound(Round{Pairings: []Pairing{{White: 1, Black: 2}}}))
	assert.ErrorIs(t, tour.SortPlayers(), ErrInvalidState)
}

func TestRequestedByesAndWithdraw(t *testing.T) {
	tour := newFourPlayer(t)

	assert.Error(t, tour.SetRequestedBye(1, 1, ByePairing))
	assert.ErrorIs(t, tour.SetRequestedBye(1, 4, ByeHalf), ErrInvalidState)
	require.NoError(t, tour.SetRequestedBye(2, 2, ByeHalf))

	require.NoError(t, tour.AddRound(round1()))
	assert.ErrorIs(t, tour.SetRequestedBye(3, 1, ByeHalf), ErrInvalidState)

	require.NoError(t, tour.Withdraw(4))
	assert.Equal(t, []Bye{{Player: 2, Kind: ByeHalf}, {Player: 4, Kind: ByeZero}},
		tour.RequestedByes(2))
	assert.Equal(t, []Bye{{Player: 4, Kind: ByeZero}}, tour.RequestedByes(3))

	require.NoError(t, tour.ClearRequestedBye(2, 2))
	assert.Equal(t, []Bye{{Player: 4, Kind: ByeZero}}, tour.RequestedByes(2))
}

func TestUnpairCurrentRound(t *testing.T) {
	tour := newFourPlayer(t)
	assert.ErrorIs(t, tour.UnpairCurrentRound(), ErrInvalidState)

	require.NoError(t, tour.AddRound(round1()))
	require.NoError(t, tour.UnpairCurrentRound())
	assert.Equal(t, 0, tour.CurrentRoundNumber())

	require.NoError(t, tour.AddRound(round1()))
	require.NoError(t, tour.RecordResult(1, 1, ResultDraw))
	assert.ErrorIs(t, tour.UnpairCurrentRound(), ErrInvalidState)
	assert.Equal(t, 1, tour.CurrentRoundNumber())
}

func TestSnapshotIsIndependent(t *testing.T) {
	tour := newFourPlayer(t)
	require.NoError(t, tour.AddRound(round1()))

	snap := tour.Snapshot()
	require.NoError(t, tour.RecordResult(1, 1, ResultWhiteWins))
	require.NoError(t, tour.UpdatePlayer(1, func(id *Identity) {
		id.Name = "Renamed"
		id.StartingRank = 42
	}))

	sr, err := snap.Round(1)
	require.NoError(t, err)
	assert.Equal(t, ResultUnset, sr.Pairings[0].Result)
	sp, err := snap.Player(1)
	require.NoError(t, err)
	assert.Equal(t, "A", sp.Name)

	p, err := tour.Player(1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)
	assert.Equal(t, 1.0, p.Score)
}

func TestResultOutcomes(t *testing.T) {
	for r := ResultUnset; r <= ResultDoubleLoss; r++ {
		w, b := r.Outcomes()
		got, ok := ResultFromOutcomes(w, b)
		if !ok || got != r {
			t.Errorf("ResultFromOutcomes(%v) = %v, %v; want %v", r, got, ok, r)
		}
		parsed, err := ParseResult(r.String())
		if err != nil || parsed != r {
			t.Errorf("ParseResult(%q) = %v, %v; want %v", r.String(), parsed, err, r)
		}
	}
	wp, bp := ResultDraw.Points()
	assert.Equal(t, 0.5, wp)
	assert.Equal(t, 0.5, bp)
	assert.False(t, ResultWhiteWinsForfeit.Played())
	assert.True(t, ResultDrawUnrated.Played())

	_, err := ParseResult("2-0")
	assert.ErrorIs(t, err, ErrInvalidResult)
}

func TestParseTitle(t *testing.T) {
	cases := []struct {
		in   string
		want Title
		ok   bool
	}{
		{"GM", GM, true},
		{" wgm", WGM, true},
		{"wf", WFM, true},
		{"m", IM, true},
		{"wm", WIM, true},
		{"", TitleNone, true},
		{"XYZ", TitleNone, false},
	}
	for _, c := range cases {
		got, ok := ParseTitle(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseTitle(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
	assert.Less(t, GM.Strength(), WGM.Strength())
	assert.Less(t, WCM.Strength(), TitleNone.Strength())
}

func TestBuildPairingsOutput(t *testing.T) {
	tour := New(Info{Name: "Club Swiss"}, 3)
	for _, id := range []Identity{
		{Name: "Alice", FideRating: 1500},
		{Name: "Bob", FideRating: 1400},
		{Name: "Carol", FideRating: 1300},
	} {
		_, err := tour.AddPlayer(id)
		require.NoError(t, err)
	}
	require.NoError(t, tour.AddRound(Round{
		Pairings: []Pairing{{White: 1, Black: 2, Result: ResultWhiteWins}},
		Byes:     []Bye{{Player: 3, Kind: ByePairing}},
	}))

	out, err := BuildPairingsOutput(tour, 1)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Club Swiss", lines[0])
	assert.True(t, strings.HasPrefix(lines[3], "Board"))
	assert.Contains(t, lines[4], "Alice(1500 0)")
	assert.Contains(t, lines[4], "1-0")
	assert.Contains(t, lines[5], "BYE(1)")

	_, err = BuildPairingsOutput(tour, 2)
	assert.ErrorIs(t, err, ErrNoSuchRound)
}
