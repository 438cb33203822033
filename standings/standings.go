/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package standings

import (
	"math"
	"sort"

	"github.com/mikeb26/swisstd/tournament"
)

// DefaultTiebreaks is used when no tie-breaks are configured.
const DefaultTiebreaks = "BH/C1,BH,DE,WIN"

// Standing is one line of the standings.
type Standing struct {
	Player tournament.Player
	// Rank is shared by players equal on points and every tie-break.
	Rank      int
	Score     float64
	Tiebreaks []float64
}

// Calculator ranks players by points and then by its tie-breaks in order.
// It keeps no state between calls.
type Calculator struct {
	tiebreaks []Tiebreak
}

func NewCalculator(tiebreaks ...Tiebreak) *Calculator {
	return &Calculator{tiebreaks: tiebreaks}
}

// NewDefaultCalculator uses DefaultTiebreaks.
func NewDefaultCalculator() *Calculator {
	tbs, _ := ParseTiebreaks(DefaultTiebreaks)
	return NewCalculator(tbs...)
}

func (c *Calculator) Tiebreaks() []Tiebreak {
	return append([]Tiebreak(nil), c.tiebreaks...)
}

// Compute ranks players over every completed round.
func (c *Calculator) Compute(t *tournament.Tournament) []Standing {
	snap := t.Snapshot()
	return c.compute(snap.Players(), completedRounds(snap))
}

// ComputeAt ranks players over the first round rounds only.
func (c *Calculator) ComputeAt(t *tournament.Tournament, round int) []Standing {
	snap := t.Snapshot()
	if done := completedRounds(snap); round > done {
		round = done
	}
	if round < 0 {
		round = 0
	}
	return c.compute(snap.Players(), round)
}

func completedRounds(t *tournament.Tournament) int {
	n := t.CurrentRoundNumber()
	if t.State() == tournament.StateInProgress {
		n--
	}
	return n
}

func (c *Calculator) compute(players []tournament.Player, rounds int) []Standing {
	d := newData(players, rounds)
	ret := make([]Standing, len(players))
	for i, p := range players {
		ret[i] = Standing{
			Player:    p,
			Score:     d.Score(i),
			Tiebreaks: make([]float64, len(c.tiebreaks)),
		}
	}

	// each tie-break only sees players still level on everything before it
	groups := partition(indexes(len(players)), func(i int) []float64 {
		return []float64{ret[i].Score}
	})
	for k, tb := range c.tiebreaks {
		for _, g := range groups {
			for m, v := range tb.Values(d, g) {
				ret[g[m]].Tiebreaks[k] = v
			}
		}
		var next [][]int
		for _, g := range groups {
			next = append(next, partition(g, func(i int) []float64 {
				return []float64{ret[i].Tiebreaks[k]}
			})...)
		}
		groups = next
	}

	sort.SliceStable(ret, func(i, j int) bool {
		if order := compare(ret[i], ret[j]); order != 0 {
			return order > 0
		}
		return ret[i].Player.StartingRank < ret[j].Player.StartingRank
	})
	for i := range ret {
		if i > 0 && compare(ret[i], ret[i-1]) == 0 {
			ret[i].Rank = ret[i-1].Rank
		} else {
			ret[i].Rank = i + 1
		}
	}

	return ret
}

const epsilon = 1e-9

func cmpFloat(a, b float64) int {
	switch {
	case math.Abs(a-b) < epsilon:
		return 0
	case a > b:
		return 1
	default:
		return -1
	}
}

// compare orders by score and then tie-breaks; positive means a ranks
// ahead of b.
func compare(a, b Standing) int {
	if c := cmpFloat(a.Score, b.Score); c != 0 {
		return c
	}
	for k := range a.Tiebreaks {
		if c := cmpFloat(a.Tiebreaks[k], b.Tiebreaks[k]); c != 0 {
			return c
		}
	}
	return 0
}

func indexes(n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = i
	}
	return ret
}

// partition splits members into runs with equal keys, preserving order
// within each run.
func partition(members []int, key func(i int) []float64) [][]int {
	var ret [][]int
	for _, i := range members {
		placed := false
		for g := range ret {
			if equalKeys(key(ret[g][0]), key(i)) {
				ret[g] = append(ret[g], i)
				placed = true
				break
			}
		}
		if !placed {
			ret = append(ret, []int{i})
		}
	}
	return ret
}

func equalKeys(a, b []float64) bool {
	for k := range a {
		if cmpFloat(a[k], b[k]) != 0 {
			return false
		}
	}
	return true
}
