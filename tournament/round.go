/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"slices"
	"sort"
)

// Pairing is one board of a round. White and Black are starting ranks.
type Pairing struct {
	Board  int
	White  int
	Black  int
	Result Result
}

// Bye records a player who sits out a round.
type Bye struct {
	Player int
	Kind   ByeKind
}

// Round is one round of play: the boards in order plus every player without
// an opponent. At most one Bye is of kind ByePairing.
type Round struct {
	Number int
	// Date is kept as written (yy/MM/dd).
	Date     string
	Pairings []Pairing
	Byes     []Bye
}

// Complete reports whether every board has a result.
func (r Round) Complete() bool {
	for _, p := range r.Pairings {
		if p.Result == ResultUnset {
			return false
		}
	}
	return true
}

// PairingBye returns the player who received the pairing-allocated bye.
func (r Round) PairingBye() (int, bool) {
	for _, b := range r.Byes {
		if b.Kind == ByePairing {
			return b.Player, true
		}
	}
	return 0, false
}

// Pairing returns the pairing on the given board.
func (r Round) Pairing(board int) (Pairing, bool) {
	for _, p := range r.Pairings {
		if p.Board == board {
			return p, true
		}
	}
	return Pairing{}, false
}

func (r Round) clone() Round {
	r.Pairings = slices.Clone(r.Pairings)
	r.Byes = slices.Clone(r.Byes)
	return r
}

// OrderBoards sorts pairings by the higher score of the two players, then by
// their combined score, then by the best starting rank, and renumbers boards
// from 1.
func OrderBoards(pairings []Pairing, score func(rank int) float64) {
	type key struct {
		top, sum float64
		minRank  int
	}
	keyOf := func(p Pairing) key {
		w, b := score(p.White), score(p.Black)
		return key{top: max(w, b), sum: w + b, minRank: min(p.White, p.Black)}
	}
	sort.SliceStable(pairings, func(i, j int) bool {
		a, b := keyOf(pairings[i]), keyOf(pairings[j])
		if a.top != b.top {
			return a.top > b.top
		}
		if a.sum != b.sum {
			return a.sum > b.sum
		}
		return a.minRank < b.minRank
	})
	for i := range pairings {
		pairings[i].Board = i + 1
	}
}
