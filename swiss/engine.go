/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mikeb26/swisstd/internal"
	"github.com/mikeb26/swisstd/tournament"
	"github.com/sirupsen/logrus"
)

var (
	// ErrPairingInfeasible is returned when no legal pairing exists for the
	// next round.
	ErrPairingInfeasible = errors.New("no legal pairing exists")
	// ErrSearchLimit accompanies ErrPairingInfeasible when the search gave
	// up after MaxIterations steps.
	ErrSearchLimit = errors.New("pairing search limit reached")
)

const DefaultMaxIterations = 200000

// Engine produces Swiss pairings (Dutch system). It never mutates the
// tournament it is given; callers apply the returned round with
// Tournament.AddRound.
type Engine struct {
	// MaxIterations bounds the number of search steps per Pair call.
	MaxIterations int
	// RelaxColors allows a second search that ignores color constraints
	// when no pairing satisfies them. Rematches are never allowed. The
	// strict search forbids a third consecutive game with one color and a
	// color difference beyond plus or minus two, so it can report
	// ErrPairingInfeasible on histories that only the first rule would
	// allow.
	RelaxColors bool

	log *logrus.Entry
}

func NewEngine(maxIterations int, relaxColors bool) *Engine {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Engine{
		MaxIterations: maxIterations,
		RelaxColors:   relaxColors,
		log:           internal.Logger("swiss"),
	}
}

// Pair computes the next round. The tournament must be at a round boundary:
// either nothing paired yet or the current round fully scored with rounds
// remaining.
func (e *Engine) Pair(t *tournament.Tournament) (tournament.Round, error) {
	snap := t.Snapshot()

	st := snap.State()
	if st == tournament.StateInProgress || st == tournament.StateFinished {
		return tournament.Round{}, fmt.Errorf("swiss.Pair: tournament is %v: %w",
			st, tournament.ErrInvalidState)
	}
	next := snap.CurrentRoundNumber() + 1
	if next > snap.TotalRounds() {
		return tournament.Round{}, fmt.Errorf("swiss.Pair: round %d exceeds %d rounds: %w",
			next, snap.TotalRounds(), tournament.ErrInvalidState)
	}
	players := snap.Players()
	if len(players) == 0 {
		return tournament.Round{}, fmt.Errorf("swiss.Pair: round %d: no players: %w",
			next, ErrPairingInfeasible)
	}

	round := tournament.Round{Number: next}
	absent := make(map[int]bool)
	for _, b := range snap.RequestedByes(next) {
		round.Byes = append(round.Byes, b)
		absent[b.Player] = true
	}

	var entries []*entry
	for _, p := range players {
		if !absent[p.StartingRank] {
			entries = append(entries, newEntry(p))
		}
	}
	sortEntries(entries)
	for i, en := range entries {
		en.pos = i
	}

	s := newSearch(e.MaxIterations, true)
	pairs, bye, err := s.pairAll(entries)
	if err != nil && e.RelaxColors && !s.limitHit {
		e.log.Warnf("swiss.Pair: round %d: no pairing satisfies color constraints; relaxing",
			next)
		s = newSearch(e.MaxIterations, false)
		pairs, bye, err = s.pairAll(entries)
	}
	if err != nil {
		if s.limitHit {
			e.log.Warnf("swiss.Pair: round %d: search abandoned after %d steps",
				next, s.iter)
		}
		return tournament.Round{}, fmt.Errorf("swiss.Pair: round %d: %w", next, err)
	}

	byRank := make(map[int]*entry, len(entries))
	for _, en := range entries {
		byRank[en.rank] = en
	}
	for _, pr := range pairs {
		top, other := pr[0], pr[1]
		if other.pos < top.pos {
			top, other = other, top
		}
		round.Pairings = append(round.Pairings, tournament.Pairing{
			White: top.rank,
			Black: other.rank,
		})
	}
	tournament.OrderBoards(round.Pairings, func(rank int) float64 {
		return byRank[rank].score
	})
	initial := snap.InitialColor()
	for i := range round.Pairings {
		p := &round.Pairings[i]
		w, b := allocateColors(byRank[p.White], byRank[p.Black], i, initial)
		p.White, p.Black = w.rank, b.rank
	}
	if bye != nil {
		round.Byes = append(round.Byes, tournament.Bye{Player: bye.rank,
			Kind: tournament.ByePairing})
	}
	sort.SliceStable(round.Byes, func(i, j int) bool {
		return round.Byes[i].Player < round.Byes[j].Player
	})

	e.log.Debugf("swiss.Pair: round %d: %d boards, %d byes after %d steps",
		next, len(round.Pairings), len(round.Byes), s.iter)

	return round, nil
}
