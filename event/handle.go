/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package event

import (
	"github.com/google/uuid"
	"github.com/mikeb26/swisstd/standings"
	"github.com/mikeb26/swisstd/tournament"
)

// Handle refers to a tournament by position without owning it. Every
// accessor checks that the position still holds the same tournament.
type Handle struct {
	ev    *Event
	index int
	id    uuid.UUID
}

func (h Handle) ID() uuid.UUID {
	return h.id
}

func (h Handle) Index() int {
	return h.index
}

func (h Handle) with(fn func(t *tournament.Tournament)) error {
	if h.ev == nil {
		return ErrStaleHandle
	}
	h.ev.mu.RLock()
	defer h.ev.mu.RUnlock()

	if h.index < 0 || h.index >= len(h.ev.entries) ||
		h.ev.entries[h.index].id != h.id {
		return ErrStaleHandle
	}
	fn(h.ev.entries[h.index].t)
	return nil
}

func (h Handle) PlayerCount() (n int, err error) {
	err = h.with(func(t *tournament.Tournament) {
		n = t.PlayerCount()
	})
	return n, err
}

func (h Handle) RatedPlayerCount() (n int, err error) {
	err = h.with(func(t *tournament.Tournament) {
		n = t.RatedPlayerCount()
	})
	return n, err
}

// CurrentRound is 0 before the first round is paired.
func (h Handle) CurrentRound() (n int, err error) {
	err = h.with(func(t *tournament.Tournament) {
		n = t.CurrentRoundNumber()
	})
	return n, err
}

// Pairings returns the boards of the current round.
func (h Handle) Pairings() (ret []tournament.Pairing, err error) {
	err = h.with(func(t *tournament.Tournament) {
		n := t.CurrentRoundNumber()
		if n == 0 {
			return
		}
		if r, rerr := t.Round(n); rerr == nil {
			ret = r.Pairings
		}
	})
	return ret, err
}

func (h Handle) Standings() (ret []standings.Standing, err error) {
	err = h.with(func(t *tournament.Tournament) {
		ret = h.ev.calc.Compute(t)
	})
	return ret, err
}

// Tournament returns a copy of the tournament's current state.
func (h Handle) Tournament() (ret *tournament.Tournament, err error) {
	err = h.with(func(t *tournament.Tournament) {
		ret = t.Snapshot()
	})
	return ret, err
}
