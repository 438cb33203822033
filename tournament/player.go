/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"slices"
	"time"

	"github.com/mikeb26/swisstd/internal"
)

// Identity holds the fields of a player that do not depend on results.
type Identity struct {
	StartingRank int
	FideID       string
	Name         string
	Federation   string
	Sex          Sex
	Title        Title
	// BirthDate is kept as written (yyyy/mm/dd or yyyy).
	BirthDate      string
	FideRating     int
	NationalRating int
}

// Rating is the rating used for seeding: FIDE when known, else national.
func (id Identity) Rating() int {
	if id.FideRating > 0 {
		return id.FideRating
	}
	return id.NationalRating
}

// Rated reports whether the player holds a FIDE rating.
func (id Identity) Rated() bool {
	return id.FideRating > 0
}

func (id Identity) Birth() time.Time {
	return internal.ParseDateOrZero(id.BirthDate)
}

// Slot is one player's view of one round.
type Slot struct {
	Round    int
	Opponent int
	Color    Color
	Outcome  Outcome
}

// Player is a tournament participant. Everything outside Identity is derived
// from the tournament's rounds and rebuilt on every mutation.
type Player struct {
	Identity

	Score float64
	// Colors has one entry per round; ColorNone where no game was played.
	Colors []Color
	// Opponents lists starting ranks of every opponent paired against, in
	// round order.
	Opponents []int
	// Byes has one entry per round, set where the player received a
	// pairing-allocated or full-point bye.
	Byes  []bool
	Slots []Slot
}

// HasMet reports whether the player was already paired against rank.
func (p Player) HasMet(rank int) bool {
	return slices.Contains(p.Opponents, rank)
}

// ReceivedBye reports whether the player received a point-scoring bye in any
// round so far.
func (p Player) ReceivedBye() bool {
	return slices.Contains(p.Byes, true)
}

// PlayedColors returns the colors of games actually played, in order.
func (p Player) PlayedColors() []Color {
	ret := make([]Color, 0, len(p.Colors))
	for _, c := range p.Colors {
		if c != ColorNone {
			ret = append(ret, c)
		}
	}
	return ret
}

// ScoreAfter returns the score accumulated over the first n rounds.
func (p Player) ScoreAfter(n int) float64 {
	score := 0.0
	for i := 0; i < n && i < len(p.Slots); i++ {
		score += p.Slots[i].Outcome.Points()
	}
	return score
}

func (p Player) clone() Player {
	p.Colors = slices.Clone(p.Colors)
	p.Opponents = slices.Clone(p.Opponents)
	p.Byes = slices.Clone(p.Byes)
	p.Slots = slices.Clone(p.Slots)
	return p
}

func (p *Player) reset() {
	p.Score = 0
	p.Colors = p.Colors[:0]
	p.Opponents = p.Opponents[:0]
	p.Byes = p.Byes[:0]
	p.Slots = p.Slots[:0]
}

func (p *Player) record(s Slot) {
	p.Slots = append(p.Slots, s)
	p.Score += s.Outcome.Points()
	if s.Outcome.Played() {
		p.Colors = append(p.Colors, s.Color)
	} else {
		p.Colors = append(p.Colors, ColorNone)
	}
	if s.Opponent != 0 {
		p.Opponents = append(p.Opponents, s.Opponent)
	}
	p.Byes = append(p.Byes, s.Outcome == OutcomePairingBye ||
		s.Outcome == OutcomeFullBye)
}
