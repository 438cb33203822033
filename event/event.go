/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package event

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/mikeb26/swisstd/internal"
	"github.com/mikeb26/swisstd/ratings"
	"github.com/mikeb26/swisstd/standings"
	"github.com/mikeb26/swisstd/swiss"
	"github.com/mikeb26/swisstd/tournament"
	"github.com/mikeb26/swisstd/trf"
	"github.com/sirupsen/logrus"
)

var (
	// ErrStaleHandle is returned through a Handle whose tournament was
	// removed or moved.
	ErrStaleHandle      = errors.New("stale tournament handle")
	ErrNoSuchTournament = errors.New("no such tournament")
)

// Announcer publishes text to players, e.g. a chat channel.
type Announcer interface {
	Announce(ctx context.Context, title string, body string) error
}

type Options struct {
	Engine     *swiss.Engine
	Calculator *standings.Calculator
	// Ratings is optional; without it enrichment is a no-op.
	Ratings   *ratings.Holder
	Policy    ratings.Policy
	Announcer Announcer
}

type entry struct {
	id uuid.UUID
	t  *tournament.Tournament
}

// Event is the working context of one organizer session: the open
// tournaments plus the services they share. It is safe for concurrent use.
type Event struct {
	mu      sync.RWMutex
	entries []entry

	engine    *swiss.Engine
	calc      *standings.Calculator
	ratings   *ratings.Holder
	policy    ratings.Policy
	announcer Announcer
	log       *logrus.Entry
}

func New(opts Options) *Event {
	if opts.Engine == nil {
		opts.Engine = swiss.NewEngine(swiss.DefaultMaxIterations, false)
	}
	if opts.Calculator == nil {
		opts.Calculator = standings.NewDefaultCalculator()
	}
	if opts.Policy == "" {
		opts.Policy = ratings.PolicyFillUnset
	}

	return &Event{
		engine:    opts.Engine,
		calc:      opts.Calculator,
		ratings:   opts.Ratings,
		policy:    opts.Policy,
		announcer: opts.Announcer,
		log:       internal.Logger("event"),
	}
}

func (ev *Event) NumberOfTournaments() int {
	ev.mu.RLock()
	defer ev.mu.RUnlock()

	return len(ev.entries)
}

// Tournament returns a handle to the i'th open tournament (0-based).
func (ev *Event) Tournament(i int) (Handle, error) {
	ev.mu.RLock()
	defer ev.mu.RUnlock()

	if i < 0 || i >= len(ev.entries) {
		return Handle{}, fmt.Errorf("event.Tournament(%d): %w", i, ErrNoSuchTournament)
	}
	return Handle{ev: ev, index: i, id: ev.entries[i].id}, nil
}

// lookup returns the i'th tournament; caller holds ev.mu.
func (ev *Event) lookup(i int) (*tournament.Tournament, error) {
	if i < 0 || i >= len(ev.entries) {
		return nil, fmt.Errorf("tournament %d: %w", i, ErrNoSuchTournament)
	}
	return ev.entries[i].t, nil
}

func (ev *Event) add(t *tournament.Tournament) Handle {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	id := uuid.New()
	ev.entries = append(ev.entries, entry{id: id, t: t})
	ev.log.WithField("tournament", id).Infof("event: opened %q (%d players)",
		t.Info().Name, t.PlayerCount())

	return Handle{ev: ev, index: len(ev.entries) - 1, id: id}
}

// CreateTournament opens a new empty tournament.
func (ev *Event) CreateTournament(info tournament.Info, totalRounds int) Handle {
	return ev.add(tournament.New(info, totalRounds))
}

// ImportTournament reads a tournament report and opens it. Players carrying
// a federation id are enriched from the current rating catalog.
func (ev *Event) ImportTournament(r io.Reader) (Handle, error) {
	t, err := trf.Parse(r)
	if err != nil {
		return Handle{}, fmt.Errorf("event.ImportTournament: %w", err)
	}
	if ev.ratings != nil {
		if _, err := ratings.Enrich(t, ev.ratings.Current(), ev.policy); err != nil {
			return Handle{}, fmt.Errorf("event.ImportTournament: %w", err)
		}
	}

	return ev.add(t), nil
}

// ExportTournament writes the i'th tournament as a report.
func (ev *Event) ExportTournament(i int, w io.Writer, opts ...trf.Option) error {
	ev.mu.RLock()
	t, err := ev.lookup(i)
	ev.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("event.ExportTournament: %w", err)
	}

	opts = append([]trf.Option{trf.WithCalculator(ev.calc)}, opts...)
	return trf.Write(w, t, opts...)
}

// RemoveTournament closes the i'th tournament. Handles to it, and to every
// tournament after it, become stale.
func (ev *Event) RemoveTournament(i int) error {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	if _, err := ev.lookup(i); err != nil {
		return fmt.Errorf("event.RemoveTournament: %w", err)
	}
	ev.log.WithField("tournament", ev.entries[i].id).Info("event: closed")
	ev.entries = append(ev.entries[:i], ev.entries[i+1:]...)

	return nil
}

// PairNextRound pairs and applies the next round of the i'th tournament,
// then announces the pairings. A failed announcement is logged and does not
// undo the round.
func (ev *Event) PairNextRound(ctx context.Context, i int) (tournament.Round, error) {
	ev.mu.Lock()
	t, err := ev.lookup(i)
	if err != nil {
		ev.mu.Unlock()
		return tournament.Round{}, fmt.Errorf("event.PairNextRound: %w", err)
	}
	round, err := ev.engine.Pair(t)
	if err == nil {
		err = t.AddRound(round)
	}
	ev.mu.Unlock()
	if err != nil {
		return tournament.Round{}, fmt.Errorf("event.PairNextRound: %w", err)
	}

	if ev.announcer != nil {
		out, err := tournament.BuildPairingsOutput(t, round.Number)
		if err == nil {
			err = ev.announcer.Announce(ctx,
				fmt.Sprintf("Round %d Pairings", round.Number), out)
		}
		if err != nil {
			ev.log.Warnf("event.PairNextRound: announcing round %d: %v",
				round.Number, err)
		}
	}

	return round, nil
}

// Modify runs fn against the i'th tournament with exclusive access. Use it
// for player and bye management between rounds.
func (ev *Event) Modify(i int, fn func(t *tournament.Tournament) error) error {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	t, err := ev.lookup(i)
	if err != nil {
		return fmt.Errorf("event.Modify: %w", err)
	}
	return fn(t)
}

func (ev *Event) RecordResult(i int, round int, board int, res tournament.Result) error {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	t, err := ev.lookup(i)
	if err != nil {
		return fmt.Errorf("event.RecordResult: %w", err)
	}
	return t.RecordResult(round, board, res)
}

// AnnounceStandings publishes the current standings of the i'th tournament.
func (ev *Event) AnnounceStandings(ctx context.Context, i int) error {
	if ev.announcer == nil {
		return nil
	}
	ev.mu.RLock()
	t, err := ev.lookup(i)
	ev.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("event.AnnounceStandings: %w", err)
	}

	st := ev.calc.Compute(t)
	title := "Standings"
	if name := t.Info().Name; name != "" {
		title = name + " Standings"
	}
	return ev.announcer.Announce(ctx, title,
		standings.BuildStandingsOutput(st, ev.calc.Tiebreaks()))
}

// EnrichRatings applies the current catalog to the i'th tournament and
// returns the number of players updated.
func (ev *Event) EnrichRatings(i int) (int, error) {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	t, err := ev.lookup(i)
	if err != nil {
		return 0, fmt.Errorf("event.EnrichRatings: %w", err)
	}
	if ev.ratings == nil {
		return 0, nil
	}
	return ratings.Enrich(t, ev.ratings.Current(), ev.policy)
}

// RefreshRatings downloads the configured rating lists and enriches every
// open tournament. On failure the previous catalog stays in use and no
// tournament is touched.
func (ev *Event) RefreshRatings(ctx context.Context) (int, error) {
	if ev.ratings == nil {
		return 0, fmt.Errorf("event.RefreshRatings: %w", ratings.ErrNoSources)
	}
	c, err := ev.ratings.Refresh(ctx)
	if err != nil {
		return 0, fmt.Errorf("event.RefreshRatings: %w", err)
	}

	ev.mu.Lock()
	defer ev.mu.Unlock()

	updated := 0
	for _, e := range ev.entries {
		n, err := ratings.Enrich(e.t, c, ev.policy)
		updated += n
		if err != nil {
			return updated, fmt.Errorf("event.RefreshRatings: tournament %v: %w",
				e.id, err)
		}
	}
	ev.log.Infof("event.RefreshRatings: %d players updated across %d tournaments",
		updated, len(ev.entries))

	return updated, nil
}
