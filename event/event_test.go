/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package event

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mikeb26/swisstd/ratings"
	"github.com/mikeb26/swisstd/tournament"
	"github.com/mikeb26/swisstd/trf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	titles []string
	bodies []string
	err    error
}

func (r *recorder) Announce(_ context.Context, title string, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	r.bodies = append(r.bodies, body)
	return r.err
}

func addPlayers(t *testing.T, ev *Event, i int, ids ...tournament.Identity) {
	t.Helper()
	require.NoError(t, ev.Modify(i, func(tour *tournament.Tournament) error {
		for _, id := range ids {
			if _, err := tour.AddPlayer(id); err != nil {
				return err
			}
		}
		return nil
	}))
}

func fourPlayers() []tournament.Identity {
	return []tournament.Identity{
		{Name: "Adams, Ann", FideRating: 2000},
		{Name: "Brown, Bob", FideRating: 1900},
		{Name: "Cole, Cat", FideRating: 1800},
		{Name: "Dunn, Dan", FideRating: 1700},
	}
}

func TestHandlesGoStale(t *testing.T) {
	ev := New(Options{})
	h0 := ev.CreateTournament(tournament.Info{Name: "Open"}, 5)
	h1 := ev.CreateTournament(tournament.Info{Name: "Reserve"}, 5)
	assert.Equal(t, 2, ev.NumberOfTournaments())
	assert.NotEqual(t, h0.ID(), h1.ID())

	got, err := ev.Tournament(1)
	require.NoError(t, err)
	assert.Equal(t, h1.ID(), got.ID())
	_, err = ev.Tournament(2)
	assert.ErrorIs(t, err, ErrNoSuchTournament)

	addPlayers(t, ev, 1, fourPlayers()...)
	n, err := h1.PlayerCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, ev.RemoveTournament(0))
	_, err = h0.PlayerCount()
	assert.ErrorIs(t, err, ErrStaleHandle)
	// the reserve moved to index 0
	_, err = h1.CurrentRound()
	assert.ErrorIs(t, err, ErrStaleHandle)

	moved, err := ev.Tournament(0)
	require.NoError(t, err)
	assert.Equal(t, h1.ID(), moved.ID())
	n, err = moved.RatedPlayerCount()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = Handle{}.Standings()
	assert.ErrorIs(t, err, ErrStaleHandle)
	assert.ErrorIs(t, ev.RemoveTournament(3), ErrNoSuchTournament)
}

func TestPairNextRound(t *testing.T) {
	ann := &recorder{}
	ev := New(Options{Announcer: ann})
	h := ev.CreateTournament(tournament.Info{Name: "Club Swiss"}, 3)
	addPlayers(t, ev, 0, fourPlayers()...)

	pairings, err := h.Pairings()
	require.NoError(t, err)
	assert.Empty(t, pairings)

	round, err := ev.PairNextRound(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, round.Number)

	pairings, err = h.Pairings()
	require.NoError(t, err)
	assert.Equal(t, []tournament.Pairing{
		{Board: 1, White: 1, Black: 3},
		{Board: 2, White: 4, Black: 2},
	}, pairings)
	require.Len(t, ann.titles, 1)
	assert.Equal(t, "Round 1 Pairings", ann.titles[0])
	assert.Contains(t, ann.bodies[0], "Adams, Ann")

	// round still open
	_, err = ev.PairNextRound(context.Background(), 0)
	assert.ErrorIs(t, err, tournament.ErrInvalidState)

	require.NoError(t, ev.RecordResult(0, 1, 1, tournament.ResultWhiteWins))
	require.NoError(t, ev.RecordResult(0, 1, 2, tournament.ResultDraw))
	assert.ErrorIs(t, ev.RecordResult(0, 1, 7, tournament.ResultDraw),
		tournament.ErrNoSuchPairing)

	st, err := h.Standings()
	require.NoError(t, err)
	require.Len(t, st, 4)
	assert.Equal(t, 1, st[0].Player.StartingRank)
	assert.Equal(t, 1.0, st[0].Score)

	require.NoError(t, ev.AnnounceStandings(context.Background(), 0))
	require.Len(t, ann.titles, 2)
	assert.Equal(t, "Club Swiss Standings", ann.titles[1])

	cur, err := h.CurrentRound()
	require.NoError(t, err)
	assert.Equal(t, 1, cur)
}

func TestAnnounceFailureKeepsRound(t *testing.T) {
	ann := &recorder{err: errors.New("webhook down")}
	ev := New(Options{Announcer: ann})
	h := ev.CreateTournament(tournament.Info{}, 3)
	addPlayers(t, ev, 0, fourPlayers()...)

	_, err := ev.PairNextRound(context.Background(), 0)
	require.NoError(t, err)
	cur, err := h.CurrentRound()
	require.NoError(t, err)
	assert.Equal(t, 1, cur)
	assert.Len(t, ann.titles, 1)
}

func TestImportExport(t *testing.T) {
	src := tournament.New(tournament.Info{Name: "Spring Open"}, 3)
	for _, id := range fourPlayers() {
		_, err := src.AddPlayer(id)
		require.NoError(t, err)
	}
	require.NoError(t, src.AddRound(tournament.Round{
		Pairings: []tournament.Pairing{
			{White: 1, Black: 3, Result: tournament.ResultWhiteWins},
			{White: 4, Black: 2, Result: tournament.ResultBlackWins},
		},
	}))
	text, err := trf.Serialize(src)
	require.NoError(t, err)

	ev := New(Options{})
	h, err := ev.ImportTournament(strings.NewReader(text))
	require.NoError(t, err)
	cur, err := h.CurrentRound()
	require.NoError(t, err)
	assert.Equal(t, 1, cur)

	var buf bytes.Buffer
	require.NoError(t, ev.ExportTournament(h.Index(), &buf))
	assert.Equal(t, text, buf.String())

	_, err = ev.ImportTournament(strings.NewReader("001 abc\n"))
	var fe *trf.FormatError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, 1, ev.NumberOfTournaments())
}

func fideList(id string, name string, rating string) string {
	line := []rune(strings.Repeat(" ", 162))
	copy(line[0:], []rune(id))
	copy(line[15:], []rune(name))
	copy(line[76:], []rune("NOR"))
	copy(line[84:], []rune("GM"))
	copy(line[113:], []rune(rating))
	return "ID Number      Name\n" + string(line) + "\n"
}

func ratingServer(t *testing.T, fail *atomic.Bool) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, fideList("1503014", "Carlsen, Magnus", "2833"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newHolder(srv *httptest.Server) *ratings.Holder {
	f := ratings.NewFetcher(srv.Client(), ratings.FetcherOptions{
		RequestsPerMinute: 6000,
		MaxFailures:       10,
	})
	return ratings.NewHolder(f, []ratings.Source{
		{Name: "fide", URL: srv.URL, Format: ratings.FormatFIDE},
	})
}

func TestRefreshRatings(t *testing.T) {
	var fail atomic.Bool
	srv := ratingServer(t, &fail)
	ev := New(Options{Ratings: newHolder(srv)})
	h := ev.CreateTournament(tournament.Info{}, 5)
	addPlayers(t, ev, 0,
		tournament.Identity{Name: "Carlsen, Magnus", FideID: "1503014"},
		tournament.Identity{Name: "Guest, Gus", NationalRating: 1500})

	n, err := h.RatedPlayerCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	updated, err := ev.RefreshRatings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	snap, err := h.Tournament()
	require.NoError(t, err)
	p, err := snap.Player(1)
	require.NoError(t, err)
	assert.Equal(t, 2833, p.FideRating)
	assert.Equal(t, tournament.GM, p.Title)

	// already filled; nothing changes
	updated, err = ev.EnrichRatings(0)
	require.NoError(t, err)
	assert.Equal(t, 0, updated)

	fail.Store(true)
	_, err = ev.RefreshRatings(context.Background())
	var fe *ratings.FetchError
	assert.ErrorAs(t, err, &fe)
	_, ok := ev.ratings.Lookup("1503014")
	assert.True(t, ok)
}

func TestRefreshWithoutSources(t *testing.T) {
	ev := New(Options{})
	_, err := ev.RefreshRatings(context.Background())
	assert.ErrorIs(t, err, ratings.ErrNoSources)
	ev.CreateTournament(tournament.Info{}, 3)
	n, err := ev.EnrichRatings(0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	_, err := NewScheduler(New(Options{}), "every tuesday", 0)
	assert.Error(t, err)
}

func TestSchedulerRefreshes(t *testing.T) {
	var fail atomic.Bool
	srv := ratingServer(t, &fail)
	ev := New(Options{Ratings: newHolder(srv)})
	ev.CreateTournament(tournament.Info{}, 5)
	addPlayers(t, ev, 0, tournament.Identity{Name: "Carlsen", FideID: "1503014"})

	s, err := NewScheduler(ev, "@every 1s", time.Second)
	require.NoError(t, err)
	done := make(chan int, 1)
	s.AfterRefresh = func(updated int, err error) {
		if err == nil {
			select {
			case done <- updated:
			default:
			}
		}
	}
	s.Start()
	defer s.Stop()
	assert.False(t, s.Next().IsZero())

	select {
	case updated := <-done:
		assert.Equal(t, 1, updated)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled refresh did not run")
	}
	h, err := ev.Tournament(0)
	require.NoError(t, err)
	n, err := h.RatedPlayerCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
