/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mikeb26/swisstd/announce"
	"github.com/mikeb26/swisstd/config"
	"github.com/mikeb26/swisstd/event"
	"github.com/mikeb26/swisstd/internal"
	"github.com/mikeb26/swisstd/ratings"
	"github.com/mikeb26/swisstd/standings"
	"github.com/mikeb26/swisstd/swiss"
	"github.com/mikeb26/swisstd/tournament"
	"github.com/mikeb26/swisstd/trf"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var errNoFile = errors.New("no tournament file given; use --file or TDPAIR_FILE")

// session is the state of one command invocation: the configuration, the
// event holding the tournament read from the report file, and the services
// the event uses.
type session struct {
	out    io.Writer
	path   string
	cfg    *config.Config
	calc   *standings.Calculator
	holder *ratings.Holder
	ev     *event.Event
	log    *logrus.Entry
}

func (s *session) setup(cCtx *cli.Context) error {
	if env := cCtx.String("env"); env != "" {
		if err := godotenv.Load(env); err != nil {
			return fmt.Errorf("loading %v: %w", env, err)
		}
	} else {
		// optional
		_ = godotenv.Load()
	}

	cfg, err := config.LoadConfig(cCtx.String("config"))
	if err != nil {
		return err
	}
	internal.InitLogger(cfg.Log.Level, cfg.Log.Format)
	s.cfg = cfg
	s.path = cCtx.String("file")
	s.log = internal.Logger("tdpair")

	tbs, err := standings.ParseTiebreaks(cfg.Standings.Tiebreaks)
	if err != nil {
		return fmt.Errorf("standings.tiebreaks: %w", err)
	}
	s.calc = standings.NewCalculator(tbs...)
	policy, err := ratings.ParsePolicy(cfg.Ratings.Policy)
	if err != nil {
		return err
	}
	s.holder, err = newHolder(cCtx.Context, cfg)
	if err != nil {
		return err
	}

	var ann event.Announcer
	if d := cfg.Announce.Discord; d.WebhookID != "" {
		disc, err := announce.NewDiscord(d.WebhookID, d.WebhookToken)
		if err != nil {
			return err
		}
		ann = disc
	}

	s.ev = event.New(event.Options{
		Engine:     swiss.NewEngine(cfg.Pairing.MaxIterations, cfg.Pairing.RelaxColors),
		Calculator: s.calc,
		Ratings:    s.holder,
		Policy:     policy,
		Announcer:  ann,
	})

	return nil
}

// newHolder builds the rating catalog holder. Without configured sources
// the holder can still take lists loaded from disk.
func newHolder(ctx context.Context, cfg *config.Config) (*ratings.Holder, error) {
	rc := cfg.Ratings
	if len(rc.Sources) == 0 {
		return ratings.NewHolder(nil, nil), nil
	}

	sources := make([]ratings.Source, 0, len(rc.Sources))
	for _, src := range rc.Sources {
		format, err := ratings.ParseFormat(src.Format)
		if err != nil {
			return nil, err
		}
		sources = append(sources, ratings.Source{Name: src.Name, URL: src.URL,
			Format: format})
	}
	client := internal.NewCachedHttpClient(ctx, internal.CacheOptions{
		Bucket: rc.Cache.Bucket,
		Gzip:   rc.Cache.Gzip,
		MaxAge: rc.Cache.MaxAge,
	})
	fetcher := ratings.NewFetcher(client, ratings.FetcherOptions{
		RequestsPerMinute: rc.RequestsPerMinute,
		Timeout:           rc.Timeout,
		MaxFailures:       rc.Breaker.MaxFailures,
		BreakerTimeout:    rc.Breaker.Timeout,
	})

	return ratings.NewHolder(fetcher, sources), nil
}

func (s *session) initialColor() tournament.Color {
	if strings.HasPrefix(strings.ToLower(s.cfg.Pairing.InitialColor), "black") {
		return tournament.Black
	}
	return tournament.White
}

// open reads the tournament file into the event.
func (s *session) open(ctx context.Context) (event.Handle, error) {
	if s.path == "" {
		return event.Handle{}, errNoFile
	}
	f, err := os.Open(s.path)
	if err != nil {
		return event.Handle{}, err
	}
	defer f.Close()

	h, err := s.ev.ImportTournament(f)
	if err != nil {
		return event.Handle{}, fmt.Errorf("%v: %w", s.path, err)
	}
	if s.cfg.Ratings.Refresh == config.RefreshOnOpen {
		if n, err := s.ev.RefreshRatings(ctx); err != nil {
			s.log.Warnf("tdpair: rating refresh failed: %v", err)
		} else if n > 0 {
			fmt.Fprintf(s.out, "updated %d players from rating lists\n", n)
		}
	}

	return h, nil
}

// save writes the tournament back through a temporary file so that a
// failed write never truncates the report.
func (s *session) save(h event.Handle) error {
	var buf bytes.Buffer
	if err := s.ev.ExportTournament(h.Index(), &buf); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// modify opens the file, applies fn and saves the result.
func (s *session) modify(ctx context.Context,
	fn func(t *tournament.Tournament) error) (event.Handle, error) {

	h, err := s.open(ctx)
	if err != nil {
		return h, err
	}
	if err := s.ev.Modify(h.Index(), fn); err != nil {
		return h, err
	}
	return h, s.save(h)
}

func (s *session) writeReport(w io.Writer, h event.Handle, opts ...trf.Option) error {
	return s.ev.ExportTournament(h.Index(), w, opts...)
}
