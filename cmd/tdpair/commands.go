/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mikeb26/swisstd/event"
	"github.com/mikeb26/swisstd/internal"
	"github.com/mikeb26/swisstd/ratings"
	"github.com/mikeb26/swisstd/standings"
	"github.com/mikeb26/swisstd/tournament"
	"github.com/mikeb26/swisstd/trf"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const stdoutCLIName = "-"

func (s *session) cmdNew(cCtx *cli.Context) error {
	if s.path == "" {
		return errNoFile
	}
	if _, err := os.Stat(s.path); err == nil && !cCtx.Bool("force") {
		return fmt.Errorf("%v already exists; use --force to overwrite", s.path)
	}

	h := s.ev.CreateTournament(tournament.Info{
		Name:          cCtx.String("name"),
		City:          cCtx.String("city"),
		Federation:    cCtx.String("federation"),
		StartDate:     cCtx.String("start"),
		EndDate:       cCtx.String("end"),
		ChiefArbiter:  cCtx.String("arbiter"),
		DeputyArbiter: cCtx.String("deputy"),
		TimeControl:   cCtx.String("time-control"),
		Type:          cCtx.String("type"),
	}, cCtx.Int("rounds"))
	err := s.ev.Modify(h.Index(), func(t *tournament.Tournament) error {
		return t.SetInitialColor(s.initialColor())
	})
	if err != nil {
		return err
	}
	if err := s.save(h); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "created %v (%d rounds)\n", s.path, cCtx.Int("rounds"))

	return nil
}

func (s *session) cmdInfo(cCtx *cli.Context) error {
	h, err := s.open(cCtx.Context)
	if err != nil {
		return err
	}
	t, err := h.Tournament()
	if err != nil {
		return err
	}
	players, _ := h.PlayerCount()
	rated, _ := h.RatedPlayerCount()
	cur, _ := h.CurrentRound()

	info := t.Info()
	fmt.Fprintf(s.out, "%v\n", info.Name)
	if info.City != "" {
		fmt.Fprintf(s.out, "%v %v\n", info.City, info.Federation)
	}
	if info.StartDate != "" {
		fmt.Fprintf(s.out, "%v - %v\n", info.StartDate, info.EndDate)
	}
	fmt.Fprintf(s.out, "Players: %d (%d rated)\n", players, rated)
	fmt.Fprintf(s.out, "Round: %d of %d (%v)\n", cur, t.TotalRounds(), t.State())

	return nil
}

func (s *session) cmdAddPlayer(cCtx *cli.Context) error {
	id := tournament.Identity{
		Name:           internal.NormalizeName(cCtx.String("name"), false),
		FideRating:     cCtx.Int("rating"),
		NationalRating: cCtx.Int("national-rating"),
		FideID:         cCtx.String("fide-id"),
		Federation:     strings.ToUpper(cCtx.String("federation")),
		Sex:            tournament.ParseSex(cCtx.String("sex")),
		BirthDate:      cCtx.String("born"),
	}
	if title := cCtx.String("title"); title != "" {
		var ok bool
		if id.Title, ok = tournament.ParseTitle(title); !ok {
			return fmt.Errorf("unknown title %q", title)
		}
	}

	rank := 0
	h, err := s.modify(cCtx.Context, func(t *tournament.Tournament) error {
		var err error
		rank, err = t.AddPlayer(id)
		return err
	})
	if err != nil {
		return err
	}
	if id.FideID != "" {
		if _, err := s.ev.EnrichRatings(h.Index()); err != nil {
			return err
		}
		if err := s.save(h); err != nil {
			return err
		}
	}
	fmt.Fprintf(s.out, "added %v as #%d\n", id.Name, rank)

	return nil
}

func (s *session) cmdRemovePlayer(cCtx *cli.Context) error {
	_, err := s.modify(cCtx.Context, func(t *tournament.Tournament) error {
		return t.RemovePlayer(cCtx.Int("rank"))
	})
	return err
}

func (s *session) cmdSort(cCtx *cli.Context) error {
	_, err := s.modify(cCtx.Context, func(t *tournament.Tournament) error {
		return t.SortPlayers()
	})
	return err
}

func (s *session) printPairings(h event.Handle, round int) error {
	t, err := h.Tournament()
	if err != nil {
		return err
	}
	out, err := tournament.BuildPairingsOutput(t, round)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, out)
	return nil
}

func (s *session) cmdPair(cCtx *cli.Context) error {
	h, err := s.open(cCtx.Context)
	if err != nil {
		return err
	}
	round, err := s.ev.PairNextRound(cCtx.Context, h.Index())
	if err != nil {
		return err
	}
	if err := s.save(h); err != nil {
		return err
	}

	return s.printPairings(h, round.Number)
}

func (s *session) cmdUnpair(cCtx *cli.Context) error {
	_, err := s.modify(cCtx.Context, func(t *tournament.Tournament) error {
		return t.UnpairCurrentRound()
	})
	return err
}

// roundOrCurrent returns the --round flag or, when unset, the current round.
func roundOrCurrent(cCtx *cli.Context, h event.Handle) (int, error) {
	if r := cCtx.Int("round"); r > 0 {
		return r, nil
	}
	cur, err := h.CurrentRound()
	if err != nil {
		return 0, err
	}
	if cur == 0 {
		return 0, fmt.Errorf("no round has been paired: %w", tournament.ErrNoSuchRound)
	}
	return cur, nil
}

func (s *session) cmdPairings(cCtx *cli.Context) error {
	h, err := s.open(cCtx.Context)
	if err != nil {
		return err
	}
	round, err := roundOrCurrent(cCtx, h)
	if err != nil {
		return err
	}
	return s.printPairings(h, round)
}

func (s *session) cmdResult(cCtx *cli.Context) error {
	res, err := tournament.ParseResult(cCtx.String("result"))
	if err != nil {
		return err
	}
	h, err := s.open(cCtx.Context)
	if err != nil {
		return err
	}
	round, err := roundOrCurrent(cCtx, h)
	if err != nil {
		return err
	}
	if err := s.ev.RecordResult(h.Index(), round, cCtx.Int("board"), res); err != nil {
		return err
	}
	return s.save(h)
}

func (s *session) cmdBye(cCtx *cli.Context) error {
	rank, round := cCtx.Int("rank"), cCtx.Int("round")
	if cCtx.Bool("clear") {
		_, err := s.modify(cCtx.Context, func(t *tournament.Tournament) error {
			return t.ClearRequestedBye(rank, round)
		})
		return err
	}

	kind, err := tournament.ParseByeKind(cCtx.String("kind"))
	if err != nil {
		return err
	}
	_, err = s.modify(cCtx.Context, func(t *tournament.Tournament) error {
		return t.SetRequestedBye(rank, round, kind)
	})
	return err
}

func (s *session) cmdWithdraw(cCtx *cli.Context) error {
	_, err := s.modify(cCtx.Context, func(t *tournament.Tournament) error {
		return t.Withdraw(cCtx.Int("rank"))
	})
	return err
}

type standingYAML struct {
	Place     int                `yaml:"place"`
	Rank      int                `yaml:"starting_rank"`
	Name      string             `yaml:"name"`
	Rating    int                `yaml:"rating,omitempty"`
	Score     float64            `yaml:"score"`
	Tiebreaks map[string]float64 `yaml:"tiebreaks,omitempty"`
}

func buildStandingsYAML(st []standings.Standing, tbs []standings.Tiebreak) []standingYAML {
	ret := make([]standingYAML, 0, len(st))
	for _, s := range st {
		row := standingYAML{
			Place:  s.Rank,
			Rank:   s.Player.StartingRank,
			Name:   s.Player.Name,
			Rating: s.Player.Rating(),
			Score:  s.Score,
		}
		if len(tbs) > 0 {
			row.Tiebreaks = make(map[string]float64, len(tbs))
			for i, tb := range tbs {
				row.Tiebreaks[tb.Code()] = s.Tiebreaks[i]
			}
		}
		ret = append(ret, row)
	}
	return ret
}

func (s *session) cmdStandings(cCtx *cli.Context) error {
	h, err := s.open(cCtx.Context)
	if err != nil {
		return err
	}
	t, err := h.Tournament()
	if err != nil {
		return err
	}

	var st []standings.Standing
	if r := cCtx.Int("round"); r > 0 {
		st = s.calc.ComputeAt(t, r)
	} else if st, err = h.Standings(); err != nil {
		return err
	}

	switch format := strings.ToLower(cCtx.String("format")); format {
	case "text":
		fmt.Fprint(s.out, standings.BuildStandingsOutput(st, s.calc.Tiebreaks()))
	case "crosstable":
		fmt.Fprint(s.out, standings.BuildCrossTableOutput(t, st))
	case "yaml":
		enc := yaml.NewEncoder(s.out)
		enc.SetIndent(2)
		if err := enc.Encode(buildStandingsYAML(st, s.calc.Tiebreaks())); err != nil {
			return fmt.Errorf("encoding to YAML failed: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown standings format %q", format)
	}

	return nil
}

func (s *session) cmdExport(cCtx *cli.Context) error {
	h, err := s.open(cCtx.Context)
	if err != nil {
		return err
	}
	var opts []trf.Option
	if cCtx.Bool("ascii") {
		opts = append(opts, trf.WithASCIINames())
	}
	if r := cCtx.Int("round"); r > 0 {
		opts = append(opts, trf.AtRound(r))
	}

	out := cCtx.String("output")
	if out == stdoutCLIName {
		return s.writeReport(s.out, h, opts...)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := s.writeReport(f, h, opts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *session) cmdAnnounce(cCtx *cli.Context) error {
	if s.cfg.Announce.Discord.WebhookID == "" {
		return errors.New("announce.discord.webhook_id is not configured")
	}
	h, err := s.open(cCtx.Context)
	if err != nil {
		return err
	}
	return s.ev.AnnounceStandings(cCtx.Context, h.Index())
}

func (s *session) cmdRatingsRefresh(cCtx *cli.Context) error {
	h, err := s.open(cCtx.Context)
	if err != nil {
		return err
	}
	n, err := s.ev.RefreshRatings(cCtx.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "updated %d players\n", n)

	return s.save(h)
}

func (s *session) loadList(cCtx *cli.Context) error {
	format, err := ratings.ParseFormat(cCtx.String("format"))
	if err != nil {
		return err
	}
	c, err := ratings.LoadFile(cCtx.String("list"), format)
	if err != nil {
		return err
	}
	s.holder.Swap(c)
	return nil
}

func (s *session) cmdRatingsLoad(cCtx *cli.Context) error {
	if err := s.loadList(cCtx); err != nil {
		return err
	}
	h, err := s.open(cCtx.Context)
	if err != nil {
		return err
	}
	n, err := s.ev.EnrichRatings(h.Index())
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "updated %d players\n", n)

	return s.save(h)
}

func (s *session) cmdRatingsLookup(cCtx *cli.Context) error {
	if cCtx.String("list") != "" {
		if err := s.loadList(cCtx); err != nil {
			return err
		}
	} else if _, err := s.holder.Refresh(cCtx.Context); err != nil {
		return err
	}

	id := cCtx.String("id")
	rec, ok := s.holder.Lookup(id)
	if !ok {
		return fmt.Errorf("%v not found in %v", id, s.holder.Current().Source)
	}
	fmt.Fprintf(s.out, "%v %v %v %v\n", rec.ID, rec.Name, rec.Federation, rec.Title)
	fmt.Fprintf(s.out, "Standard: %d  Rapid: %d  Blitz: %d\n", rec.Standard,
		rec.Rapid, rec.Blitz)
	if rec.BirthYear > 0 {
		fmt.Fprintf(s.out, "Born: %d\n", rec.BirthYear)
	}

	return nil
}

func (s *session) cmdWatch(cCtx *cli.Context) error {
	if !s.cfg.Ratings.ScheduledRefresh() {
		return fmt.Errorf("ratings.refresh %q is not a schedule",
			s.cfg.Ratings.Refresh)
	}
	h, err := s.open(cCtx.Context)
	if err != nil {
		return err
	}
	sched, err := event.NewScheduler(s.ev, s.cfg.Ratings.Refresh, s.cfg.Ratings.Timeout)
	if err != nil {
		return err
	}
	sched.AfterRefresh = func(updated int, err error) {
		if err != nil || updated == 0 {
			return
		}
		if err := s.save(h); err != nil {
			s.log.Errorf("tdpair.watch: saving %v: %v", s.path, err)
		}
	}
	sched.Start()
	s.log.Infof("tdpair.watch: next refresh at %v", sched.Next())

	<-cCtx.Context.Done()
	<-sched.Stop().Done()

	return nil
}
