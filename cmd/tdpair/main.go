/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikeb26/swisstd/ratings"
	"github.com/urfave/cli/v2"
)

var build string
var semanticVersion = "v0.4.0" + build

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func rankFlag() cli.Flag {
	return &cli.IntFlag{Name: "rank", Aliases: []string{"r"},
		Usage: "Starting rank of the player", Required: true}
}

func newApp(out io.Writer) *cli.App {
	s := &session{out: out}

	return &cli.App{
		Name:    "tdpair",
		Usage:   "Run a Swiss chess tournament kept in a TRF report file",
		Version: semanticVersion,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Tournament report (TRF) holding the tournament state",
				EnvVars: []string{"TDPAIR_FILE"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to tdpair.yaml",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path to a .env file loaded before configuration",
			},
		},
		Before: s.setup,
		Commands: []*cli.Command{
			{
				Name:   "new",
				Usage:  "Create a new tournament file",
				Action: s.cmdNew,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.IntFlag{Name: "rounds", Required: true},
					&cli.StringFlag{Name: "city"},
					&cli.StringFlag{Name: "federation"},
					&cli.StringFlag{Name: "start", Usage: "Start date"},
					&cli.StringFlag{Name: "end", Usage: "End date"},
					&cli.StringFlag{Name: "arbiter", Usage: "Chief arbiter"},
					&cli.StringFlag{Name: "deputy", Usage: "Deputy chief arbiter"},
					&cli.StringFlag{Name: "time-control"},
					&cli.StringFlag{Name: "type", Usage: "Tournament type"},
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
			},
			{
				Name:   "info",
				Usage:  "Summarize the tournament",
				Action: s.cmdInfo,
			},
			{
				Name:   "add-player",
				Usage:  "Register a player",
				Action: s.cmdAddPlayer,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.IntFlag{Name: "rating", Usage: "FIDE rating"},
					&cli.IntFlag{Name: "national-rating"},
					&cli.StringFlag{Name: "fide-id"},
					&cli.StringFlag{Name: "federation"},
					&cli.StringFlag{Name: "title", Usage: "GM, IM, FM, CM, WGM, ..."},
					&cli.StringFlag{Name: "sex", Usage: "m or w"},
					&cli.StringFlag{Name: "born", Usage: "Birth date or year"},
				},
			},
			{
				Name:   "remove-player",
				Usage:  "Remove a player before the first round",
				Action: s.cmdRemovePlayer,
				Flags:  []cli.Flag{rankFlag()},
			},
			{
				Name:   "sort",
				Usage:  "Re-rank players by rating before the first round",
				Action: s.cmdSort,
			},
			{
				Name:   "pair",
				Usage:  "Pair the next round",
				Action: s.cmdPair,
			},
			{
				Name:   "unpair",
				Usage:  "Discard the current round while no result is in",
				Action: s.cmdUnpair,
			},
			{
				Name:   "pairings",
				Usage:  "Show a round's pairings",
				Action: s.cmdPairings,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "round", Usage: "Round number; current round when unset"},
				},
			},
			{
				Name:   "result",
				Usage:  "Record a game result",
				Action: s.cmdResult,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "round", Usage: "Round number; current round when unset"},
					&cli.IntFlag{Name: "board", Aliases: []string{"b"}, Required: true},
					&cli.StringFlag{Name: "result", Usage: "1-0, 0-1, 1/2-1/2, +-, -+, --, *",
						Required: true},
				},
			},
			{
				Name:   "bye",
				Usage:  "Request a bye for a future round",
				Action: s.cmdBye,
				Flags: []cli.Flag{
					rankFlag(),
					&cli.IntFlag{Name: "round", Required: true},
					&cli.StringFlag{Name: "kind", Value: "half", Usage: "full, half or zero"},
					&cli.BoolFlag{Name: "clear", Usage: "Cancel a requested bye"},
				},
			},
			{
				Name:   "withdraw",
				Usage:  "Withdraw a player from all remaining rounds",
				Action: s.cmdWithdraw,
				Flags:  []cli.Flag{rankFlag()},
			},
			{
				Name:   "standings",
				Usage:  "Show standings",
				Action: s.cmdStandings,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "text",
						Usage: "text, crosstable or yaml"},
					&cli.IntFlag{Name: "round", Usage: "Standings after this round"},
				},
			},
			{
				Name:   "export",
				Usage:  "Write the tournament report",
				Action: s.cmdExport,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "-",
						Usage: "File path or \"-\" for stdout"},
					&cli.BoolFlag{Name: "ascii", Usage: "Transliterate names to ASCII"},
					&cli.IntFlag{Name: "round", Usage: "Only include rounds up to this one"},
				},
			},
			{
				Name:   "announce",
				Usage:  "Post the current standings to the configured webhook",
				Action: s.cmdAnnounce,
			},
			{
				Name:  "ratings",
				Usage: "Rating list operations",
				Subcommands: []*cli.Command{
					{
						Name:   "refresh",
						Usage:  "Download the configured rating lists and update players",
						Action: s.cmdRatingsRefresh,
					},
					{
						Name:   "load",
						Usage:  "Update players from a rating list on disk",
						Action: s.cmdRatingsLoad,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "list", Required: true},
							&cli.StringFlag{Name: "format", Value: string(ratings.FormatAuto)},
						},
					},
					{
						Name:   "lookup",
						Usage:  "Print a player's rating list entry",
						Action: s.cmdRatingsLookup,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "id", Required: true},
							&cli.StringFlag{Name: "list", Usage: "Rating list on disk; downloads when unset"},
							&cli.StringFlag{Name: "format", Value: string(ratings.FormatAuto)},
						},
					},
				},
			},
			{
				Name:   "watch",
				Usage:  "Refresh ratings on the configured schedule until interrupted",
				Action: s.cmdWatch,
			},
		},
	}
}
