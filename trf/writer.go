/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package trf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mikeb26/swisstd/internal"
	"github.com/mikeb26/swisstd/standings"
	"github.com/mikeb26/swisstd/tournament"
)

type writeOptions struct {
	ascii bool
	round int
	calc  *standings.Calculator
}

type Option func(*writeOptions)

// WithASCIINames folds player names to ASCII for tools that cannot read
// UTF-8.
func WithASCIINames() Option {
	return func(o *writeOptions) {
		o.ascii = true
	}
}

// AtRound exports only the first n rounds.
func AtRound(n int) Option {
	return func(o *writeOptions) {
		o.round = n
	}
}

// WithCalculator sets the calculator used for the rank column.
func WithCalculator(c *standings.Calculator) Option {
	return func(o *writeOptions) {
		o.calc = c
	}
}

// Serialize renders the tournament as a report.
func Serialize(t *tournament.Tournament, opts ...Option) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, t, opts...); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func WriteFile(path string, t *tournament.Tournament, opts ...Option) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, t, opts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write renders the tournament as a report. Header records are written only
// when set; the player and rated player counts are always derived.
func Write(w io.Writer, t *tournament.Tournament, opts ...Option) error {
	o := writeOptions{round: -1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.calc == nil {
		o.calc = standings.NewDefaultCalculator()
	}

	snap := t.Snapshot()
	rounds := snap.CurrentRoundNumber()
	if o.round >= 0 && o.round < rounds {
		rounds = o.round
	}
	places := make(map[int]int)
	for _, s := range o.calc.ComputeAt(snap, rounds) {
		places[s.Player.StartingRank] = s.Rank
	}

	bw := bufio.NewWriter(w)
	header := func(code string, value string) {
		if value != "" {
			fmt.Fprintf(bw, "%s %s\n", code, value)
		}
	}
	info := snap.Info()
	header(codeName, info.Name)
	header(codeCity, info.City)
	header(codeFederation, info.Federation)
	header(codeStartDate, info.StartDate)
	header(codeEndDate, info.EndDate)
	header(codePlayerCount, fmt.Sprint(snap.PlayerCount()))
	header(codeRatedCount, fmt.Sprint(snap.RatedPlayerCount()))
	header(codeType, info.Type)
	header(codeChiefArbiter, info.ChiefArbiter)
	header(codeDeputyArbiter, info.DeputyArbiter)
	header(codeTimeControl, info.TimeControl)
	header(codeRounds, fmt.Sprint(snap.TotalRounds()))
	header(codeInitialColor, strings.ToLower(snap.InitialColor().String())+"1")
	for _, extra := range snap.Extras() {
		bw.WriteString(extra)
		bw.WriteByte('\n')
	}

	if rounds > 0 {
		var sb strings.Builder
		sb.WriteString(codeCalendar)
		sb.WriteString(strings.Repeat(" ", colFirstSlot-2-len(codeCalendar)))
		for _, r := range snap.Rounds()[:rounds] {
			fmt.Fprintf(&sb, "  %-8s", r.Date)
		}
		bw.WriteString(strings.TrimRight(sb.String(), " "))
		bw.WriteByte('\n')
	}

	// bye requests for unpaired rounds follow the played rounds
	requests := make(map[int][]string)
	if rounds == snap.CurrentRoundNumber() {
		last := 0
		for r := rounds + 1; r <= snap.TotalRounds(); r++ {
			if len(snap.RequestedByes(r)) > 0 {
				last = r
			}
		}
		for r := rounds + 1; r <= last; r++ {
			byRank := make(map[int]tournament.ByeKind)
			for _, b := range snap.RequestedByes(r) {
				byRank[b.Player] = b.Kind
			}
			for _, p := range snap.Players() {
				slot := strings.Repeat(" ", slotWidth)
				if kind, ok := byRank[p.StartingRank]; ok {
					slot = fmt.Sprintf("0000 - %c", outcomeCode(kind.Outcome()))
				}
				requests[p.StartingRank] = append(requests[p.StartingRank], slot)
			}
		}
	}

	for _, p := range snap.Players() {
		bw.WriteString(playerLine(p, rounds, places[p.StartingRank], o.ascii,
			requests[p.StartingRank]))
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

func playerLine(p tournament.Player, rounds int, place int, ascii bool,
	requests []string) string {

	name := internal.NormalizeName(p.Name, ascii)
	if r := []rune(name); len(r) > nameWidth {
		name = string(r[:nameWidth])
	}
	rating := ""
	if p.FideRating > 0 {
		rating = fmt.Sprint(p.FideRating)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %4d %1s%3s %-33s %4s %-3s %11s %-10s %4.1f %4d",
		codePlayer, p.StartingRank, sexCode(p.Sex), titleCode(p.Title), name,
		rating, p.Federation, p.FideID, p.BirthDate, p.ScoreAfter(rounds),
		place)
	for i := 0; i < rounds; i++ {
		sb.WriteString("  ")
		if i < len(p.Slots) {
			sb.WriteString(slotText(p.Slots[i]))
		} else {
			sb.WriteString(strings.Repeat(" ", slotWidth))
		}
	}
	for _, slot := range requests {
		sb.WriteString("  ")
		sb.WriteString(slot)
	}

	return strings.TrimRight(sb.String(), " ")
}

func slotText(s tournament.Slot) string {
	if s.Opponent == 0 {
		return fmt.Sprintf("0000 - %c", outcomeCode(s.Outcome))
	}
	return fmt.Sprintf("%4d %c %c", s.Opponent, colorCode(s.Color),
		outcomeCode(s.Outcome))
}

func sexCode(s tournament.Sex) string {
	switch s {
	case tournament.Male:
		return "m"
	case tournament.Female:
		return "w"
	default:
		return ""
	}
}

var titleCodes = map[tournament.Title]string{
	tournament.GM:  "g",
	tournament.IM:  "m",
	tournament.WGM: "wg",
	tournament.FM:  "f",
	tournament.WIM: "wm",
	tournament.CM:  "c",
	tournament.WFM: "wf",
	tournament.WCM: "wc",
}

func titleCode(t tournament.Title) string {
	return titleCodes[t]
}
