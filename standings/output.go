/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package standings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mikeb26/swisstd/internal"
	"github.com/mikeb26/swisstd/tournament"
)

func formatTiebreak(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildStandingsOutput formats standings into an aligned table. Players
// sharing a place only show the place number on the first line.
func BuildStandingsOutput(standings []Standing, tiebreaks []Tiebreak) string {
	headers := []string{"Place", "Name", "Rating", "Score"}
	for _, tb := range tiebreaks {
		headers = append(headers, tb.Code())
	}

	var rows [][]string
	priorRank := 0
	for _, s := range standings {
		place := ""
		if s.Rank != priorRank {
			place = fmt.Sprintf("%v.", s.Rank)
			priorRank = s.Rank
		}
		row := []string{
			place,
			s.Player.Name,
			fmt.Sprintf("%v", s.Player.Rating()),
			fmt.Sprintf("%.1f", s.Score),
		}
		for _, v := range s.Tiebreaks {
			row = append(row, formatTiebreak(v))
		}
		rows = append(rows, row)
	}

	return buildTable(headers, rows, "")
}

// BuildCrossTableOutput formats a crosstable in standings order. Cells read
// W12(w) for a win over starting rank 12 with white.
func BuildCrossTableOutput(t *tournament.Tournament, standings []Standing) string {
	numRounds := 0
	for _, s := range standings {
		numRounds = max(numRounds, len(s.Player.Slots))
	}
	if len(standings) > 0 {
		numRounds = min(numRounds, completedRounds(t.Snapshot()))
	}

	headers := []string{"No", "Name", "Rating", "Pts"}
	for i := 1; i <= numRounds; i++ {
		headers = append(headers, fmt.Sprintf("R%d", i))
	}

	forfeitFound := false
	var rows [][]string
	for _, s := range standings {
		row := []string{
			fmt.Sprintf("%d.", s.Player.StartingRank),
			s.Player.Name,
			fmt.Sprintf("%v", s.Player.Rating()),
			internal.ScoreToString(s.Score),
		}
		for r := 0; r < numRounds && r < len(s.Player.Slots); r++ {
			slot := s.Player.Slots[r]
			var cell string
			switch slot.Outcome {
			case tournament.OutcomeWin, tournament.OutcomeWinUnrated:
				cell = fmt.Sprintf("W%d(%c)", slot.Opponent, slot.Color.String()[0])
			case tournament.OutcomeLoss, tournament.OutcomeLossUnrated:
				cell = fmt.Sprintf("L%d(%c)", slot.Opponent, slot.Color.String()[0])
			case tournament.OutcomeDraw, tournament.OutcomeDrawUnrated:
				cell = fmt.Sprintf("D%d(%c)", slot.Opponent, slot.Color.String()[0])
			case tournament.OutcomeWinForfeit:
				forfeitFound = true
				cell = "W*"
			case tournament.OutcomeLossForfeit:
				forfeitFound = true
				cell = "L*"
			case tournament.OutcomePairingBye, tournament.OutcomeFullBye:
				cell = "BYE(1)"
			case tournament.OutcomeHalfBye:
				cell = "BYE(½)"
			case tournament.OutcomeZeroBye:
				cell = "BYE(0)"
			case tournament.OutcomeNotPaired:
				cell = "-"
			default:
				cell = "?"
			}
			row = append(row, cell)
		}
		for len(row) < len(headers) {
			row = append(row, "")
		}
		rows = append(rows, row)
	}

	footer := ""
	if forfeitFound {
		footer = "* indicates game was decided by forfeit\n"
	}
	return buildTable(headers, rows, footer)
}

func buildTable(headers []string, rows [][]string, footer string) string {
	// Compute column widths
	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if l := len([]rune(cell)); l > colWidths[i] {
				colWidths[i] = l
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		var line strings.Builder
		for i, cell := range cells {
			line.WriteString(cell)
			if i < len(cells)-1 {
				line.WriteString(strings.Repeat(" ", colWidths[i]-len([]rune(cell))+2))
			}
		}
		sb.WriteString(strings.TrimRight(line.String(), " ") + "\n")
	}
	writeRow(headers)
	for _, row := range rows {
		writeRow(row)
	}
	sb.WriteString(footer)

	return sb.String()
}
