/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"fmt"
	"strings"

	"github.com/mikeb26/swisstd/internal"
)

// BuildPairingsOutput formats a round's boards into aligned text output.
func BuildPairingsOutput(t *Tournament, round int) (string, error) {
	snap := t.Snapshot()
	r, err := snap.Round(round)
	if err != nil {
		return "", err
	}
	players := make(map[int]Player)
	for _, p := range snap.Players() {
		players[p.StartingRank] = p
	}
	describe := func(rank int) string {
		p := players[rank]
		return fmt.Sprintf("%s(%d %v)", p.Name, p.Rating(),
			internal.ScoreToString(p.ScoreAfter(round-1)))
	}

	var sb strings.Builder
	if name := snap.Info().Name; name != "" {
		sb.WriteString(fmt.Sprintf("%v\n", name))
	}
	sb.WriteString(fmt.Sprintf("Round %v Pairings:\n\n", round))

	type row struct{ board, white, black, result string }
	var rows []row
	for _, p := range r.Pairings {
		res := ""
		if p.Result != ResultUnset {
			res = p.Result.String()
		}
		rows = append(rows, row{
			board:  fmt.Sprintf("%d.", p.Board),
			white:  describe(p.White),
			black:  describe(p.Black),
			result: res,
		})
	}
	for _, b := range r.Byes {
		var cell string
		switch b.Kind {
		case ByePairing, ByeFull:
			cell = "BYE(1)"
		case ByeHalf:
			cell = "BYE(½)"
		case ByeZero:
			cell = "BYE(0)"
		default:
			// late entries and the like are not listed
			continue
		}
		rows = append(rows, row{board: "n/a", white: describe(b.Player),
			black: cell})
	}

	// Compute column widths
	maxB, maxW, maxBl := len("Board"), len("White"), len("Black")
	for _, r := range rows {
		if l := len(r.board); l > maxB {
			maxB = l
		}
		if l := len(r.white); l > maxW {
			maxW = l
		}
		if l := len(r.black); l > maxBl {
			maxBl = l
		}
	}

	sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s  %s\n", maxB, "Board", maxW,
		"White", maxBl, "Black", "Result"))
	for _, r := range rows {
		line := fmt.Sprintf("%-*s  %-*s  %-*s  %s", maxB, r.board, maxW,
			r.white, maxBl, r.black, r.result)
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
	}

	return sb.String(), nil
}
