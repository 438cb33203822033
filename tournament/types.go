/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"fmt"
	"strings"
)

// Color is the piece color a player had in one round.
type Color int

const (
	ColorNone Color = iota
	White
	Black
)

// Opposite returns the other color; ColorNone stays ColorNone.
func (c Color) Opposite() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return ColorNone
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// Title is a FIDE title.
type Title int

const (
	TitleNone Title = iota
	GM
	IM
	WGM
	FM
	WIM
	CM
	WFM
	WCM
)

var titleNames = map[Title]string{
	GM:  "GM",
	IM:  "IM",
	WGM: "WGM",
	FM:  "FM",
	WIM: "WIM",
	CM:  "CM",
	WFM: "WFM",
	WCM: "WCM",
}

func (t Title) String() string {
	return titleNames[t]
}

// Strength orders titles for seeding; lower is stronger.
func (t Title) Strength() int {
	switch t {
	case GM:
		return 0
	case IM:
		return 1
	case WGM:
		return 2
	case FM:
		return 3
	case WIM:
		return 4
	case CM:
		return 5
	case WFM:
		return 6
	case WCM:
		return 7
	default:
		return 8
	}
}

// ParseTitle accepts both the long form ("GM") and the abbreviations found
// in report files ("g", "m", "wg"). Unknown input yields
// TitleNone and false.
func ParseTitle(s string) (Title, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "":
		return TitleNone, true
	case "G":
		return GM, true
	case "I", "M":
		return IM, true
	case "WG":
		return WGM, true
	case "F":
		return FM, true
	case "WI", "WM":
		return WIM, true
	case "C":
		return CM, true
	case "WF":
		return WFM, true
	case "WC":
		return WCM, true
	}
	for t, name := range titleNames {
		if name == s {
			return t, true
		}
	}

	return TitleNone, false
}

// Sex as recorded in the report format and rating lists.
type Sex int

const (
	SexUnknown Sex = iota
	Male
	Female
)

// ParseSex understands the report format's m/w and the rating list's M/F.
func ParseSex(s string) Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m":
		return Male
	case "w", "f":
		return Female
	default:
		return SexUnknown
	}
}

// Result is the outcome of a pairing.
type Result int

const (
	ResultUnset Result = iota
	ResultWhiteWins
	ResultBlackWins
	ResultDraw
	ResultWhiteWinsForfeit
	ResultBlackWinsForfeit
	ResultDoubleForfeit
	ResultWhiteWinsUnrated
	ResultBlackWinsUnrated
	ResultDrawUnrated
	ResultDoubleLoss
)

// Outcomes splits a pairing result into the outcome for each side.
func (r Result) Outcomes() (white Outcome, black Outcome) {
	switch r {
	case ResultWhiteWins:
		return OutcomeWin, OutcomeLoss
	case ResultBlackWins:
		return OutcomeLoss, OutcomeWin
	case ResultDraw:
		return OutcomeDraw, OutcomeDraw
	case ResultWhiteWinsForfeit:
		return OutcomeWinForfeit, OutcomeLossForfeit
	case ResultBlackWinsForfeit:
		return OutcomeLossForfeit, OutcomeWinForfeit
	case ResultDoubleForfeit:
		return OutcomeLossForfeit, OutcomeLossForfeit
	case ResultWhiteWinsUnrated:
		return OutcomeWinUnrated, OutcomeLossUnrated
	case ResultBlackWinsUnrated:
		return OutcomeLossUnrated, OutcomeWinUnrated
	case ResultDrawUnrated:
		return OutcomeDrawUnrated, OutcomeDrawUnrated
	case ResultDoubleLoss:
		return OutcomeLoss, OutcomeLoss
	default:
		return OutcomePending, OutcomePending
	}
}

// Points returns the points awarded to each side.
func (r Result) Points() (white float64, black float64) {
	w, b := r.Outcomes()
	return w.Points(), b.Points()
}

// Played reports whether the game was contested over the board.
func (r Result) Played() bool {
	w, _ := r.Outcomes()
	return w.Played()
}

// ResultFromOutcomes is the inverse of Result.Outcomes.
func ResultFromOutcomes(white Outcome, black Outcome) (Result, bool) {
	for r := ResultUnset; r <= ResultDoubleLoss; r++ {
		w, b := r.Outcomes()
		if w == white && b == black {
			return r, true
		}
	}

	return ResultUnset, false
}

var resultNotation = map[Result]string{
	ResultUnset:            "*",
	ResultWhiteWins:        "1-0",
	ResultBlackWins:        "0-1",
	ResultDraw:             "½-½",
	ResultWhiteWinsForfeit: "+/-",
	ResultBlackWinsForfeit: "-/+",
	ResultDoubleForfeit:    "-/-",
	ResultWhiteWinsUnrated: "1-0u",
	ResultBlackWinsUnrated: "0-1u",
	ResultDrawUnrated:      "½-½u",
	ResultDoubleLoss:       "0-0",
}

func (r Result) String() string {
	return resultNotation[r]
}

// ParseResult accepts the notation produced by Result.String as well as the
// common ASCII forms "1/2-1/2", "=", "+-", "-+" and "--".
func ParseResult(s string) (Result, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "1/2-1/2", "1/2", "=", "0.5-0.5":
		return ResultDraw, nil
	case "+-", "1-0f", "1-0ff":
		return ResultWhiteWinsForfeit, nil
	case "-+", "0-1f", "0-1ff":
		return ResultBlackWinsForfeit, nil
	case "--", "0-0f":
		return ResultDoubleForfeit, nil
	case "", "*":
		return ResultUnset, nil
	}
	for r, n := range resultNotation {
		if strings.EqualFold(n, s) {
			return r, nil
		}
	}

	return ResultUnset, fmt.Errorf("unrecognized result %q: %w", s, ErrInvalidResult)
}

// ByeKind classifies a player who sits out a round without an opponent.
type ByeKind int

const (
	// ByePairing is the single point allocated by the pairing to an odd
	// player out.
	ByePairing ByeKind = iota
	ByeFull
	ByeHalf
	ByeZero
	// ByeNotPaired marks a player absent from the round altogether, e.g. a
	// late entry.
	ByeNotPaired
)

// Requestable reports whether a player may ask for this kind of bye ahead
// of time.
func (k ByeKind) Requestable() bool {
	return k == ByeFull || k == ByeHalf || k == ByeZero
}

// Outcome reports the per-player outcome of the bye.
func (k ByeKind) Outcome() Outcome {
	switch k {
	case ByePairing:
		return OutcomePairingBye
	case ByeFull:
		return OutcomeFullBye
	case ByeHalf:
		return OutcomeHalfBye
	case ByeZero:
		return OutcomeZeroBye
	default:
		return OutcomeNotPaired
	}
}

func (k ByeKind) String() string {
	switch k {
	case ByePairing:
		return "pairing bye"
	case ByeFull:
		return "full-point bye"
	case ByeHalf:
		return "half-point bye"
	case ByeZero:
		return "zero-point bye"
	default:
		return "not paired"
	}
}

// ParseByeKind accepts "full", "half", "zero" and the report letters F, H
// and Z.
func ParseByeKind(s string) (ByeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "f", "1":
		return ByeFull, nil
	case "half", "h", "0.5", "½":
		return ByeHalf, nil
	case "zero", "z", "0":
		return ByeZero, nil
	}

	return ByeNotPaired, fmt.Errorf("unrecognized bye kind %q", s)
}

// Outcome is the per-player result of one round.
type Outcome int

const (
	OutcomeNotPaired Outcome = iota
	OutcomePending
	OutcomeWin
	OutcomeLoss
	OutcomeDraw
	OutcomeWinForfeit
	OutcomeLossForfeit
	OutcomeWinUnrated
	OutcomeLossUnrated
	OutcomeDrawUnrated
	OutcomePairingBye
	OutcomeFullBye
	OutcomeHalfBye
	OutcomeZeroBye
)

// Points awarded for the outcome.
func (o Outcome) Points() float64 {
	switch o {
	case OutcomeWin, OutcomeWinForfeit, OutcomeWinUnrated, OutcomePairingBye,
		OutcomeFullBye:
		return 1.0
	case OutcomeDraw, OutcomeDrawUnrated, OutcomeHalfBye:
		return 0.5
	default:
		return 0.0
	}
}

// Played reports whether a game was actually contested.
func (o Outcome) Played() bool {
	switch o {
	case OutcomeWin, OutcomeLoss, OutcomeDraw, OutcomeWinUnrated,
		OutcomeLossUnrated, OutcomeDrawUnrated:
		return true
	default:
		return false
	}
}

// Unplayed reports whether the round counted without a contested game.
// Pending games are neither played nor unplayed.
func (o Outcome) Unplayed() bool {
	return !o.Played() && o != OutcomePending
}

// Voluntary reports whether the player chose not to play the round.
func (o Outcome) Voluntary() bool {
	switch o {
	case OutcomeLossForfeit, OutcomeHalfBye, OutcomeZeroBye, OutcomeNotPaired:
		return true
	default:
		return false
	}
}

// IsWin reports whether the outcome earned a full point.
func (o Outcome) IsWin() bool {
	return o.Points() == 1.0
}
