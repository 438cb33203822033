/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package trf

import "github.com/mikeb26/swisstd/tournament"

// Record type codes.
const (
	codePlayer        = "001"
	codeName          = "012"
	codeCity          = "022"
	codeFederation    = "032"
	codeStartDate     = "042"
	codeEndDate       = "052"
	codePlayerCount   = "062"
	codeRatedCount    = "072"
	codeType          = "092"
	codeChiefArbiter  = "102"
	codeDeputyArbiter = "112"
	codeTimeControl   = "122"
	codeCalendar      = "132"
	codeRounds        = "XXR"
	codeInitialColor  = "XXC"
)

// Column layout of a player record, 0-based and end-exclusive.
const (
	colRank      = 4
	colSex       = 9
	colTitle     = 10
	colName      = 14
	colRating    = 48
	colFed       = 53
	colID        = 57
	colBirth     = 69
	colPoints    = 80
	colPlace     = 85
	colFirstSlot = 91
	slotStride   = 10
	slotWidth    = 8
	nameWidth    = 33
)

var gameCodes = map[rune]tournament.Outcome{
	'1': tournament.OutcomeWin,
	'0': tournament.OutcomeLoss,
	'=': tournament.OutcomeDraw,
	'+': tournament.OutcomeWinForfeit,
	'-': tournament.OutcomeLossForfeit,
	'W': tournament.OutcomeWinUnrated,
	'L': tournament.OutcomeLossUnrated,
	'D': tournament.OutcomeDrawUnrated,
	'*': tournament.OutcomePending,
	' ': tournament.OutcomePending,
}

// byeCodes maps result codes written without an opponent. Some exporters
// write '-' or '0' for a zero-point bye and '+' or '1' for the pairing bye.
var byeCodes = map[rune]tournament.ByeKind{
	'U': tournament.ByePairing,
	'+': tournament.ByePairing,
	'1': tournament.ByePairing,
	'F': tournament.ByeFull,
	'H': tournament.ByeHalf,
	'=': tournament.ByeHalf,
	'Z': tournament.ByeZero,
	'-': tournament.ByeZero,
	'0': tournament.ByeZero,
	' ': tournament.ByeNotPaired,
}

func outcomeCode(o tournament.Outcome) byte {
	switch o {
	case tournament.OutcomeWin:
		return '1'
	case tournament.OutcomeLoss:
		return '0'
	case tournament.OutcomeDraw:
		return '='
	case tournament.OutcomeWinForfeit:
		return '+'
	case tournament.OutcomeLossForfeit:
		return '-'
	case tournament.OutcomeWinUnrated:
		return 'W'
	case tournament.OutcomeLossUnrated:
		return 'L'
	case tournament.OutcomeDrawUnrated:
		return 'D'
	case tournament.OutcomePending:
		return '*'
	case tournament.OutcomePairingBye:
		return 'U'
	case tournament.OutcomeFullBye:
		return 'F'
	case tournament.OutcomeHalfBye:
		return 'H'
	case tournament.OutcomeZeroBye:
		return 'Z'
	default:
		return ' '
	}
}

func colorCode(c tournament.Color) byte {
	switch c {
	case tournament.White:
		return 'w'
	case tournament.Black:
		return 'b'
	default:
		return '-'
	}
}
