/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import "github.com/mikeb26/swisstd/tournament"

func colorDiff(colors []tournament.Color) int {
	diff := 0
	for _, c := range colors {
		if c == tournament.White {
			diff++
		} else if c == tournament.Black {
			diff--
		}
	}
	return diff
}

// colorAllowed reports whether giving c to en keeps the color difference
// within two and avoids a third consecutive game with the same color.
func colorAllowed(en *entry, c tournament.Color) bool {
	n := len(en.colors)
	if n >= 2 && en.colors[n-1] == c && en.colors[n-2] == c {
		return false
	}
	diff := colorDiff(en.colors)
	if c == tournament.White {
		diff++
	} else {
		diff--
	}
	return diff <= 2 && diff >= -2
}

const (
	prefNone = iota
	prefMild
	prefStrong
	prefAbsolute
)

type preference struct {
	color    tournament.Color
	strength int
}

func preferenceOf(en *entry) preference {
	n := len(en.colors)
	if n == 0 {
		return preference{tournament.ColorNone, prefNone}
	}
	diff := colorDiff(en.colors)
	last := en.colors[n-1]
	repeated := n >= 2 && en.colors[n-2] == last
	switch {
	case diff > 1 || (repeated && last == tournament.White):
		return preference{tournament.Black, prefAbsolute}
	case diff < -1 || (repeated && last == tournament.Black):
		return preference{tournament.White, prefAbsolute}
	case diff == 1:
		return preference{tournament.Black, prefStrong}
	case diff == -1:
		return preference{tournament.White, prefStrong}
	default:
		return preference{last.Opposite(), prefMild}
	}
}

// allocateColors decides who plays white between top (the higher placed
// player) and other. board is the 0-based board index, used to alternate
// colors among players without history.
func allocateColors(top *entry, other *entry, board int,
	initial tournament.Color) (white *entry, black *entry) {

	topWhite := colorAllowed(top, tournament.White) && colorAllowed(other, tournament.Black)
	otherWhite := colorAllowed(other, tournament.White) && colorAllowed(top, tournament.Black)
	if topWhite != otherWhite {
		if topWhite {
			return top, other
		}
		return other, top
	}

	give := func(en *entry, c tournament.Color) (*entry, *entry) {
		if (en == top) == (c == tournament.White) {
			return top, other
		}
		return other, top
	}

	pt, po := preferenceOf(top), preferenceOf(other)
	switch {
	case pt.strength == prefNone && po.strength == prefNone:
		c := initial
		if board%2 == 1 {
			c = c.Opposite()
		}
		return give(top, c)
	case pt.strength == prefNone:
		return give(other, po.color)
	case po.strength == prefNone || pt.color != po.color:
		return give(top, pt.color)
	case pt.strength != po.strength:
		if pt.strength > po.strength {
			return give(top, pt.color)
		}
		return give(other, po.color)
	default:
		// equal claims on the same color: the higher rated player concedes
		if higherRated(top, other) {
			return give(other, po.color)
		}
		return give(top, pt.color)
	}
}

func higherRated(a *entry, b *entry) bool {
	if a.rating != b.rating {
		return a.rating > b.rating
	}
	return a.pos < b.pos
}
