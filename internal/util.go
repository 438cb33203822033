/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ParseDateOrZero parses free form dates such as "2025/06/14", "25/06/14"
// or "1987". Unparseable input yields the zero time.
func ParseDateOrZero(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	// bare birth years appear in rating lists and report files
	if len(s) == 4 && strings.Trim(s, "0123456789") == "" {
		s = s + "-01-01"
	}
	// yy/MM/dd as used by round dates
	if len(s) == 8 && s[2] == '/' && s[5] == '/' {
		if t, err := time.Parse("06/01/02", s); err == nil {
			return t
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}
	}

	return t
}

// ScoreToString renders a score using ½ for half points, e.g. 2.5 -> "2½".
func ScoreToString(score float64) string {
	whole := math.Floor(score)
	half := score-whole >= 0.5
	if !half {
		return fmt.Sprintf("%v", int(whole))
	}
	if whole == 0 {
		return "½"
	}

	return fmt.Sprintf("%v½", int(whole))
}

var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)),
	norm.NFC)

// NormalizeName collapses whitespace in a player name. When ascii is set,
// diacritics are folded and any remaining non-ASCII rune becomes '?'.
func NormalizeName(name string, ascii bool) string {
	name = strings.Join(strings.Fields(name), " ")
	if !ascii {
		return name
	}

	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}
	var sb strings.Builder
	for _, r := range folded {
		if r > unicode.MaxASCII {
			r = '?'
		}
		sb.WriteRune(r)
	}

	return sb.String()
}
