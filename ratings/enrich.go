/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mikeb26/swisstd/tournament"
)

// Policy decides how catalog data combines with what the organizer entered.
type Policy string

const (
	// PolicyFillUnset only fills fields that are empty. Manual entry wins.
	PolicyFillUnset Policy = "fill-unset"
	// PolicyCatalogWins overwrites rating and title with catalog values.
	PolicyCatalogWins Policy = "catalog-wins"
	PolicyNever       Policy = "never"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyFillUnset, nil
	case PolicyFillUnset, PolicyCatalogWins, PolicyNever:
		return p, nil
	default:
		return "", fmt.Errorf("unknown rating policy %q", s)
	}
}

// Enrich updates players that carry a federation id found in c and returns
// the number of players changed.
func Enrich(t *tournament.Tournament, c *Catalog, p Policy) (int, error) {
	if p == PolicyNever || c.Len() == 0 {
		return 0, nil
	}

	updated := 0
	for _, pl := range t.Players() {
		rec, ok := c.Lookup(pl.FideID)
		if pl.FideID == "" || !ok {
			continue
		}
		changed := false
		err := t.UpdatePlayer(pl.StartingRank, func(id *tournament.Identity) {
			before := *id
			apply(id, rec, p)
			changed = before != *id
		})
		if err != nil {
			return updated, err
		}
		if changed {
			updated++
		}
	}

	return updated, nil
}

func apply(id *tournament.Identity, rec Record, p Policy) {
	overwrite := p == PolicyCatalogWins
	if rec.Standard > 0 && (overwrite || id.FideRating == 0) {
		id.FideRating = rec.Standard
	}
	if rec.Title != tournament.TitleNone && (overwrite || id.Title == tournament.TitleNone) {
		id.Title = rec.Title
	}
	if id.Name == "" {
		id.Name = rec.Name
	}
	if id.Federation == "" {
		id.Federation = rec.Federation
	}
	if id.Sex == tournament.SexUnknown {
		id.Sex = rec.Sex
	}
	if id.BirthDate == "" && rec.BirthYear > 0 {
		id.BirthDate = strconv.Itoa(rec.BirthYear)
	}
}
