/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/mikeb26/swisstd/tournament"
)

// Record is one player's entry in a rating list.
type Record struct {
	ID          string
	Name        string
	Federation  string
	Sex         tournament.Sex
	Title       tournament.Title
	OtherTitles []string
	Standard    int
	Rapid       int
	Blitz       int
	// K-factors; zero when the list does not carry them
	StandardK int
	RapidK    int
	BlitzK    int
	BirthYear int
}

// Catalog is an immutable index of rating records keyed by federation id.
// It is safe for concurrent use.
type Catalog struct {
	Source       string
	ETag         string
	LastModified string
	LastFetched  time.Time

	records map[string]Record
}

// NewCatalog indexes records. When an id repeats, the later record wins.
func NewCatalog(source string, records []Record) *Catalog {
	c := &Catalog{
		Source:  source,
		records: make(map[string]Record, len(records)),
	}
	for _, r := range records {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			continue
		}
		r.ID = id
		c.records[id] = r
	}
	return c
}

// Lookup finds a record by federation id.
func (c *Catalog) Lookup(id string) (Record, bool) {
	if c == nil {
		return Record{}, false
	}
	r, ok := c.records[strings.TrimSpace(id)]
	return r, ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// IDs returns every indexed id in sorted order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.records))
}

// Merge combines catalogs into a new one. Earlier catalogs take precedence
// for ids present in several. LastFetched is the oldest of the inputs.
func Merge(source string, catalogs ...*Catalog) *Catalog {
	ret := &Catalog{
		Source:  source,
		records: make(map[string]Record),
	}
	for i := len(catalogs) - 1; i >= 0; i-- {
		c := catalogs[i]
		if c == nil {
			continue
		}
		maps.Copy(ret.records, c.records)
		if ret.LastFetched.IsZero() || c.LastFetched.Before(ret.LastFetched) {
			ret.LastFetched = c.LastFetched
		}
	}
	return ret
}
