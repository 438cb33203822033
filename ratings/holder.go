/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/mikeb26/swisstd/internal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrNoSources is returned by Refresh when nothing is configured.
var ErrNoSources = errors.New("no rating sources configured")

// Holder publishes the current catalog. Readers never block; a refresh
// builds a complete new catalog and swaps it in, or leaves the old one.
type Holder struct {
	current atomic.Pointer[Catalog]
	fetcher *Fetcher
	sources []Source
	log     *logrus.Entry
}

func NewHolder(fetcher *Fetcher, sources []Source) *Holder {
	return &Holder{
		fetcher: fetcher,
		sources: sources,
		log:     internal.Logger("ratings"),
	}
}

// Current returns the catalog in use, or nil before the first load.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Lookup searches the current catalog.
func (h *Holder) Lookup(id string) (Record, bool) {
	return h.Current().Lookup(id)
}

// Swap installs c and returns the catalog it replaced. A nil c clears the
// holder.
func (h *Holder) Swap(c *Catalog) *Catalog {
	old := h.current.Swap(c)
	if c == nil {
		h.log.Infof("ratings.Holder: catalog cleared")
		return old
	}
	h.log.Infof("ratings.Holder: catalog %v installed with %d players",
		c.Source, c.Len())
	return old
}

// Refresh downloads every source concurrently and installs the merged
// result. Any failure leaves the current catalog untouched.
func (h *Holder) Refresh(ctx context.Context) (*Catalog, error) {
	if len(h.sources) == 0 || h.fetcher == nil {
		return nil, ErrNoSources
	}

	catalogs := make([]*Catalog, len(h.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range h.sources {
		g.Go(func() error {
			c, err := h.fetcher.Fetch(gctx, src)
			if err != nil {
				return err
			}
			catalogs[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.log.Warnf("ratings.Holder: refresh failed; keeping current catalog: %v",
			err)
		return nil, err
	}

	name := h.sources[0].Name
	if len(catalogs) == 1 {
		h.Swap(catalogs[0])
		return catalogs[0], nil
	}
	if name == "" {
		name = "merged"
	}
	merged := Merge(name, catalogs...)
	h.Swap(merged)

	return merged, nil
}
