/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mikeb26/swisstd/internal"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Source names a downloadable rating list.
type Source struct {
	Name   string
	URL    string
	Format Format
}

type FetcherOptions struct {
	RequestsPerMinute int
	// Timeout bounds one download including the body.
	Timeout time.Duration
	// MaxFailures consecutive failures open the breaker for BreakerTimeout.
	MaxFailures    uint32
	BreakerTimeout time.Duration
}

// Fetcher downloads rating lists. Requests are rate limited and guarded by
// a circuit breaker so that an unreachable federation server is not
// hammered by scheduled refreshes.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	log     *logrus.Entry
}

func NewFetcher(client *http.Client, opts FetcherOptions) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 6
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 3
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 5 * time.Minute
	}
	log := internal.Logger("ratings")

	return &Fetcher{
		client: client,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)),
			1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "rating-lists",
			Timeout: opts.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= opts.MaxFailures
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("ratings.Fetcher: circuit breaker state changed")
			},
		}),
		timeout: opts.Timeout,
		log:     log,
	}
}

type download struct {
	body         []byte
	etag         string
	lastModified string
}

// Fetch downloads and parses one rating list. Transport failures are
// returned as *FetchError, undecodable payloads as *ParseError.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (*Catalog, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: src.URL, Err: err}
	}

	f.log.Infof("ratings.Fetch: downloading %v", src.URL)
	start := time.Now()
	res, err := f.breaker.Execute(func() (interface{}, error) {
		return f.get(ctx, src.URL)
	})
	if err != nil {
		f.log.Warnf("ratings.Fetch: %v failed: %v", src.URL, err)
		return nil, &FetchError{URL: src.URL, Err: err}
	}
	dl := res.(*download)

	recs, err := Decode(src.Format, dl.body)
	if err != nil {
		return nil, err
	}
	name := src.Name
	if name == "" {
		name = src.URL
	}
	c := NewCatalog(name, recs)
	c.ETag = dl.etag
	c.LastModified = dl.lastModified
	c.LastFetched = time.Now()
	f.log.Infof("ratings.Fetch: %v: %d players in %v", name, c.Len(),
		time.Since(start).Round(time.Millisecond))

	return c, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*download, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing HTTP GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode,
			string(body))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return &download{
		body:         body,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}, nil
}
