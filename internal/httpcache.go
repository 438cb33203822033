/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/mikeb26/swisstd/s3cache"
)

// CacheOptions controls where downloaded rating lists are cached.
type CacheOptions struct {
	// Bucket is the S3 bucket used for the shared cache. Empty selects an
	// in-memory cache.
	Bucket string
	Gzip   bool
	// MaxAge is the client-side TTL enforced regardless of origin headers.
	MaxAge time.Duration
}

// NewCachedHttpClient returns an http.Client that caches via S3-backed
// httpcache. If the S3 cache cannot be initialized it falls back to an
// in-memory cache. Either way the TTL in opts is enforced by rewriting origin
// cache headers.
func NewCachedHttpClient(ctx context.Context, opts CacheOptions) *http.Client {
	log := Logger("internal")

	var cache httpcache.Cache
	if opts.Bucket != "" {
		s3c := s3cache.New(ctx, opts.Bucket, s3cache.WithGzip(opts.Gzip),
			s3cache.WithLogger(Logger("s3cache")))
		if err := s3c.Init(); err != nil {
			log.Warnf("internal.NewCachedHttpClient: failed to init S3 cache: %v; falling back to memory cache", err)
		} else {
			cache = s3c
		}
	}
	if cache == nil {
		cache = httpcache.NewMemoryCache()
	}

	hc := httpcache.NewTransport(cache)
	// origin servers frequently mark rating lists uncacheable; override so
	// the configured TTL applies
	maxAge := opts.MaxAge
	hc.Transport = &HeaderOverrideTransport{
		wrappedRT: http.DefaultTransport,
		Request: func(req *http.Request) {
			if req.Header.Get("User-Agent") == "" {
				req.Header.Set("User-Agent", UserAgent)
			}
		},
		Response: func(resp *http.Response) error {
			if maxAge <= 0 {
				return nil
			}
			resp.Header.Del("Pragma")
			resp.Header.Del("Expires")
			resp.Header.Del("Cache-Control")
			resp.Header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge/time.Second)))
			return nil
		},
	}

	return &http.Client{Transport: hc}
}

// HeaderOverrideTransport is an http.RoundTripper that lets callers adjust
// outgoing requests and incoming responses.
type HeaderOverrideTransport struct {
	Request  func(req *http.Request)
	Response func(resp *http.Response) error

	wrappedRT http.RoundTripper
}

// NewHeaderOverrideTransport wraps rt; a nil rt wraps http.DefaultTransport.
func NewHeaderOverrideTransport(rt http.RoundTripper) *HeaderOverrideTransport {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &HeaderOverrideTransport{wrappedRT: rt}
}

// RoundTrip applies Request and Response hooks around the underlying transport.
func (t *HeaderOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so we don’t stomp on the caller’s original
	req2 := req.Clone(req.Context())
	if t.Request != nil {
		t.Request(req2)
	}

	resp, err := t.wrappedRT.RoundTrip(req2)
	if err != nil {
		return nil, err
	}

	if t.Response != nil {
		if err := t.Response(resp); err != nil {
			resp.Body.Close()
			return nil, err
		}
	}
	return resp, nil
}
