/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mikeb26/swisstd/config"
	"github.com/mikeb26/swisstd/internal"
	"github.com/mikeb26/swisstd/ratings"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// this program exists just to seed the http cache with the configured
// rating lists so that tournament directors hit the cache, not the
// federation servers

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "ratingseed",
		Usage: "Download the configured rating lists into the shared HTTP cache",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}},
			&cli.StringFlag{Name: "bucket", Usage: "S3 bucket; overrides ratings.cache.bucket"},
		},
		Action: func(cCtx *cli.Context) error {
			_ = godotenv.Load()
			cfg, err := config.LoadConfig(cCtx.String("config"))
			if err != nil {
				return err
			}
			internal.InitLogger(cfg.Log.Level, cfg.Log.Format)

			bucket := cCtx.String("bucket")
			if bucket == "" {
				bucket = cfg.Ratings.Cache.Bucket
			}
			if bucket == "" {
				bucket = internal.DefaultCacheBucket
			}
			return seed(cCtx.Context, out, cfg, bucket)
		},
	}
}

func seed(ctx context.Context, out io.Writer, cfg *config.Config, bucket string) error {
	rc := cfg.Ratings
	if len(rc.Sources) == 0 {
		return ratings.ErrNoSources
	}
	client := internal.NewCachedHttpClient(ctx, internal.CacheOptions{
		Bucket: bucket,
		Gzip:   rc.Cache.Gzip,
		MaxAge: rc.Cache.MaxAge,
	})
	fetcher := ratings.NewFetcher(client, ratings.FetcherOptions{
		RequestsPerMinute: rc.RequestsPerMinute,
		Timeout:           rc.Timeout,
		MaxFailures:       rc.Breaker.MaxFailures,
		BreakerTimeout:    rc.Breaker.Timeout,
	})

	results := make([]string, len(rc.Sources))
	var g errgroup.Group
	for i, src := range rc.Sources {
		g.Go(func() error {
			format, err := ratings.ParseFormat(src.Format)
			if err != nil {
				return err
			}
			c, err := fetcher.Fetch(ctx, ratings.Source{Name: src.Name,
				URL: src.URL, Format: format})
			if err != nil {
				// best effort
				results[i] = fmt.Sprintf("failed %v: %v", src.URL, err)
				return nil
			}
			results[i] = fmt.Sprintf("seeded %v (%d players)", c.Source, c.Len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintln(out, r)
	}

	return nil
}
