/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, RefreshManual, cfg.Ratings.Refresh)
	assert.Equal(t, "fill-unset", cfg.Ratings.Policy)
	assert.Equal(t, 24*time.Hour, cfg.Ratings.Cache.MaxAge)
	assert.Equal(t, 200000, cfg.Pairing.MaxIterations)
	assert.Equal(t, "white", cfg.Pairing.InitialColor)
	assert.Equal(t, "BH/C1,BH,DE,WIN", cfg.Standings.Tiebreaks)
	assert.Empty(t, cfg.Ratings.Sources)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tdpair.yaml")
	yaml := `
log:
  level: debug
ratings:
  refresh: "@daily"
  policy: catalog-wins
  sources:
    - name: fide
      url: https://ratings.fide.com/download/players_list.zip
      format: fide-zip
pairing:
  max_iterations: 5000
  initial_color: black
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("TDPAIR_STANDINGS_TIEBREAKS", "BH,SB")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "@daily", cfg.Ratings.Refresh)
	assert.Equal(t, "catalog-wins", cfg.Ratings.Policy)
	require.Len(t, cfg.Ratings.Sources, 1)
	assert.Equal(t, "fide", cfg.Ratings.Sources[0].Name)
	assert.Equal(t, "fide-zip", cfg.Ratings.Sources[0].Format)
	assert.Equal(t, 5000, cfg.Pairing.MaxIterations)
	assert.Equal(t, "black", cfg.Pairing.InitialColor)
	assert.Equal(t, "BH,SB", cfg.Standings.Tiebreaks)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero iterations", func(c *Config) { c.Pairing.MaxIterations = 0 }},
		{"bad color", func(c *Config) { c.Pairing.InitialColor = "green" }},
		{"zero rate", func(c *Config) { c.Ratings.RequestsPerMinute = 0 }},
		{"source without url", func(c *Config) {
			c.Ratings.Sources = []RatingSource{{Name: "x"}}
		}},
		{"bad format", func(c *Config) {
			c.Ratings.Sources = []RatingSource{{URL: "http://x", Format: "csv"}}
		}},
		{"bad policy", func(c *Config) { c.Ratings.Policy = "sometimes" }},
		{"bad refresh", func(c *Config) { c.Ratings.Refresh = "hourly-ish" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Config{
				Pairing: PairingConfig{MaxIterations: 10, InitialColor: "white"},
				Ratings: RatingsConfig{RequestsPerMinute: 1},
			}
			require.NoError(t, cfg.Validate())
			c.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestScheduledRefresh(t *testing.T) {
	assert.False(t, RatingsConfig{}.ScheduledRefresh())
	assert.False(t, RatingsConfig{Refresh: RefreshOnOpen}.ScheduledRefresh())
	assert.True(t, RatingsConfig{Refresh: "0 3 * * *"}.ScheduledRefresh())

	cfg := Config{
		Pairing: PairingConfig{MaxIterations: 10, InitialColor: "white"},
		Ratings: RatingsConfig{RequestsPerMinute: 1, Refresh: "@every 6h"},
	}
	assert.NoError(t, cfg.Validate())
}
