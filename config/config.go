/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mikeb26/swisstd/internal"
	"github.com/mikeb26/swisstd/ratings"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Ratings   RatingsConfig   `mapstructure:"ratings"`
	Pairing   PairingConfig   `mapstructure:"pairing"`
	Standings StandingsConfig `mapstructure:"standings"`
	Announce  AnnounceConfig  `mapstructure:"announce"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RatingSource names one downloadable rating list.
type RatingSource struct {
	Name   string `mapstructure:"name"`
	URL    string `mapstructure:"url"`
	Format string `mapstructure:"format"`
}

type CacheConfig struct {
	Bucket string        `mapstructure:"bucket"`
	MaxAge time.Duration `mapstructure:"max_age"`
	Gzip   bool          `mapstructure:"gzip"`
}

type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type RatingsConfig struct {
	Sources []RatingSource `mapstructure:"sources"`
	// Refresh is "manual", "on-open" or a cron schedule.
	Refresh           string        `mapstructure:"refresh"`
	Policy            string        `mapstructure:"policy"`
	Cache             CacheConfig   `mapstructure:"cache"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Breaker           BreakerConfig `mapstructure:"breaker"`
}

type PairingConfig struct {
	MaxIterations int    `mapstructure:"max_iterations"`
	InitialColor  string `mapstructure:"initial_color"`
	RelaxColors   bool   `mapstructure:"relax_colors"`
}

type StandingsConfig struct {
	Tiebreaks string `mapstructure:"tiebreaks"`
}

type DiscordConfig struct {
	WebhookID    string `mapstructure:"webhook_id"`
	WebhookToken string `mapstructure:"webhook_token"`
}

type AnnounceConfig struct {
	Discord DiscordConfig `mapstructure:"discord"`
}

const (
	RefreshManual = "manual"
	RefreshOnOpen = "on-open"
)

// ScheduledRefresh reports whether Refresh holds a cron schedule.
func (r RatingsConfig) ScheduledRefresh() bool {
	switch strings.ToLower(strings.TrimSpace(r.Refresh)) {
	case "", RefreshManual, RefreshOnOpen:
		return false
	}
	return true
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("ratings.refresh", RefreshManual)
	v.SetDefault("ratings.policy", "fill-unset")
	v.SetDefault("ratings.cache.bucket", "")
	v.SetDefault("ratings.cache.max_age", "24h")
	v.SetDefault("ratings.cache.gzip", true)
	v.SetDefault("ratings.requests_per_minute", 6)
	v.SetDefault("ratings.timeout", "2m")
	v.SetDefault("ratings.breaker.max_failures", 3)
	v.SetDefault("ratings.breaker.timeout", "5m")
	v.SetDefault("pairing.max_iterations", 200000)
	v.SetDefault("pairing.initial_color", "white")
	v.SetDefault("pairing.relax_colors", false)
	v.SetDefault("standings.tiebreaks", "BH/C1,BH,DE,WIN")
	v.SetDefault("announce.discord.webhook_id", "")
	v.SetDefault("announce.discord.webhook_token", "")
}

// LoadConfig reads configuration from path, or from tdpair.yaml in the
// working directory or $HOME/.config/swisstd when path is empty. Values may
// be overridden with TDPAIR_ prefixed environment variables, e.g.
// TDPAIR_RATINGS_POLICY. A missing config file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tdpair")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/swisstd")
	}

	v.SetEnvPrefix(internal.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings that would only fail later at use.
func (c *Config) Validate() error {
	if c.Pairing.MaxIterations <= 0 {
		return fmt.Errorf("pairing.max_iterations must be positive; got %d",
			c.Pairing.MaxIterations)
	}
	switch strings.ToLower(c.Pairing.InitialColor) {
	case "white", "black", "white1", "black1":
	default:
		return fmt.Errorf("pairing.initial_color must be white or black; got %q",
			c.Pairing.InitialColor)
	}
	if c.Ratings.RequestsPerMinute <= 0 {
		return fmt.Errorf("ratings.requests_per_minute must be positive; got %d",
			c.Ratings.RequestsPerMinute)
	}
	for i, src := range c.Ratings.Sources {
		if src.URL == "" {
			return fmt.Errorf("ratings.sources[%d] has no url", i)
		}
		if _, err := ratings.ParseFormat(src.Format); err != nil {
			return fmt.Errorf("ratings.sources[%d].format: %w", i, err)
		}
	}
	if _, err := ratings.ParsePolicy(c.Ratings.Policy); err != nil {
		return fmt.Errorf("ratings.policy: %w", err)
	}
	if !c.Ratings.ScheduledRefresh() {
		return nil
	}
	if _, err := cron.ParseStandard(c.Ratings.Refresh); err != nil {
		return fmt.Errorf("ratings.refresh must be %v, %v or a cron schedule: %w",
			RefreshManual, RefreshOnOpen, err)
	}

	return nil
}
