// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// MinSyncInterval is the floor for the refresh interval. BGG rate-limits
// clients that poll more often than this.
const MinSyncInterval = 5 * time.Minute

// Validate checks the configuration for correctness. It returns the
// first problem found; validation is deliberately strict so a bad config
// fails at startup rather than mid-cycle.
func (c *Config) Validate() error {
	if err := c.BGG.validate(); err != nil {
		return fmt.Errorf("bgg: %w", err)
	}
	if err := c.Sync.validate(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := c.Server.validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Security.validate(); err != nil {
		return fmt.Errorf("security: %w", err)
	}
	if err := c.Logging.validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func (b *BGGConfig) validate() error {
	if strings.TrimSpace(b.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(b.URL) == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(b.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", b.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", b.URL)
	}
	if b.EnableLogging && b.Password == "" {
		return fmt.Errorf("enable_logging requires a password")
	}
	for key := range b.GameData {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			return fmt.Errorf("game_data contains an empty game ID key")
		}
		for _, r := range trimmed {
			if r < '0' || r > '9' {
				return fmt.Errorf("game_data key %q is not a numeric game ID", key)
			}
		}
	}
	return nil
}

func (s *SyncConfig) validate() error {
	if s.Interval < MinSyncInterval {
		return fmt.Errorf("interval %s is below the minimum %s", s.Interval, MinSyncInterval)
	}
	return nil
}

func (s *ServerConfig) validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", s.Port)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	return nil
}

func (s *SecurityConfig) validate() error {
	if s.RateLimitDisabled {
		return nil
	}
	if s.RateLimitReqs < 1 {
		return fmt.Errorf("rate_limit_reqs must be at least 1, got %d", s.RateLimitReqs)
	}
	if s.RateLimitWindow <= 0 {
		return fmt.Errorf("rate_limit_window must be positive, got %s", s.RateLimitWindow)
	}
	return nil
}

func (l *LoggingConfig) validate() error {
	switch strings.ToLower(l.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "":
	default:
		return fmt.Errorf("unknown log level %q", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "json", "console", "":
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}
	return nil
}
