// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package config

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config is the root configuration for BGGSync.
type Config struct {
	BGG      BGGConfig      `koanf:"bgg"`
	Sync     SyncConfig     `koanf:"sync"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// BGGConfig holds the BoardGameGeek account and tracking settings.
type BGGConfig struct {
	// URL is the BGG site base URL. Overridable for tests only.
	URL string `koanf:"url"`

	// Username is the BGG account to sync. Required.
	Username string `koanf:"username"`

	// APIToken is sent as a bearer token on XML API reads. BGG policy
	// requires one for API access.
	APIToken string `koanf:"api_token"`

	// Password is used for the cookie-session login and for recording
	// plays. Only handed to the client when EnableLogging is set.
	Password string `koanf:"password"`

	// EnableLogging enables play logging (and with it, password use).
	EnableLogging bool `koanf:"enable_logging"`

	// Games is the legacy comma-separated tracked game ID list.
	Games string `koanf:"games"`

	// GameData is the structured tracked-games map keyed by game ID.
	GameData map[string]GameMeta `koanf:"game_data"`

	// ImportCollection exposes every owned collection entry through the
	// games API, not only explicitly tracked games.
	ImportCollection bool `koanf:"import_collection"`
}

// GameMeta is per-game metadata attached to a tracked game. It is not
// fetched from BGG; it rides along into the per-game API view.
type GameMeta struct {
	NFCTag      string `koanf:"nfc_tag" json:"nfc_tag,omitempty"`
	Music       string `koanf:"music" json:"music,omitempty"`
	CustomImage string `koanf:"custom_image" json:"custom_image,omitempty"`
}

// SyncConfig controls the refresh cycle.
type SyncConfig struct {
	// Interval between refresh cycles. Minimum 5 minutes; BGG throttles
	// aggressive pollers.
	Interval time.Duration `koanf:"interval"`

	// CircuitBreaker wraps the BGG client with a circuit breaker.
	CircuitBreaker bool `koanf:"circuit_breaker"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig controls the HTTP surface's protections.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// TrackedGameIDs merges the legacy CSV list and the structured game_data
// keys into one deduplicated, sorted ID list. Non-numeric entries in
// either source are ignored.
func (c *Config) TrackedGameIDs() []int {
	seen := make(map[int]struct{})

	for _, raw := range strings.Split(c.BGG.Games, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			seen[id] = struct{}{}
		}
	}
	for key := range c.BGG.GameData {
		if id, err := strconv.Atoi(strings.TrimSpace(key)); err == nil && id > 0 {
			seen[id] = struct{}{}
		}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// GameMetaFor returns the structured metadata for a tracked game ID.
func (c *Config) GameMetaFor(id int) (GameMeta, bool) {
	meta, ok := c.BGG.GameData[strconv.Itoa(id)]
	return meta, ok
}

// EffectivePassword returns the password the client may use. The password
// never reaches the client unless play logging is enabled.
func (c *Config) EffectivePassword() string {
	if !c.BGG.EnableLogging {
		return ""
	}
	return c.BGG.Password
}
