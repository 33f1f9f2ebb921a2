// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

/*
Package config provides layered configuration loading for BGGSync.

Configuration is loaded via Koanf v2 with three layers, highest priority
last:

 1. Built-in defaults (struct provider)
 2. Optional YAML config file (config.yaml, /etc/bggsync/config.yaml,
    or the path in CONFIG_PATH)
 3. Environment variables via an explicit name mapping
    (BGG_USERNAME -> bgg.username, SYNC_INTERVAL -> sync.interval, ...)

Tracked games can be configured two ways, and both are honored:

  - bgg.games: legacy comma-separated ID list ("822,13,68448")
  - bgg.game_data: structured map keyed by game ID with per-game
    metadata (NFC tag, music link, custom image override)

TrackedGameIDs merges the two sources, deduplicated and sorted.
*/
package config
