// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

// Package metrics provides Prometheus instrumentation for BGGSync.
//
// All collectors are registered with the default registry via promauto at
// package init, so importing this package is enough to expose them through
// promhttp. Collectors cover the refresh cycle, the BGG API client, the
// circuit breaker and the HTTP API surface.
package metrics
