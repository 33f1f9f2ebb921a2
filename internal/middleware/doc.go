// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

// Package middleware provides HTTP middleware for the BGGSync API.
//
// The middleware here complements what chi ships with: request ID
// propagation wired into the logging package, Prometheus request
// instrumentation, and gzip response compression. CORS and rate limiting
// come from go-chi/cors and go-chi/httprate and are wired directly in the
// API router.
package middleware
