// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

// Package api exposes the synced BoardGameGeek data over HTTP.
//
// Routing uses Chi with production middleware from the Chi ecosystem
// (go-chi/cors for CORS, go-chi/httprate for rate limiting). All
// endpoints return the standardized APIResponse envelope and serve the
// last good snapshot published by the sync manager; read endpoints
// never block on an in-flight refresh.
package api
