// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

// Package supervisor builds the suture v4 supervision tree for the
// daemon. The sync manager and the HTTP server run in separate child
// supervisors so a crash loop in one never takes down the other; the
// API keeps serving the last good snapshot while the sync layer backs
// off and retries.
package supervisor
