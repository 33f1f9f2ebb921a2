// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

// Package sync implements the BoardGameGeek data synchronization layer.
//
// The package has two halves. BGGClient talks to the BGG XML API v2 and
// the site's session endpoints: it fetches plays, the collection in both
// subtypes, and thing details, and it can log a play against the account.
// Manager orchestrates periodic refresh cycles over that client and
// publishes an immutable snapshot of the merged state; readers always see
// the last cycle that completed, never a half-built one.
package sync
