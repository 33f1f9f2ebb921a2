// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

/*
Package bgg contains the typed records and defensive XML parsers for the
BoardGameGeek XML API.

BGG's XML payloads are inconsistent: attributes go missing, numeric fields
arrive empty or malformed, and large exports are generated asynchronously
behind a <message> wrapper. This package normalizes all of that into a
small set of nullable-field record types:

  - GameRecord: one board game or expansion, keyed by BGG object ID
  - CollectionItem: one raw item from the collection endpoint
  - LastPlay: the most recent logged play
  - CollectionCounts: fixed set of named ownership/status counters
  - Snapshot: the atomic output of one refresh cycle

Parsing rules:

  - One parse function per endpoint (ParsePlays, ParseCollection,
    ParseThings). Parse failures never cross item boundaries: an item
    missing a required numeric field is skipped with a warning, its
    siblings are unaffected.
  - Numeric-looking fields (players, playtimes, ratings) are kept as raw
    text. BGG's own values are occasionally empty or non-numeric and the
    presentation layer decides how to render them.
  - Rank resolution scans the ranks list for the entry named literally
    "boardgame"; when none exists the sentinel "Not Ranked" is used.

MergeGameRecord implements the non-null-overwrite law: merging a
detail-derived record into a collection-derived record (or vice versa)
only replaces fields the source actually provides.
*/
package bgg
