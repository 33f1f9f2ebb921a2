// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package sync

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/mfranz87/bggsync/internal/logging"
	"github.com/mfranz87/bggsync/internal/metrics"
	"github.com/mfranz87/bggsync/internal/models/bgg"
)

// Refresh outcomes as recorded in metrics.
const (
	outcomeSuccess  = "success"
	outcomeDegraded = "degraded"
	outcomeError    = "error"
)

// refresh runs one full cycle and builds a fresh snapshot from empty.
//
// The cycle order is fixed: conditional login, plays, collection for both
// subtypes, per-game plays for tracked games the collection did not cover,
// then thing details in batches. A still-processing collection export or a
// transport failure on the collection fetch aborts the whole cycle; other
// upstream failures degrade the cycle but let it complete.
//
// Callers must hold syncMu.
func (m *Manager) refresh(ctx context.Context) (*bgg.Snapshot, string, error) {
	username := m.cfg.BGG.Username
	outcome := outcomeSuccess
	snap := bgg.NewSnapshot()

	// Session login happens once per process, and only when the cookie
	// session is actually needed: a configured API token already covers
	// the XML API reads, so a failed login only degrades play logging.
	if m.cfg.BGG.EnableLogging && m.cfg.BGG.APIToken == "" && !m.loggedIn {
		if err := m.client.Login(ctx); err != nil {
			logging.Warn().Err(err).Msg("BGG session login failed, retrying next cycle")
		} else {
			m.loggedIn = true
		}
	}

	// Account-wide plays. Failures here are not fatal: the totals stay at
	// zero for this cycle and the next cycle refetches them.
	plays, err := m.client.FetchPlays(ctx, username)
	switch {
	case err == nil:
		snap.TotalPlays = plays.Total
		snap.LastPlay = plays.LastPlay
	case IsStatus(err, http.StatusAccepted):
		logging.Info().Msg("Plays not ready yet, totals stay at zero this cycle")
	case IsStatus(err, http.StatusUnauthorized):
		logging.Error().Err(err).Msg("BGG rejected credentials on plays fetch")
		outcome = outcomeDegraded
	default:
		logging.Warn().Err(err).Msg("Plays fetch failed")
		outcome = outcomeDegraded
	}

	// Collection, one export per subtype. BGG building the export
	// server-side aborts the cycle: a half-fetched collection would make
	// the counts lie, and the previous snapshot is still good. A server
	// error status omits that subtype; a transport failure also aborts,
	// since it says nothing about the state of the other calls.
	for _, subtype := range []string{bgg.SubtypeBoardgame, bgg.SubtypeExpansion} {
		page, err := m.client.FetchCollection(ctx, username, subtype)
		if errors.Is(err, ErrStillProcessing) {
			metrics.CollectionStillProcessing.Inc()
			logging.Info().Str("subtype", subtype).Msg("Collection export still processing, keeping previous snapshot")
			return nil, outcomeError, ErrStillProcessing
		}
		if err != nil {
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				logging.Error().Err(err).Str("subtype", subtype).Msg("Collection fetch failed, keeping previous snapshot")
				return nil, outcomeError, err
			}
			logging.Warn().Err(err).Str("subtype", subtype).Msg("Collection fetch failed")
			outcome = outcomeDegraded
			continue
		}
		if page.Skipped > 0 {
			logging.Warn().Int("skipped", page.Skipped).Str("subtype", subtype).Msg("Collection items dropped during parsing")
		}

		for i := range page.Items {
			item := &page.Items[i]
			snap.Counts.Add(item)
			snap.GamePlays[item.ObjectID] = item.NumPlays

			rec := item.Record()
			if item.Own {
				mergeInto(snap.Collection, rec)
			}
			mergeInto(snap.GameDetails, item.Record())
		}
	}

	// Tracked games outside the collection still need a play count; the
	// plays endpoint carries the per-game total.
	for _, id := range m.tracked {
		if _, ok := snap.GamePlays[id]; ok {
			continue
		}
		page, err := m.client.FetchGamePlays(ctx, username, id)
		if err != nil {
			logging.Warn().Err(err).Int("game_id", id).Msg("Game plays fetch failed")
			outcome = outcomeDegraded
			continue
		}
		snap.GamePlays[id] = page.Total
	}

	// Thing details enrich what the collection export carries. Batches
	// fail independently; one bad batch costs only its own games.
	for _, batch := range chunkIDs(m.detailIDs(snap), ThingBatchSize) {
		records, err := m.client.FetchThingDetails(ctx, batch)
		if err != nil {
			logging.Warn().Err(err).Ints("game_ids", batch).Msg("Thing details fetch failed")
			outcome = outcomeDegraded
			continue
		}
		for _, rec := range records {
			mergeInto(snap.GameDetails, rec)
			if pc, ok := snap.GamePlays[rec.BGGID]; ok {
				snap.GameDetails[rec.BGGID].PlayCount = pc
			}
		}
	}

	snap.LastSync = time.Now()
	return snap, outcome, nil
}

// detailIDs returns the sorted set of game IDs to enrich with thing
// details: every tracked game plus every owned game. Ownership alone is
// enough, tracked or not, since the owned entries feed the collection view.
func (m *Manager) detailIDs(snap *bgg.Snapshot) []int {
	seen := make(map[int]struct{}, len(m.tracked)+len(snap.Collection))
	for _, id := range m.tracked {
		seen[id] = struct{}{}
	}
	for id := range snap.Collection {
		seen[id] = struct{}{}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// mergeInto adds rec to the map, merging field-by-field when the game is
// already present. Known values are never clobbered by nulls.
func mergeInto(dst map[int]*bgg.GameRecord, rec *bgg.GameRecord) {
	if existing, ok := dst[rec.BGGID]; ok {
		bgg.MergeGameRecord(existing, rec)
		return
	}
	dst[rec.BGGID] = rec
}

// chunkIDs splits ids into slices of at most size elements.
func chunkIDs(ids []int, size int) [][]int {
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]int, 0, (len(ids)+size-1)/size)
	for size < len(ids) {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	return append(chunks, ids)
}
