// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

/*
manager.go - Sync Manager Lifecycle and Orchestration

This file contains the sync manager struct, initialization, and lifecycle
methods for orchestrating data synchronization from BoardGameGeek.

Lifecycle Methods:
  - NewManager(): Initialize manager with configuration and client
  - Serve(): Run the periodic refresh loop (suture.Service)
  - TriggerSync(): Manual refresh execution (mutex-protected)
  - Snapshot(): Read the last published snapshot
  - LastSyncTime(), LastError(): Refresh status for health reporting

Thread Safety:
  - syncMu: Prevents concurrent refresh execution
  - mu: Protects published snapshot and last error
  - The published snapshot is immutable; readers share it without copying
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"sync"
	"time"

	"github.com/mfranz87/bggsync/internal/config"
	"github.com/mfranz87/bggsync/internal/logging"
	"github.com/mfranz87/bggsync/internal/metrics"
	"github.com/mfranz87/bggsync/internal/models/bgg"
)

// Manager orchestrates periodic refresh cycles against BGG and publishes
// the resulting snapshots. It implements suture.Service via Serve.
type Manager struct {
	cfg     *config.Config
	client  BGGClientInterface
	tracked []int

	// syncMu serializes refresh cycles; ticker fires and manual triggers
	// never overlap.
	syncMu sync.Mutex

	// mu guards the published snapshot and refresh status below.
	mu       sync.RWMutex
	snapshot *bgg.Snapshot
	lastErr  error

	// loggedIn records a successful session login. Only touched while
	// syncMu is held.
	loggedIn bool
}

// NewManager creates a sync manager. The tracked game ID list is fixed at
// construction from the configuration.
func NewManager(cfg *config.Config, client BGGClientInterface) *Manager {
	return &Manager{
		cfg:     cfg,
		client:  client,
		tracked: cfg.TrackedGameIDs(),
	}
}

// Serve runs the refresh loop until the context is canceled. An initial
// refresh runs immediately so the API has data as soon as BGG answers.
func (m *Manager) Serve(ctx context.Context) error {
	if err := m.client.ValidateAuth(ctx); err != nil {
		// Refreshes still run; a transient upstream failure at boot must
		// not keep the service down.
		logging.Error().Err(err).Msg("BGG credential check failed at startup")
	} else {
		logging.Info().Str("username", m.cfg.BGG.Username).Msg("BGG credentials verified")
	}

	if err := m.TriggerSync(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial refresh did not complete")
	}

	ticker := time.NewTicker(m.cfg.Sync.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.TriggerSync(ctx); err != nil {
				logging.Warn().Err(err).Msg("Refresh did not complete")
			}
		}
	}
}

// TriggerSync runs one refresh cycle. A completed cycle atomically
// replaces the published snapshot; an aborted cycle leaves the previous
// snapshot in place and returns the abort reason.
func (m *Manager) TriggerSync(ctx context.Context) error {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()

	start := time.Now()
	snap, outcome, err := m.refresh(ctx)
	metrics.RecordRefresh(time.Since(start), outcome)

	if err != nil {
		m.mu.Lock()
		m.lastErr = err
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.snapshot = snap
	m.lastErr = nil
	m.mu.Unlock()

	m.publishGauges(snap)
	logging.Info().
		Str("outcome", outcome).
		Int("total_plays", snap.TotalPlays).
		Int("owned", snap.Counts.Owned).
		Int("tracked", len(m.tracked)).
		Dur("took", time.Since(start)).
		Msg("Refresh cycle completed")
	return nil
}

// Snapshot returns the last published snapshot, nil before the first
// completed cycle. The snapshot is immutable; callers must not modify it.
func (m *Manager) Snapshot() *bgg.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// LastSyncTime returns the completion time of the last published cycle,
// zero before the first one.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return time.Time{}
	}
	return m.snapshot.LastSync
}

// LastError returns the abort reason of the most recent cycle, nil when
// the last cycle published a snapshot.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// TrackedGameIDs returns the configured tracked game IDs.
func (m *Manager) TrackedGameIDs() []int {
	return m.tracked
}

// RecordPlay submits a play to BGG and triggers a refresh so the new play
// shows up without waiting for the next interval.
func (m *Manager) RecordPlay(ctx context.Context, play *PlayRequest) error {
	if err := m.client.RecordPlay(ctx, play); err != nil {
		return err
	}
	if err := m.TriggerSync(ctx); err != nil {
		// The play is saved on BGG; a failed follow-up refresh only delays
		// its visibility.
		logging.Warn().Err(err).Msg("Post-play refresh did not complete")
	}
	return nil
}

func (m *Manager) publishGauges(snap *bgg.Snapshot) {
	metrics.UpdateSnapshotGauges(snap.TotalPlays, len(m.tracked), map[string]int{
		"owned":        snap.Counts.Owned,
		"wishlist":     snap.Counts.Wishlist,
		"want_to_play": snap.Counts.WantToPlay,
		"want_to_buy":  snap.Counts.WantToBuy,
		"for_trade":    snap.Counts.ForTrade,
		"preordered":   snap.Counts.Preordered,
	})
}
