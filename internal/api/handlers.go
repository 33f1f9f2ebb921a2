// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

// HTTP handlers serving the synced BGG data. Every handler reads the
// last good snapshot from the sync manager; nothing here talks to BGG
// directly except through the manager's RecordPlay and TriggerSync.
package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/mfranz87/bggsync/internal/config"
	"github.com/mfranz87/bggsync/internal/logging"
	"github.com/mfranz87/bggsync/internal/models/bgg"
	"github.com/mfranz87/bggsync/internal/sync"
)

// validate is a reusable validator instance
var validate = validator.New()

// SyncManager is the slice of the sync manager the handlers consume.
type SyncManager interface {
	Snapshot() *bgg.Snapshot
	LastSyncTime() time.Time
	LastError() error
	TrackedGameIDs() []int
	TriggerSync(ctx context.Context) error
	RecordPlay(ctx context.Context, play *sync.PlayRequest) error
}

// Handler holds dependencies for all API handlers.
type Handler struct {
	config    *config.Config
	sync      SyncManager
	startTime time.Time
}

// NewHandler creates the handler set.
func NewHandler(cfg *config.Config, manager SyncManager) *Handler {
	return &Handler{
		config:    cfg,
		sync:      manager,
		startTime: time.Now(),
	}
}

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	Status        string     `json:"status"`
	Username      string     `json:"username"`
	LastSync      *time.Time `json:"last_sync,omitempty"`
	LastSyncError string     `json:"last_sync_error,omitempty"`
	TrackedGames  int        `json:"tracked_games"`
	UptimeSeconds int64      `json:"uptime_seconds"`
}

// Health reports overall service health. The service is healthy when
// the most recent refresh succeeded, degraded when a snapshot exists
// but the latest refresh failed, and starting before the first success.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := HealthStatus{
		Username:      h.config.BGG.Username,
		TrackedGames:  len(h.sync.TrackedGameIDs()),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	snap := h.sync.Snapshot()
	lastErr := h.sync.LastError()

	switch {
	case snap == nil:
		status.Status = "starting"
	case lastErr != nil:
		status.Status = "degraded"
	default:
		status.Status = "healthy"
	}

	if lastSync := h.sync.LastSyncTime(); !lastSync.IsZero() {
		status.LastSync = &lastSync
	}
	if lastErr != nil {
		status.LastSyncError = lastErr.Error()
	}

	rw.Success(status)
}

// HealthLive is the liveness probe. Always 200 while the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe. Ready once at least one refresh
// has published a snapshot.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.sync.Snapshot() == nil {
		rw.ServiceUnavailable("No sync has completed yet")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}

// Snapshot returns the full last-good snapshot.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	snap := h.sync.Snapshot()
	if snap == nil {
		rw.ServiceUnavailable("No sync has completed yet")
		return
	}
	rw.Success(snap)
}

// Collection returns the owned collection items keyed by BGG ID.
func (h *Handler) Collection(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	snap := h.sync.Snapshot()
	if snap == nil {
		rw.ServiceUnavailable("No sync has completed yet")
		return
	}
	rw.Success(snap.Collection)
}

// Counts returns the collection status counters plus the all-time play
// total.
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	snap := h.sync.Snapshot()
	if snap == nil {
		rw.ServiceUnavailable("No sync has completed yet")
		return
	}

	rw.Success(struct {
		bgg.CollectionCounts
		TotalPlays int `json:"total_plays"`
	}{
		CollectionCounts: snap.Counts,
		TotalPlays:       snap.TotalPlays,
	})
}

// LastPlay returns the most recently logged play.
func (h *Handler) LastPlay(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	snap := h.sync.Snapshot()
	if snap == nil {
		rw.ServiceUnavailable("No sync has completed yet")
		return
	}
	if snap.LastPlay == nil {
		rw.NotFound("No plays logged")
		return
	}
	rw.Success(snap.LastPlay)
}

// GameView is the API shape of a single game: the synced record plus
// the operator-provided metadata from game_data.
type GameView struct {
	*bgg.GameRecord

	Tracked bool `json:"tracked"`
	Owned   bool `json:"owned"`

	NFCTag      string `json:"nfc_tag,omitempty"`
	Music       string `json:"music,omitempty"`
	CustomImage string `json:"custom_image,omitempty"`
}

// Games lists tracked games, plus every owned collection entry when
// import_collection is enabled. Ordered by BGG ID.
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	snap := h.sync.Snapshot()
	if snap == nil {
		rw.ServiceUnavailable("No sync has completed yet")
		return
	}

	ids := h.listedGameIDs(snap)
	views := make([]*GameView, 0, len(ids))
	for _, id := range ids {
		views = append(views, h.gameView(snap, id))
	}
	rw.Success(views)
}

// GameByID returns a single game view. Any game known to the snapshot
// is addressable, tracked or not.
func (h *Handler) GameByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		rw.BadRequest("Game ID must be a positive integer")
		return
	}

	snap := h.sync.Snapshot()
	if snap == nil {
		rw.ServiceUnavailable("No sync has completed yet")
		return
	}

	if _, known := snap.GameDetails[id]; !known && !h.isTracked(id) {
		rw.NotFound("Unknown game ID")
		return
	}
	rw.Success(h.gameView(snap, id))
}

// RecordPlay logs a play on BGG, then triggers a refresh so the next
// read reflects it.
func (h *Handler) RecordPlay(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if !h.config.BGG.EnableLogging {
		rw.Error(http.StatusForbidden, ErrCodeForbidden, "Play logging is disabled")
		return
	}

	var play sync.PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&play); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	if play.Date == "" {
		play.Date = time.Now().Format("2006-01-02")
	}

	if err := validate.Struct(&play); err != nil {
		rw.ValidationError("Invalid play request", validationDetails(err))
		return
	}

	if err := h.sync.RecordPlay(r.Context(), &play); err != nil {
		if errors.Is(err, sync.ErrPlayRejected) {
			rw.ErrorWithDetails(http.StatusBadGateway, ErrCodeExternalServiceFail,
				"BGG rejected the play", map[string]int{"game_id": play.GameID})
			return
		}
		rw.ExternalServiceError("boardgamegeek", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int("game_id", play.GameID).
		Str("date", play.Date).
		Msg("Play recorded")

	rw.Created(map[string]interface{}{
		"game_id": play.GameID,
		"date":    play.Date,
	})
}

// TriggerSync runs a refresh cycle immediately.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.sync.TriggerSync(r.Context()); err != nil {
		if errors.Is(err, sync.ErrStillProcessing) {
			rw.Accepted(map[string]string{
				"status": "collection export queued, retry shortly",
			})
			return
		}
		rw.ExternalServiceError("boardgamegeek", err)
		return
	}

	rw.Success(map[string]interface{}{
		"status":    "synced",
		"last_sync": h.sync.LastSyncTime(),
	})
}

// listedGameIDs is the ordered union of tracked IDs and, when
// import_collection is set, every owned collection entry.
func (h *Handler) listedGameIDs(snap *bgg.Snapshot) []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, id := range h.sync.TrackedGameIDs() {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if h.config.BGG.ImportCollection {
		for id := range snap.Collection {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	sort.Ints(ids)
	return ids
}

func (h *Handler) gameView(snap *bgg.Snapshot, id int) *GameView {
	record, ok := snap.GameDetails[id]
	if !ok {
		// Tracked but never seen on any endpoint yet.
		record = &bgg.GameRecord{BGGID: id}
	}

	_, owned := snap.Collection[id]
	view := &GameView{
		GameRecord: record,
		Tracked:    h.isTracked(id),
		Owned:      owned,
	}

	if meta, ok := h.config.GameMetaFor(id); ok {
		view.NFCTag = meta.NFCTag
		view.Music = meta.Music
		view.CustomImage = meta.CustomImage
	}
	return view
}

func (h *Handler) isTracked(id int) bool {
	for _, tracked := range h.sync.TrackedGameIDs() {
		if tracked == id {
			return true
		}
	}
	return false
}

// validationDetails flattens validator errors into field/tag pairs for
// the error envelope.
func validationDetails(err error) interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	details := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, map[string]string{
			"field": fe.Field(),
			"tag":   fe.Tag(),
		})
	}
	return details
}
