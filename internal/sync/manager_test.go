// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package sync

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/mfranz87/bggsync/internal/config"
	"github.com/mfranz87/bggsync/internal/models/bgg"
)

// mockClient implements BGGClientInterface with canned responses and call
// recording.
type mockClient struct {
	mu sync.Mutex

	plays    *bgg.PlaysPage
	playsErr error

	collections   map[string]*bgg.CollectionPage
	collectionErr map[string]error

	gamePlays      map[int]int
	gamePlaysErr   error
	gamePlaysCalls []int

	thingRecords map[int]*bgg.GameRecord
	thingErr     error
	thingBatches [][]int

	loginErr   error
	loginCalls int

	recorded  []*PlayRequest
	recordErr error
}

func (m *mockClient) FetchPlays(ctx context.Context, username string) (*bgg.PlaysPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playsErr != nil {
		return nil, m.playsErr
	}
	return m.plays, nil
}

func (m *mockClient) FetchGamePlays(ctx context.Context, username string, gameID int) (*bgg.PlaysPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamePlaysCalls = append(m.gamePlaysCalls, gameID)
	if m.gamePlaysErr != nil {
		return nil, m.gamePlaysErr
	}
	return &bgg.PlaysPage{Total: m.gamePlays[gameID]}, nil
}

func (m *mockClient) FetchCollection(ctx context.Context, username, subtype string) (*bgg.CollectionPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.collectionErr[subtype]; err != nil {
		return nil, err
	}
	if page, ok := m.collections[subtype]; ok {
		return page, nil
	}
	return &bgg.CollectionPage{}, nil
}

func (m *mockClient) FetchThingDetails(ctx context.Context, ids []int) ([]*bgg.GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := append([]int(nil), ids...)
	m.thingBatches = append(m.thingBatches, batch)
	if m.thingErr != nil {
		return nil, m.thingErr
	}
	var records []*bgg.GameRecord
	for _, id := range ids {
		if rec, ok := m.thingRecords[id]; ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (m *mockClient) Login(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginCalls++
	return m.loginErr
}

func (m *mockClient) ValidateAuth(ctx context.Context) error { return nil }

func (m *mockClient) RecordPlay(ctx context.Context, play *PlayRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.recorded = append(m.recorded, play)
	return nil
}

func ownedItem(id int, name, subtype string, numPlays int) bgg.CollectionItem {
	return bgg.CollectionItem{
		ObjectID: id,
		Subtype:  subtype,
		Name:     bgg.StringPtr(name),
		NumPlays: numPlays,
		Own:      true,
		Rank:     bgg.NotRanked,
		CollID:   bgg.StringPtr("c" + name),
	}
}

func testConfig(games string) *config.Config {
	return &config.Config{
		BGG: config.BGGConfig{
			URL:      "http://bgg.test",
			Username: "meeple_master",
			Games:    games,
		},
		Sync: config.SyncConfig{Interval: 5 * time.Minute},
	}
}

func TestTriggerSyncBuildsSnapshot(t *testing.T) {
	t.Parallel()

	client := &mockClient{
		plays: &bgg.PlaysPage{Total: 37, LastPlay: &bgg.LastPlay{Game: "Carcassonne", Date: "2026-08-30"}},
		collections: map[string]*bgg.CollectionPage{
			bgg.SubtypeBoardgame: {Items: []bgg.CollectionItem{
				ownedItem(822, "Carcassonne", bgg.SubtypeBoardgame, 12),
				{ObjectID: 13, Subtype: bgg.SubtypeBoardgame, Name: bgg.StringPtr("Catan"), Wishlist: true, Rank: bgg.NotRanked},
			}},
			bgg.SubtypeExpansion: {Items: []bgg.CollectionItem{
				ownedItem(1102, "Inns and Cathedrals", bgg.SubtypeExpansion, 4),
			}},
		},
		gamePlays: map[int]int{174430: 5},
		thingRecords: map[int]*bgg.GameRecord{
			822:    {BGGID: 822, Rank: bgg.StringPtr("201"), Weight: bgg.StringPtr("1.9")},
			174430: {BGGID: 174430, Name: bgg.StringPtr("Gloomhaven"), Rank: bgg.StringPtr("3")},
		},
	}

	mgr := NewManager(testConfig("822,174430"), client)
	if err := mgr.TriggerSync(context.Background()); err != nil {
		t.Fatalf("TriggerSync() error: %v", err)
	}

	snap := mgr.Snapshot()
	if snap == nil {
		t.Fatal("Snapshot() = nil after successful cycle")
	}
	if snap.TotalPlays != 37 {
		t.Errorf("TotalPlays = %d, want 37", snap.TotalPlays)
	}
	if snap.LastSync.IsZero() {
		t.Error("LastSync not stamped")
	}
	if err := mgr.LastError(); err != nil {
		t.Errorf("LastError() = %v, want nil", err)
	}

	// Counts: owned split by subtype, wishlist separate.
	if snap.Counts.Owned != 2 || snap.Counts.OwnedBoardgames != 1 || snap.Counts.OwnedExpansions != 1 {
		t.Errorf("owned counts = %+v, want 2/1/1", snap.Counts)
	}
	if snap.Counts.Wishlist != 1 {
		t.Errorf("Wishlist = %d, want 1", snap.Counts.Wishlist)
	}

	// Collection holds owned entries only; details hold everything.
	if _, ok := snap.Collection[13]; ok {
		t.Error("wishlist-only game present in Collection")
	}
	if _, ok := snap.GameDetails[13]; !ok {
		t.Error("wishlist-only game missing from GameDetails")
	}

	// Per-game plays fetched only for tracked games the collection missed.
	if len(client.gamePlaysCalls) != 1 || client.gamePlaysCalls[0] != 174430 {
		t.Errorf("gamePlaysCalls = %v, want [174430]", client.gamePlaysCalls)
	}
	if snap.GamePlays[822] != 12 || snap.GamePlays[174430] != 5 {
		t.Errorf("GamePlays = %v, want 822:12 174430:5", snap.GamePlays)
	}

	// Thing details merged into the collection record without clobbering
	// collection-only fields.
	carc := snap.GameDetails[822]
	if carc == nil || carc.Rank == nil || *carc.Rank != "201" {
		t.Fatalf("Carcassonne details = %+v, want rank 201", carc)
	}
	if carc.CollectionEntryID == nil || *carc.CollectionEntryID != "cCarcassonne" {
		t.Errorf("CollectionEntryID = %v, want preserved", carc.CollectionEntryID)
	}
	if carc.PlayCount != 12 {
		t.Errorf("PlayCount = %d, want 12", carc.PlayCount)
	}
	if gloom := snap.GameDetails[174430]; gloom == nil || gloom.PlayCount != 5 {
		t.Errorf("Gloomhaven details = %+v, want play count 5", gloom)
	}
}

func TestTriggerSyncStillProcessingKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	client := &mockClient{
		plays: &bgg.PlaysPage{Total: 37},
		collections: map[string]*bgg.CollectionPage{
			bgg.SubtypeBoardgame: {Items: []bgg.CollectionItem{ownedItem(822, "Carcassonne", bgg.SubtypeBoardgame, 12)}},
		},
	}
	mgr := NewManager(testConfig(""), client)

	if err := mgr.TriggerSync(context.Background()); err != nil {
		t.Fatalf("first TriggerSync() error: %v", err)
	}
	first := mgr.Snapshot()

	client.mu.Lock()
	client.collectionErr = map[string]error{bgg.SubtypeBoardgame: ErrStillProcessing}
	client.mu.Unlock()

	err := mgr.TriggerSync(context.Background())
	if !errors.Is(err, ErrStillProcessing) {
		t.Fatalf("second TriggerSync() error = %v, want ErrStillProcessing", err)
	}
	if mgr.Snapshot() != first {
		t.Error("aborted cycle replaced the published snapshot")
	}
	if !errors.Is(mgr.LastError(), ErrStillProcessing) {
		t.Errorf("LastError() = %v, want ErrStillProcessing", mgr.LastError())
	}
}

func TestTriggerSyncPlaysFailureZeroesTotals(t *testing.T) {
	t.Parallel()

	client := &mockClient{
		plays: &bgg.PlaysPage{Total: 37, LastPlay: &bgg.LastPlay{Game: "Carcassonne"}},
	}
	mgr := NewManager(testConfig(""), client)

	if err := mgr.TriggerSync(context.Background()); err != nil {
		t.Fatalf("first TriggerSync() error: %v", err)
	}

	client.mu.Lock()
	client.playsErr = &StatusError{Endpoint: "plays", Code: http.StatusUnauthorized}
	client.mu.Unlock()

	// A failed plays fetch is not fatal; the totals go to zero for this
	// cycle and come back once the endpoint recovers.
	if err := mgr.TriggerSync(context.Background()); err != nil {
		t.Fatalf("second TriggerSync() error: %v", err)
	}

	snap := mgr.Snapshot()
	if snap.TotalPlays != 0 {
		t.Errorf("TotalPlays = %d, want 0 for the degraded cycle", snap.TotalPlays)
	}
	if snap.LastPlay != nil {
		t.Errorf("LastPlay = %+v, want nil for the degraded cycle", snap.LastPlay)
	}
}

func TestTriggerSyncCollectionTransportErrorKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	client := &mockClient{
		plays: &bgg.PlaysPage{Total: 37},
		collections: map[string]*bgg.CollectionPage{
			bgg.SubtypeBoardgame: {Items: []bgg.CollectionItem{ownedItem(822, "Carcassonne", bgg.SubtypeBoardgame, 12)}},
		},
	}
	mgr := NewManager(testConfig(""), client)

	if err := mgr.TriggerSync(context.Background()); err != nil {
		t.Fatalf("first TriggerSync() error: %v", err)
	}
	first := mgr.Snapshot()

	// A connection-level failure says nothing about the collection state,
	// so the cycle aborts instead of publishing an empty collection.
	transportErr := errors.New("collection request failed: connection refused")
	client.mu.Lock()
	client.collectionErr = map[string]error{
		bgg.SubtypeBoardgame: transportErr,
		bgg.SubtypeExpansion: transportErr,
	}
	client.mu.Unlock()

	if err := mgr.TriggerSync(context.Background()); err == nil {
		t.Fatal("TriggerSync() with transport failure succeeded, want error")
	}
	if mgr.Snapshot() != first {
		t.Error("failed cycle replaced the published snapshot")
	}
}

func TestTriggerSyncCollectionStatusErrorDegrades(t *testing.T) {
	t.Parallel()

	client := &mockClient{
		plays: &bgg.PlaysPage{Total: 37},
		collections: map[string]*bgg.CollectionPage{
			bgg.SubtypeBoardgame: {Items: []bgg.CollectionItem{ownedItem(822, "Carcassonne", bgg.SubtypeBoardgame, 12)}},
		},
		collectionErr: map[string]error{
			bgg.SubtypeExpansion: &StatusError{Endpoint: "collection", Code: http.StatusInternalServerError},
		},
	}
	mgr := NewManager(testConfig(""), client)

	// A server error on one subtype omits that subtype but still publishes
	// the rest.
	if err := mgr.TriggerSync(context.Background()); err != nil {
		t.Fatalf("TriggerSync() error: %v", err)
	}
	snap := mgr.Snapshot()
	if snap == nil || snap.Counts.Owned != 1 || snap.Counts.OwnedExpansions != 0 {
		t.Errorf("counts = %+v, want one owned boardgame and no expansions", snap.Counts)
	}
}

func TestTriggerSyncThingBatching(t *testing.T) {
	t.Parallel()

	games := ""
	for i := 1; i <= 25; i++ {
		if games != "" {
			games += ","
		}
		games += strconv.Itoa(i)
	}

	client := &mockClient{plays: &bgg.PlaysPage{}}
	mgr := NewManager(testConfig(games), client)

	if err := mgr.TriggerSync(context.Background()); err != nil {
		t.Fatalf("TriggerSync() error: %v", err)
	}

	if len(client.thingBatches) != 2 {
		t.Fatalf("thing batches = %d, want 2", len(client.thingBatches))
	}
	if len(client.thingBatches[0]) != ThingBatchSize || len(client.thingBatches[1]) != 5 {
		t.Errorf("batch sizes = %d/%d, want 20/5", len(client.thingBatches[0]), len(client.thingBatches[1]))
	}
}

func TestTriggerSyncThingFailureDegradesOnly(t *testing.T) {
	t.Parallel()

	client := &mockClient{
		plays:    &bgg.PlaysPage{Total: 10},
		thingErr: errors.New("upstream 500"),
	}
	mgr := NewManager(testConfig("822"), client)

	if err := mgr.TriggerSync(context.Background()); err != nil {
		t.Fatalf("TriggerSync() error: %v", err)
	}
	snap := mgr.Snapshot()
	if snap == nil || snap.TotalPlays != 10 {
		t.Fatalf("snapshot = %+v, want published despite thing failure", snap)
	}
	if len(snap.GameDetails) != 0 {
		t.Errorf("GameDetails = %v, want empty after batch failure", snap.GameDetails)
	}
}

func TestTriggerSyncEnrichesOwnedGames(t *testing.T) {
	t.Parallel()

	// Owned games get thing details even when they are not tracked and no
	// tracked list is configured at all.
	client := &mockClient{
		plays: &bgg.PlaysPage{},
		collections: map[string]*bgg.CollectionPage{
			bgg.SubtypeBoardgame: {Items: []bgg.CollectionItem{ownedItem(822, "Carcassonne", bgg.SubtypeBoardgame, 12)}},
		},
		thingRecords: map[int]*bgg.GameRecord{
			822: {BGGID: 822, Rank: bgg.StringPtr("201")},
		},
	}
	mgr := NewManager(testConfig(""), client)

	if err := mgr.TriggerSync(context.Background()); err != nil {
		t.Fatalf("TriggerSync() error: %v", err)
	}

	if len(client.thingBatches) != 1 || len(client.thingBatches[0]) != 1 || client.thingBatches[0][0] != 822 {
		t.Fatalf("thingBatches = %v, want [[822]]", client.thingBatches)
	}
	snap := mgr.Snapshot()
	if rec := snap.GameDetails[822]; rec == nil || rec.Rank == nil || *rec.Rank != "201" {
		t.Errorf("GameDetails[822] = %+v, want enriched with rank 201", snap.GameDetails[822])
	}
}

func TestLoginOncePerProcess(t *testing.T) {
	t.Parallel()

	client := &mockClient{plays: &bgg.PlaysPage{}}
	cfg := testConfig("")
	cfg.BGG.EnableLogging = true
	cfg.BGG.Password = "hunter2"
	mgr := NewManager(cfg, client)

	for i := 0; i < 3; i++ {
		if err := mgr.TriggerSync(context.Background()); err != nil {
			t.Fatalf("TriggerSync() #%d error: %v", i, err)
		}
	}
	if client.loginCalls != 1 {
		t.Errorf("login calls = %d, want 1", client.loginCalls)
	}
}

func TestLoginSkippedWithAPIToken(t *testing.T) {
	t.Parallel()

	// A configured API token covers the XML API reads, so the refresh
	// cycle has no use for a cookie session.
	client := &mockClient{plays: &bgg.PlaysPage{}}
	cfg := testConfig("")
	cfg.BGG.EnableLogging = true
	cfg.BGG.Password = "hunter2"
	cfg.BGG.APIToken = "tok-123"
	mgr := NewManager(cfg, client)

	if err := mgr.TriggerSync(context.Background()); err != nil {
		t.Fatalf("TriggerSync() error: %v", err)
	}
	if client.loginCalls != 0 {
		t.Errorf("login calls = %d, want 0 with an API token configured", client.loginCalls)
	}
}

func TestLoginRetriedAfterFailure(t *testing.T) {
	t.Parallel()

	client := &mockClient{plays: &bgg.PlaysPage{}, loginErr: errors.New("bad gateway")}
	cfg := testConfig("")
	cfg.BGG.EnableLogging = true
	cfg.BGG.Password = "hunter2"
	mgr := NewManager(cfg, client)

	_ = mgr.TriggerSync(context.Background())
	_ = mgr.TriggerSync(context.Background())
	if client.loginCalls != 2 {
		t.Errorf("login calls = %d, want 2 while failing", client.loginCalls)
	}

	client.mu.Lock()
	client.loginErr = nil
	client.mu.Unlock()
	_ = mgr.TriggerSync(context.Background())
	_ = mgr.TriggerSync(context.Background())
	if client.loginCalls != 3 {
		t.Errorf("login calls = %d, want 3 after success", client.loginCalls)
	}
}

func TestRecordPlayTriggersRefresh(t *testing.T) {
	t.Parallel()

	client := &mockClient{plays: &bgg.PlaysPage{Total: 38}}
	mgr := NewManager(testConfig(""), client)

	play := &PlayRequest{GameID: 822, Date: "2026-08-30"}
	if err := mgr.RecordPlay(context.Background(), play); err != nil {
		t.Fatalf("RecordPlay() error: %v", err)
	}

	if len(client.recorded) != 1 || client.recorded[0].GameID != 822 {
		t.Errorf("recorded plays = %+v, want one for 822", client.recorded)
	}
	if snap := mgr.Snapshot(); snap == nil || snap.TotalPlays != 38 {
		t.Errorf("snapshot after play = %+v, want refreshed with 38 plays", mgr.Snapshot())
	}
}

func TestRecordPlayFailureSkipsRefresh(t *testing.T) {
	t.Parallel()

	client := &mockClient{recordErr: ErrPlayRejected}
	mgr := NewManager(testConfig(""), client)

	err := mgr.RecordPlay(context.Background(), &PlayRequest{GameID: 822, Date: "2026-08-30"})
	if !errors.Is(err, ErrPlayRejected) {
		t.Fatalf("RecordPlay() error = %v, want ErrPlayRejected", err)
	}
	if mgr.Snapshot() != nil {
		t.Error("failed play still triggered a refresh")
	}
}

func TestChunkIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    int
		size int
		want []int // chunk lengths
	}{
		{name: "empty", n: 0, size: 20, want: nil},
		{name: "under one batch", n: 7, size: 20, want: []int{7}},
		{name: "exact batch", n: 20, size: 20, want: []int{20}},
		{name: "one over", n: 21, size: 20, want: []int{20, 1}},
		{name: "several batches", n: 65, size: 20, want: []int{20, 20, 20, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ids := make([]int, tt.n)
			for i := range ids {
				ids[i] = i
			}
			chunks := chunkIDs(ids, tt.size)
			if len(chunks) != len(tt.want) {
				t.Fatalf("chunks = %d, want %d", len(chunks), len(tt.want))
			}
			total := 0
			for i, chunk := range chunks {
				if len(chunk) != tt.want[i] {
					t.Errorf("chunk %d length = %d, want %d", i, len(chunk), tt.want[i])
				}
				total += len(chunk)
			}
			if total != tt.n {
				t.Errorf("total elements = %d, want %d", total, tt.n)
			}
		})
	}
}
