// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package bgg

import (
	"math/rand"
	"testing"
)

func TestCollectionCountsAdd(t *testing.T) {
	t.Parallel()

	var counts CollectionCounts
	items := []CollectionItem{
		{ObjectID: 1, Subtype: SubtypeBoardgame, Own: true, Wishlist: true},
		{ObjectID: 2, Subtype: SubtypeExpansion, Own: true},
		{ObjectID: 3, Subtype: SubtypeBoardgame, WantToPlay: true, WantToBuy: true},
		{ObjectID: 4, Subtype: SubtypeBoardgame, ForTrade: true, Preordered: true},
		{ObjectID: 5, Subtype: SubtypeBoardgame, Own: true},
	}
	for i := range items {
		counts.Add(&items[i])
	}

	want := CollectionCounts{
		Owned:           3,
		OwnedBoardgames: 2,
		OwnedExpansions: 1,
		Wishlist:        1,
		WantToPlay:      1,
		WantToBuy:       1,
		ForTrade:        1,
		Preordered:      1,
	}
	if counts != want {
		t.Errorf("counts = %+v, want %+v", counts, want)
	}
}

// TestCollectionCountsOwnedSplit checks the invariant
// owned == owned_boardgames + owned_expansions for synthetic collections
// where every owned item has a recognized subtype.
func TestCollectionCountsOwnedSplit(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		var counts CollectionCounts
		n := rng.Intn(200)
		for i := 0; i < n; i++ {
			subtype := SubtypeBoardgame
			if rng.Intn(2) == 1 {
				subtype = SubtypeExpansion
			}
			item := CollectionItem{
				ObjectID: i + 1,
				Subtype:  subtype,
				Own:      rng.Intn(3) > 0,
				Wishlist: rng.Intn(4) == 0,
			}
			counts.Add(&item)
		}
		if counts.Owned != counts.OwnedBoardgames+counts.OwnedExpansions {
			t.Fatalf("trial %d: owned = %d, split sum = %d",
				trial, counts.Owned, counts.OwnedBoardgames+counts.OwnedExpansions)
		}
	}
}

func TestNewSnapshot(t *testing.T) {
	t.Parallel()

	s := NewSnapshot()
	if s.GamePlays == nil || s.Collection == nil || s.GameDetails == nil {
		t.Fatal("NewSnapshot() returned nil maps")
	}
	if s.TotalPlays != 0 || s.LastPlay != nil {
		t.Errorf("NewSnapshot() not empty: %+v", s)
	}
	if s.TotalCollection() != 0 {
		t.Errorf("TotalCollection() = %d, want 0", s.TotalCollection())
	}
}

func TestTotalCollectionTracksOwnedCounter(t *testing.T) {
	t.Parallel()

	s := NewSnapshot()
	s.Counts.Owned = 7
	if s.TotalCollection() != 7 {
		t.Errorf("TotalCollection() = %d, want 7", s.TotalCollection())
	}
}
