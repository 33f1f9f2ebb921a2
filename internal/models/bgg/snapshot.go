// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package bgg

import "time"

// CollectionCounts is the fixed set of named counters derived by scanning
// every collection item exactly once. Owned is incremented once per owned
// item regardless of subtype; OwnedBoardgames and OwnedExpansions are
// mutually exclusive sub-splits by subtype.
type CollectionCounts struct {
	Owned           int `json:"owned"`
	OwnedBoardgames int `json:"owned_boardgames"`
	OwnedExpansions int `json:"owned_expansions"`
	Wishlist        int `json:"wishlist"`
	WantToPlay      int `json:"want_to_play"`
	WantToBuy       int `json:"want_to_buy"`
	ForTrade        int `json:"for_trade"`
	Preordered      int `json:"preordered"`
}

// Add increments every counter the item's status flags correspond to.
func (c *CollectionCounts) Add(item *CollectionItem) {
	if item.Own {
		c.Owned++
		switch item.Subtype {
		case SubtypeBoardgame:
			c.OwnedBoardgames++
		case SubtypeExpansion:
			c.OwnedExpansions++
		}
	}
	if item.Wishlist {
		c.Wishlist++
	}
	if item.WantToPlay {
		c.WantToPlay++
	}
	if item.WantToBuy {
		c.WantToBuy++
	}
	if item.ForTrade {
		c.ForTrade++
	}
	if item.Preordered {
		c.Preordered++
	}
}

// Snapshot is the atomic output of one refresh cycle. It is built fresh
// from empty every cycle and replaces the previous snapshot only on full
// success; readers never see a partially built snapshot.
type Snapshot struct {
	// TotalPlays is the user's all-time logged play count.
	TotalPlays int `json:"total_plays"`

	// LastPlay is the most recent logged play, nil when none exist.
	LastPlay *LastPlay `json:"last_play,omitempty"`

	// Counts are the collection status counters.
	Counts CollectionCounts `json:"counts"`

	// GamePlays maps game ID to play count, populated for owned and
	// non-owned tracked games alike.
	GamePlays map[int]int `json:"game_plays"`

	// Collection holds owned items only.
	Collection map[int]*GameRecord `json:"collection"`

	// GameDetails is the superset: every game touched by any endpoint.
	GameDetails map[int]*GameRecord `json:"game_details"`

	// LastSync is when the cycle completed.
	LastSync time.Time `json:"last_sync"`
}

// NewSnapshot returns an empty snapshot with initialized maps.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		GamePlays:   make(map[int]int),
		Collection:  make(map[int]*GameRecord),
		GameDetails: make(map[int]*GameRecord),
	}
}

// TotalCollection is the number of owned items. Kept in sync with the
// Owned counter rather than tracked independently.
func (s *Snapshot) TotalCollection() int {
	return s.Counts.Owned
}
