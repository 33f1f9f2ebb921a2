// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package bgg

import "testing"

func TestMergeGameRecordEnrichment(t *testing.T) {
	t.Parallel()

	// Collection-derived record: has ownership fields, no detail stats.
	dst := &GameRecord{
		BGGID:             822,
		Name:              StringPtr("Carcassonne"),
		ImageURL:          StringPtr("https://example.invalid/822.jpg"),
		Subtype:           StringPtr(SubtypeBoardgame),
		CollectionEntryID: StringPtr("101"),
		PlayCount:         12,
	}

	// Detail-derived record: has stats, no collection entry.
	src := &GameRecord{
		BGGID:       822,
		Name:        StringPtr("Carcassonne"),
		Rank:        StringPtr("100"),
		Rating:      StringPtr("7.42"),
		Weight:      StringPtr("1.9"),
		YearPublished: StringPtr("2000"),
	}

	MergeGameRecord(dst, src)

	if dst.CollectionEntryID == nil || *dst.CollectionEntryID != "101" {
		t.Errorf("CollectionEntryID = %v, want 101 preserved", dst.CollectionEntryID)
	}
	if dst.ImageURL == nil || *dst.ImageURL != "https://example.invalid/822.jpg" {
		t.Errorf("ImageURL = %v, want preserved", dst.ImageURL)
	}
	if dst.Rank == nil || *dst.Rank != "100" {
		t.Errorf("Rank = %v, want 100 adopted from detail fetch", dst.Rank)
	}
	if dst.Rating == nil || *dst.Rating != "7.42" {
		t.Errorf("Rating = %v, want 7.42", dst.Rating)
	}
	if dst.PlayCount != 12 {
		t.Errorf("PlayCount = %d, want 12 preserved", dst.PlayCount)
	}
}

// TestMergeGameRecordLaw verifies merge(A, B).field == B.field when
// B.field is non-nil, else A.field, for every field.
func TestMergeGameRecordLaw(t *testing.T) {
	t.Parallel()

	full := func(prefix string) *GameRecord {
		p := func(s string) *string { v := prefix + s; return &v }
		return &GameRecord{
			BGGID:             1,
			Name:              p("name"),
			ImageURL:          p("image"),
			ThumbnailURL:      p("thumb"),
			YearPublished:     p("year"),
			Subtype:           p("subtype"),
			MinPlayers:        p("minp"),
			MaxPlayers:        p("maxp"),
			PlayingTime:       p("pt"),
			MinPlaytime:       p("minpt"),
			MaxPlaytime:       p("maxpt"),
			Rank:              p("rank"),
			Rating:            p("rating"),
			BayesRating:       p("bayes"),
			Weight:            p("weight"),
			UsersRated:        p("users"),
			StdDev:            p("stddev"),
			Median:            p("median"),
			OwnedByCount:      p("owned"),
			CollectionEntryID: p("coll"),
			PlayCount:         3,
		}
	}

	t.Run("full source overwrites everything", func(t *testing.T) {
		t.Parallel()
		dst := full("a_")
		src := full("b_")
		MergeGameRecord(dst, src)

		for name, got := range map[string]*string{
			"Name": dst.Name, "ImageURL": dst.ImageURL, "Rank": dst.Rank,
			"Median": dst.Median, "CollectionEntryID": dst.CollectionEntryID,
		} {
			if got == nil || (*got)[:2] != "b_" {
				t.Errorf("%s = %v, want source value", name, got)
			}
		}
	})

	t.Run("empty source overwrites nothing", func(t *testing.T) {
		t.Parallel()
		dst := full("a_")
		MergeGameRecord(dst, &GameRecord{BGGID: 1})

		for name, got := range map[string]*string{
			"Name": dst.Name, "ImageURL": dst.ImageURL, "Rank": dst.Rank,
			"Median": dst.Median, "CollectionEntryID": dst.CollectionEntryID,
		} {
			if got == nil || (*got)[:2] != "a_" {
				t.Errorf("%s = %v, want original value preserved", name, got)
			}
		}
		if dst.PlayCount != 3 {
			t.Errorf("PlayCount = %d, want 3 preserved", dst.PlayCount)
		}
	})
}

func TestMergeGameRecordNilSafe(t *testing.T) {
	t.Parallel()

	MergeGameRecord(nil, &GameRecord{})
	MergeGameRecord(&GameRecord{}, nil)
}
