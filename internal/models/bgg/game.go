// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package bgg

// Subtype values as reported by the collection and thing endpoints.
const (
	SubtypeBoardgame = "boardgame"
	SubtypeExpansion = "boardgameexpansion"
)

// NotRanked is the sentinel rank for games without a "boardgame" rank entry.
const NotRanked = "Not Ranked"

// GameRecord is one board game or expansion, identified by a positive
// integer BGG object ID. A record may originate from the collection
// endpoint (authoritative for ownership) or the thing-details endpoint
// (authoritative for metadata); the two are merged by ID, never replaced.
//
// Pointer fields distinguish "not provided by this source" from an empty
// value, which is what makes the non-null-overwrite merge possible.
type GameRecord struct {
	BGGID        int     `json:"bgg_id"`
	Name         *string `json:"name,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`

	// YearPublished is kept as raw text; BGG sometimes returns
	// non-numeric placeholder years.
	YearPublished *string `json:"year_published,omitempty"`

	// Subtype is "boardgame" or "boardgameexpansion".
	Subtype *string `json:"subtype,omitempty"`

	// Player and playtime ranges, raw numeric text.
	MinPlayers  *string `json:"min_players,omitempty"`
	MaxPlayers  *string `json:"max_players,omitempty"`
	PlayingTime *string `json:"playing_time,omitempty"`
	MinPlaytime *string `json:"min_playtime,omitempty"`
	MaxPlaytime *string `json:"max_playtime,omitempty"`

	// Rank is a numeric string or the literal sentinel "Not Ranked".
	Rank *string `json:"rank,omitempty"`

	// Rating statistics, each independently optional.
	Rating      *string `json:"rating,omitempty"`
	BayesRating *string `json:"bayes_rating,omitempty"`
	Weight      *string `json:"weight,omitempty"`
	UsersRated  *string `json:"users_rated,omitempty"`
	StdDev      *string `json:"stddev,omitempty"`
	Median      *string `json:"median,omitempty"`

	// OwnedByCount is the number of BGG users owning the game.
	OwnedByCount *string `json:"owned_by_count,omitempty"`

	// CollectionEntryID is present only if the record came from the
	// user's collection, absent for records learned from detail lookups.
	CollectionEntryID *string `json:"collection_entry_id,omitempty"`

	// PlayCount is the user's logged plays for this game.
	PlayCount int `json:"play_count"`
}

// MergeGameRecord merges src into dst field by field: a field is
// overwritten only when src actually provides it (non-nil). Fields dst
// obtained earlier are never blanked out by a source that omits them.
// PlayCount follows the same rule with zero as the "not provided" value.
func MergeGameRecord(dst *GameRecord, src *GameRecord) {
	if dst == nil || src == nil {
		return
	}
	if src.BGGID != 0 {
		dst.BGGID = src.BGGID
	}
	dst.Name = mergeField(dst.Name, src.Name)
	dst.ImageURL = mergeField(dst.ImageURL, src.ImageURL)
	dst.ThumbnailURL = mergeField(dst.ThumbnailURL, src.ThumbnailURL)
	dst.YearPublished = mergeField(dst.YearPublished, src.YearPublished)
	dst.Subtype = mergeField(dst.Subtype, src.Subtype)
	dst.MinPlayers = mergeField(dst.MinPlayers, src.MinPlayers)
	dst.MaxPlayers = mergeField(dst.MaxPlayers, src.MaxPlayers)
	dst.PlayingTime = mergeField(dst.PlayingTime, src.PlayingTime)
	dst.MinPlaytime = mergeField(dst.MinPlaytime, src.MinPlaytime)
	dst.MaxPlaytime = mergeField(dst.MaxPlaytime, src.MaxPlaytime)
	dst.Rank = mergeField(dst.Rank, src.Rank)
	dst.Rating = mergeField(dst.Rating, src.Rating)
	dst.BayesRating = mergeField(dst.BayesRating, src.BayesRating)
	dst.Weight = mergeField(dst.Weight, src.Weight)
	dst.UsersRated = mergeField(dst.UsersRated, src.UsersRated)
	dst.StdDev = mergeField(dst.StdDev, src.StdDev)
	dst.Median = mergeField(dst.Median, src.Median)
	dst.OwnedByCount = mergeField(dst.OwnedByCount, src.OwnedByCount)
	dst.CollectionEntryID = mergeField(dst.CollectionEntryID, src.CollectionEntryID)
	if src.PlayCount != 0 {
		dst.PlayCount = src.PlayCount
	}
}

// mergeField returns src when provided, otherwise dst.
func mergeField(dst, src *string) *string {
	if src != nil {
		return src
	}
	return dst
}

// StringPtr returns a pointer to s. Convenience for building records.
func StringPtr(s string) *string {
	return &s
}

// optionalString converts raw text to a nullable field: empty means absent.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
