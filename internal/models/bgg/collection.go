// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package bgg

import (
	"bytes"
	"encoding/xml"
	"strconv"

	"github.com/mfranz87/bggsync/internal/logging"
)

// CollectionItem is one raw item from the collection endpoint. Ownership
// and status flags come from here and nowhere else.
type CollectionItem struct {
	ObjectID int
	Subtype  string

	Name          *string
	Image         *string
	Thumbnail     *string
	YearPublished *string

	// NumPlays is the user's play count for this item, 0 when absent.
	NumPlays int

	// Boolean status flags, each "1" on the wire.
	Own        bool
	Wishlist   bool
	WantToPlay bool
	WantToBuy  bool
	ForTrade   bool
	Preordered bool

	MinPlayers  *string
	MaxPlayers  *string
	PlayingTime *string
	MinPlaytime *string
	MaxPlaytime *string

	// Rank is a numeric string or the NotRanked sentinel.
	Rank string

	Rating      *string
	BayesRating *string
	Weight      *string
	UsersRated  *string
	StdDev      *string
	Median      *string

	// NumOwned is the number of BGG users owning the game.
	NumOwned *string

	// CollID is the user's collection entry ID.
	CollID *string
}

// CollectionPage is the parsed result of one collection endpoint response.
type CollectionPage struct {
	// StillProcessing is set when BGG answered with the asynchronous
	// "export is being generated" message wrapper instead of items.
	StillProcessing bool

	// Items holds every successfully parsed item, in document order.
	Items []CollectionItem

	// Skipped counts items dropped for missing or malformed required
	// fields. Skipping one item never affects its siblings.
	Skipped int
}

// collectionDoc mirrors the <items> root element on the wire.
type collectionDoc struct {
	XMLName xml.Name            `xml:"items"`
	Items   []collectionItemDoc `xml:"item"`
}

type collectionItemDoc struct {
	ObjectID  string               `xml:"objectid,attr"`
	Subtype   string               `xml:"subtype,attr"`
	CollID    string               `xml:"collid,attr"`
	Name      string               `xml:"name"`
	Image     string               `xml:"image"`
	Thumbnail string               `xml:"thumbnail"`
	YearPub   string               `xml:"yearpublished"`
	NumPlays  string               `xml:"numplays"`
	Status    *collectionStatusDoc `xml:"status"`
	Stats     *collectionStatsDoc  `xml:"stats"`
}

type collectionStatusDoc struct {
	Own        string `xml:"own,attr"`
	Wishlist   string `xml:"wishlist,attr"`
	WantToPlay string `xml:"wanttoplay,attr"`
	WantToBuy  string `xml:"wanttobuy,attr"`
	ForTrade   string `xml:"fortrade,attr"`
	Preordered string `xml:"preordered,attr"`
}

type collectionStatsDoc struct {
	MinPlayers  *string              `xml:"minplayers,attr"`
	MaxPlayers  *string              `xml:"maxplayers,attr"`
	PlayingTime *string              `xml:"playingtime,attr"`
	MinPlaytime *string              `xml:"minplaytime,attr"`
	MaxPlaytime *string              `xml:"maxplaytime,attr"`
	NumOwned    *string              `xml:"numowned,attr"`
	Rating      *collectionRatingDoc `xml:"rating"`
}

type collectionRatingDoc struct {
	Average      *valueAttrDoc `xml:"average"`
	BayesAverage *valueAttrDoc `xml:"bayesaverage"`
	AvgWeight    *valueAttrDoc `xml:"averageweight"`
	UsersRated   *valueAttrDoc `xml:"usersrated"`
	StdDev       *valueAttrDoc `xml:"stddev"`
	Median       *valueAttrDoc `xml:"median"`
	Ranks        *ranksDoc     `xml:"ranks"`
}

// valueAttrDoc is BGG's ubiquitous <tag value="..."/> element.
type valueAttrDoc struct {
	Value string `xml:"value,attr"`
}

type ranksDoc struct {
	Ranks []rankDoc `xml:"rank"`
}

type rankDoc struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ParseCollection parses a collection endpoint response. A <message> root
// signals BGG is still generating the export asynchronously and maps to
// StillProcessing; a malformed document is an error.
func ParseCollection(data []byte) (CollectionPage, error) {
	root, err := rootName(data)
	if err != nil {
		return CollectionPage{}, err
	}
	if root == "message" {
		return CollectionPage{StillProcessing: true}, nil
	}

	var doc collectionDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return CollectionPage{}, err
	}

	page := CollectionPage{}
	for i := range doc.Items {
		item, ok := parseCollectionItem(&doc.Items[i])
		if !ok {
			page.Skipped++
			continue
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}

// parseCollectionItem converts one wire item; ok is false when a required
// numeric field does not parse.
func parseCollectionItem(doc *collectionItemDoc) (CollectionItem, bool) {
	id, err := strconv.Atoi(doc.ObjectID)
	if err != nil {
		logging.Warn().Str("objectid", doc.ObjectID).Msg("Skipping collection item with non-numeric objectid")
		return CollectionItem{}, false
	}

	numPlays := 0
	if doc.NumPlays != "" {
		numPlays, err = strconv.Atoi(doc.NumPlays)
		if err != nil {
			logging.Warn().Int("game_id", id).Str("numplays", doc.NumPlays).Msg("Skipping collection item with non-numeric numplays")
			return CollectionItem{}, false
		}
	}

	item := CollectionItem{
		ObjectID:      id,
		Subtype:       doc.Subtype,
		Name:          optionalString(doc.Name),
		Image:         optionalString(doc.Image),
		Thumbnail:     optionalString(doc.Thumbnail),
		YearPublished: optionalString(doc.YearPub),
		NumPlays:      numPlays,
		CollID:        optionalString(doc.CollID),
		Rank:          NotRanked,
	}

	if doc.Status != nil {
		item.Own = doc.Status.Own == "1"
		item.Wishlist = doc.Status.Wishlist == "1"
		item.WantToPlay = doc.Status.WantToPlay == "1"
		item.WantToBuy = doc.Status.WantToBuy == "1"
		item.ForTrade = doc.Status.ForTrade == "1"
		item.Preordered = doc.Status.Preordered == "1"
	}

	if doc.Stats != nil {
		item.MinPlayers = doc.Stats.MinPlayers
		item.MaxPlayers = doc.Stats.MaxPlayers
		item.PlayingTime = doc.Stats.PlayingTime
		item.MinPlaytime = doc.Stats.MinPlaytime
		item.MaxPlaytime = doc.Stats.MaxPlaytime
		item.NumOwned = doc.Stats.NumOwned

		if rating := doc.Stats.Rating; rating != nil {
			item.Rating = valueOf(rating.Average)
			item.BayesRating = valueOf(rating.BayesAverage)
			item.Weight = valueOf(rating.AvgWeight)
			item.UsersRated = valueOf(rating.UsersRated)
			item.StdDev = valueOf(rating.StdDev)
			item.Median = valueOf(rating.Median)
			item.Rank = resolveRank(rating.Ranks)
		}
	}

	return item, true
}

// Record converts a collection item into a GameRecord. Collection-derived
// records carry the collection entry ID and the item's own play count.
func (it *CollectionItem) Record() *GameRecord {
	return &GameRecord{
		BGGID:             it.ObjectID,
		Name:              it.Name,
		ImageURL:          it.Image,
		ThumbnailURL:      it.Thumbnail,
		YearPublished:     it.YearPublished,
		Subtype:           optionalString(it.Subtype),
		MinPlayers:        it.MinPlayers,
		MaxPlayers:        it.MaxPlayers,
		PlayingTime:       it.PlayingTime,
		MinPlaytime:       it.MinPlaytime,
		MaxPlaytime:       it.MaxPlaytime,
		Rank:              StringPtr(it.Rank),
		Rating:            it.Rating,
		BayesRating:       it.BayesRating,
		Weight:            it.Weight,
		UsersRated:        it.UsersRated,
		StdDev:            it.StdDev,
		Median:            it.Median,
		OwnedByCount:      it.NumOwned,
		CollectionEntryID: it.CollID,
		PlayCount:         it.NumPlays,
	}
}

// resolveRank scans the ranks list for the overall "boardgame" entry.
// Absent list or no matching entry resolves to the NotRanked sentinel.
func resolveRank(ranks *ranksDoc) string {
	if ranks == nil {
		return NotRanked
	}
	for _, r := range ranks.Ranks {
		if r.Name == "boardgame" {
			return r.Value
		}
	}
	return NotRanked
}

// valueOf reads the value attribute of an optional element.
func valueOf(v *valueAttrDoc) *string {
	if v == nil {
		return nil
	}
	return &v.Value
}

// rootName returns the local name of the document's root element.
func rootName(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}
