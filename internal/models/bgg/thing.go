// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package bgg

import (
	"encoding/xml"
	"strconv"

	"github.com/mfranz87/bggsync/internal/logging"
)

// thingDoc mirrors the <items> root of the thing endpoint.
type thingDoc struct {
	XMLName xml.Name       `xml:"items"`
	Items   []thingItemDoc `xml:"item"`
}

type thingItemDoc struct {
	ID          string             `xml:"id,attr"`
	Type        string             `xml:"type,attr"`
	Names       []thingNameDoc     `xml:"name"`
	Image       string             `xml:"image"`
	Thumbnail   string             `xml:"thumbnail"`
	YearPub     *valueAttrDoc      `xml:"yearpublished"`
	MinPlayers  *valueAttrDoc      `xml:"minplayers"`
	MaxPlayers  *valueAttrDoc      `xml:"maxplayers"`
	PlayingTime *valueAttrDoc      `xml:"playingtime"`
	MinPlaytime *valueAttrDoc      `xml:"minplaytime"`
	MaxPlaytime *valueAttrDoc      `xml:"maxplaytime"`
	Statistics  *thingStatsDoc     `xml:"statistics"`
}

type thingNameDoc struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

type thingStatsDoc struct {
	Ratings *thingRatingsDoc `xml:"ratings"`
}

type thingRatingsDoc struct {
	Average      *valueAttrDoc `xml:"average"`
	BayesAverage *valueAttrDoc `xml:"bayesaverage"`
	AvgWeight    *valueAttrDoc `xml:"averageweight"`
	UsersRated   *valueAttrDoc `xml:"usersrated"`
	StdDev       *valueAttrDoc `xml:"stddev"`
	Median       *valueAttrDoc `xml:"median"`
	Owned        *valueAttrDoc `xml:"owned"`
	Ranks        *ranksDoc     `xml:"ranks"`
}

// ParseThings parses a thing endpoint response into GameRecords. An item
// whose id attribute fails to parse is skipped with a warning; a missing
// statistics or ratings node yields nil rating fields, not an error.
func ParseThings(data []byte) ([]*GameRecord, error) {
	var doc thingDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	records := make([]*GameRecord, 0, len(doc.Items))
	for i := range doc.Items {
		item := &doc.Items[i]

		id, err := strconv.Atoi(item.ID)
		if err != nil {
			logging.Warn().Str("id", item.ID).Msg("Skipping thing item with non-numeric id")
			continue
		}

		rec := &GameRecord{
			BGGID:         id,
			Name:          primaryName(item.Names),
			ImageURL:      optionalString(item.Image),
			ThumbnailURL:  optionalString(item.Thumbnail),
			YearPublished: valueOf(item.YearPub),
			Subtype:       optionalString(item.Type),
			MinPlayers:    valueOf(item.MinPlayers),
			MaxPlayers:    valueOf(item.MaxPlayers),
			PlayingTime:   valueOf(item.PlayingTime),
			MinPlaytime:   valueOf(item.MinPlaytime),
			MaxPlaytime:   valueOf(item.MaxPlaytime),
			Rank:          StringPtr(NotRanked),
		}

		if item.Statistics != nil && item.Statistics.Ratings != nil {
			ratings := item.Statistics.Ratings
			rec.Rating = valueOf(ratings.Average)
			rec.BayesRating = valueOf(ratings.BayesAverage)
			rec.Weight = valueOf(ratings.AvgWeight)
			rec.UsersRated = valueOf(ratings.UsersRated)
			rec.StdDev = valueOf(ratings.StdDev)
			rec.Median = valueOf(ratings.Median)
			rec.OwnedByCount = valueOf(ratings.Owned)
			rec.Rank = StringPtr(resolveRank(ratings.Ranks))
		}

		records = append(records, rec)
	}
	return records, nil
}

// primaryName selects the <name> child whose type attribute is "primary".
func primaryName(names []thingNameDoc) *string {
	for _, n := range names {
		if n.Type == "primary" {
			return optionalString(n.Value)
		}
	}
	return nil
}
