// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package bgg

import (
	"encoding/xml"
	"strconv"
)

// LastPlay is a snapshot of the user's most recent logged play.
type LastPlay struct {
	// Game is the display name, "Unknown" when the play has no item node.
	Game string `json:"game"`

	// GameID is the BGG object ID, nil when absent or non-numeric.
	GameID *int `json:"game_id,omitempty"`

	// Date is the raw BGG date string (YYYY-MM-DD or similar).
	Date string `json:"date"`

	// Comment is the free-text comment with BBCode markup stripped.
	Comment string `json:"comment"`

	// Expansions are names parsed out of the comment body.
	Expansions []string `json:"expansions,omitempty"`

	// Winners holds the names of players whose win flag was set.
	Winners []string `json:"winners,omitempty"`

	// Players holds every participant name in document order.
	Players []string `json:"players,omitempty"`
}

// PlaysPage is the parsed result of one plays endpoint response.
type PlaysPage struct {
	// Total is the total attribute of the root element, 0 when absent
	// or non-numeric.
	Total int

	// LastPlay is the first play in the document, nil when none exist.
	LastPlay *LastPlay
}

// playsDoc mirrors the <plays> root element on the wire.
type playsDoc struct {
	XMLName xml.Name  `xml:"plays"`
	Total   string    `xml:"total,attr"`
	Plays   []playDoc `xml:"play"`
}

type playDoc struct {
	Date     string       `xml:"date,attr"`
	Item     *playItemDoc `xml:"item"`
	Comments string       `xml:"comments"`
	Players  *playersDoc  `xml:"players"`
}

type playItemDoc struct {
	Name     string `xml:"name,attr"`
	ObjectID string `xml:"objectid,attr"`
}

type playersDoc struct {
	Players []playerDoc `xml:"player"`
}

type playerDoc struct {
	Username string `xml:"username,attr"`
	Name     string `xml:"name,attr"`
	Win      string `xml:"win,attr"`
}

// ParsePlays parses a plays endpoint response. A malformed document is an
// error; the caller decides how much of the cycle that degrades.
func ParsePlays(data []byte) (PlaysPage, error) {
	var doc playsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return PlaysPage{}, err
	}

	page := PlaysPage{}
	if total, err := strconv.Atoi(doc.Total); err == nil {
		page.Total = total
	}

	if len(doc.Plays) > 0 {
		page.LastPlay = parseLastPlay(&doc.Plays[0])
	}
	return page, nil
}

// parseLastPlay converts the first play node into a LastPlay record.
func parseLastPlay(play *playDoc) *LastPlay {
	lp := &LastPlay{
		Game:       "Unknown",
		Date:       play.Date,
		Comment:    CleanText(play.Comments),
		Expansions: ExtractExpansions(play.Comments),
	}

	if play.Item != nil {
		if play.Item.Name != "" {
			lp.Game = play.Item.Name
		}
		if id, err := strconv.Atoi(play.Item.ObjectID); err == nil {
			lp.GameID = &id
		}
	}

	if play.Players != nil {
		for _, p := range play.Players.Players {
			name := p.Username
			if name == "" {
				name = p.Name
			}
			if name == "" {
				continue
			}
			lp.Players = append(lp.Players, name)
			if p.Win == "1" {
				lp.Winners = append(lp.Winners, name)
			}
		}
	}
	return lp
}
