// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package bgg

import (
	"regexp"
	"strings"
)

// BGG play comments carry BBCode markup. The cleaner collapses
// [tag=value]inner[/tag] to inner and deletes bare [tag]/[/tag] outright.
var (
	bbcodeValueTag = regexp.MustCompile(`\[\w+=[^\]]*\](.*?)\[/\w+\]`)
	bbcodeBareTag  = regexp.MustCompile(`\[/?\w+\]`)
	thingTag       = regexp.MustCompile(`\[thing=\d+\](.*?)\[/thing\]`)
)

// expansionsMarker begins the comment region that lists played expansions.
const expansionsMarker = "Played with expansions"

// CleanText strips BGG BBCode markup from text. It is idempotent on
// already-clean text and returns "" for empty input.
//
//	CleanText("[b]Bold[/b]")                              == "Bold"
//	CleanText("Played [thing=123]Game Name[/thing]")      == "Played Game Name"
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = bbcodeValueTag.ReplaceAllString(text, "$1")
	text = bbcodeBareTag.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ExtractExpansions pulls expansion names out of a play comment. Only the
// portion following a line containing the "Played with expansions" marker
// is scanned; within that region every [thing=NNN]Name[/thing] occurrence
// contributes Name, in encounter order.
func ExtractExpansions(text string) []string {
	if text == "" {
		return nil
	}
	if !strings.Contains(text, expansionsMarker) {
		return nil
	}

	var expansions []string
	inRegion := false
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, expansionsMarker) {
			inRegion = true
			continue
		}
		if !inRegion {
			continue
		}
		for _, m := range thingTag.FindAllStringSubmatch(line, -1) {
			expansions = append(expansions, m[1])
		}
	}
	return expansions
}
