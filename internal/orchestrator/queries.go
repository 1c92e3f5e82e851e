// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package orchestrator

import (
	"sort"
	"strings"

	"github.com/fieldreport/sentinel/internal/models"
)

// maxRound1Queries and maxRound2Queries bound query volume per cycle (§4.J
// step 1 "up to 20 broad queries", step 7 "up to 10 targeted queries").
const (
	maxRound1Queries = 20
	maxRound2Queries = 10
)

// topLocations, topActorsPerLocation, topKeywords bound the entity-mining
// fan-out of §4.J step 6.
const (
	topLocations         = 3
	topActorsPerLocation = 2
	topKeywords          = 5
)

// round1QueryTemplates generate broad per-zone queries (§4.J step 1).
var round1QueryTemplates = []string{
	"%s military conflict today",
	"%s casualties killed wounded",
	"%s missile strike bombing latest",
}

// genericKeywordStopwords filters out words too generic to narrow a round-2
// search, distinct from textproc's sentence-position stopword list since
// this one screens topical nouns, not leading articles/prepositions.
var genericKeywordStopwords = map[string]bool{
	"said": true, "according": true, "military": true, "news": true,
	"report": true, "reported": true, "officials": true, "government": true,
	"sources": true, "wednesday": true, "thursday": true, "tuesday": true,
	"monday": true, "friday": true, "saturday": true, "sunday": true,
	"yesterday": true, "today": true, "local": true, "statement": true,
}

// round1Queries expands cfg.Runtime.ConflictZones against the broad
// templates, capped at maxRound1Queries (§4.J step 1).
func round1Queries(zones []string) []string {
	var out []string
	for _, zone := range zones {
		for _, tmpl := range round1QueryTemplates {
			out = append(out, sprintfQuery(tmpl, zone))
			if len(out) >= maxRound1Queries {
				return out
			}
		}
	}
	return out
}

// entityMiningInput is the per-location summary round 2's query generator
// mines from round 1's persisted events (§4.J step 6).
type entityMiningInput struct {
	locations []string
	actors    map[string][]string // location -> top actors seen at that location
	keywords  []string
}

// mineEntities collects the top distinct locations, per-location actors,
// and salient keywords out of a round's extracted events, bounded by
// topLocations/topActorsPerLocation/topKeywords (§4.J step 6).
func mineEntities(events []*models.Event) entityMiningInput {
	locationCount := make(map[string]int)
	locationOrder := []string{}
	actorsByLocation := make(map[string]map[string]int)
	keywordCount := make(map[string]int)

	for _, e := range events {
		loc := ""
		if e.Location != nil && e.Location.Name != "" {
			loc = e.Location.Name
		} else if e.Location != nil && e.Location.Country != "" {
			loc = e.Location.Country
		}
		if loc != "" {
			if locationCount[loc] == 0 {
				locationOrder = append(locationOrder, loc)
			}
			locationCount[loc]++
			if actorsByLocation[loc] == nil {
				actorsByLocation[loc] = make(map[string]int)
			}
			for _, a := range e.PrimaryActors {
				actorsByLocation[loc][a]++
			}
		}

		for _, tag := range e.Tags {
			addKeyword(keywordCount, tag)
		}
		for _, word := range strings.Fields(e.EnhancedHeadline) {
			addKeyword(keywordCount, word)
		}
	}

	sort.Slice(locationOrder, func(i, j int) bool {
		return locationCount[locationOrder[i]] > locationCount[locationOrder[j]]
	})
	if len(locationOrder) > topLocations {
		locationOrder = locationOrder[:topLocations]
	}

	actors := make(map[string][]string, len(locationOrder))
	for _, loc := range locationOrder {
		actors[loc] = topN(actorsByLocation[loc], topActorsPerLocation)
	}

	return entityMiningInput{
		locations: locationOrder,
		actors:    actors,
		keywords:  topN(keywordCount, topKeywords),
	}
}

func addKeyword(counts map[string]int, raw string) {
	word := strings.ToLower(strings.Trim(raw, ".,:;!?\"'()"))
	if len(word) <= 5 || genericKeywordStopwords[word] {
		return
	}
	counts[word]++
}

// topN returns the n keys from counts with the highest counts, in
// descending-count order, ties broken lexically for determinism.
func topN(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// round2Queries builds targeted queries from mined entities (§4.J step 7:
// "{location} {actor} military operations latest" and "{keyword} conflict
// military latest"), deduplicated against round 1's query text and capped
// at maxRound2Queries.
func round2Queries(mined entityMiningInput, round1 []string) []string {
	seen := make(map[string]bool, len(round1))
	for _, q := range round1 {
		seen[q] = true
	}

	var out []string
	add := func(q string) bool {
		if seen[q] {
			return false
		}
		seen[q] = true
		out = append(out, q)
		return len(out) >= maxRound2Queries
	}

	for _, loc := range mined.locations {
		for _, actor := range mined.actors[loc] {
			if add(sprintfQuery("%s military operations latest", loc+" "+actor)) {
				return out
			}
		}
	}
	for _, kw := range mined.keywords {
		if add(sprintfQuery("%s conflict military latest", kw)) {
			return out
		}
	}
	return out
}

func sprintfQuery(tmpl string, arg string) string {
	return strings.Replace(tmpl, "%s", arg, 1)
}
