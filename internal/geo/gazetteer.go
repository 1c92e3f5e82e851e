// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package geo

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// VerifiedEvent is one entry in the tier-1 verified event database -
// known conflict hotspots with an exact, auditable coordinate.
type VerifiedEvent struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Country string   `json:"country"`
	Region  string   `json:"region"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
}

// AmbiguousCandidate is one country-specific reading of an ambiguous
// place name, selected by contextual cue words.
type AmbiguousCandidate struct {
	Country string   `json:"country"`
	Region  string   `json:"region"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Cues    []string `json:"cues"`
}

// AmbiguousCity is a place name shared across countries (§4.G tier 2).
type AmbiguousCity struct {
	Name       string               `json:"name"`
	Candidates []AmbiguousCandidate `json:"candidates"`
}

// Mapping is a curated name-to-coordinate entry, used for both tier 3
// (enhanced mappings) and tier 4 (base mappings).
type Mapping struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Country string   `json:"country"`
	Region  string   `json:"region"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
}

// gazetteer is the parsed contents of the tiers 1-4 seed file.
type gazetteer struct {
	VerifiedEvents   []VerifiedEvent `json:"verified_events"`
	AmbiguousCities  []AmbiguousCity `json:"ambiguous_cities"`
	EnhancedMappings []Mapping       `json:"enhanced_mappings"`
	BaseMappings     []Mapping       `json:"base_mappings"`

	verifiedIndex  map[string]VerifiedEvent
	ambiguousIndex map[string]AmbiguousCity
	enhancedIndex  map[string]Mapping
	baseIndex      map[string]Mapping
}

// loadGazetteer reads and indexes the JSON gazetteer file at path (the
// teacher's seed.go precedent for os.ReadFile + unmarshal at startup).
func loadGazetteer(path string) (*gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gazetteer %s: %w", path, err)
	}

	var g gazetteer
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse gazetteer %s: %w", path, err)
	}
	g.buildIndexes()
	return &g, nil
}

func (g *gazetteer) buildIndexes() {
	g.verifiedIndex = make(map[string]VerifiedEvent)
	for _, e := range g.VerifiedEvents {
		g.verifiedIndex[normalizeKey(e.Name)] = e
		for _, alias := range e.Aliases {
			g.verifiedIndex[normalizeKey(alias)] = e
		}
	}

	g.ambiguousIndex = make(map[string]AmbiguousCity)
	for _, c := range g.AmbiguousCities {
		g.ambiguousIndex[normalizeKey(c.Name)] = c
	}

	g.enhancedIndex = make(map[string]Mapping)
	for _, m := range g.EnhancedMappings {
		g.enhancedIndex[normalizeKey(m.Name)] = m
		for _, alias := range m.Aliases {
			g.enhancedIndex[normalizeKey(alias)] = m
		}
	}

	g.baseIndex = make(map[string]Mapping)
	for _, m := range g.BaseMappings {
		g.baseIndex[normalizeKey(m.Name)] = m
		for _, alias := range m.Aliases {
			g.baseIndex[normalizeKey(alias)] = m
		}
	}
}

func normalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
