// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package textproc

import (
	"regexp"
	"strings"

	"github.com/fieldreport/sentinel/internal/cache"
)

// weaponTerms seeds the weapon-lexicon automaton (§4.E, §4.F weapon match).
var weaponTerms = []string{
	"tank", "tanks", "artillery", "howitzer", "mortar", "mortars", "rocket",
	"rockets", "missile", "missiles", "drone", "drones", "airstrike",
	"air strike", "bomb", "bombing", "grenade", "rifle", "machine gun",
	"landmine", "mine field", "minefield", "ied", "improvised explosive",
	"cluster munition", "nerve agent", "chemical weapon", "chemical attack",
	"nuclear", "cbrn", "anti-aircraft", "small arms",
}

// militaryUnitTerms seeds the military-unit lexicon automaton.
var militaryUnitTerms = []string{
	"brigade", "battalion", "division", "regiment", "corps", "platoon",
	"squadron", "garrison", "militia", "paramilitary", "special forces",
	"task force", "infantry", "armored division", "reconnaissance unit",
}

// casualtyTerms seeds the casualty-lexicon automaton; the numeric pattern
// in ExtractEntities does the heavy lifting, this lexicon catches
// casualty-adjacent vocabulary without an attached number.
var casualtyTerms = []string{
	"killed", "dead", "died", "deaths", "wounded", "injured", "casualties",
	"missing", "fatalities", "civilian toll",
}

// orgSuffixes mark a trailing word in a proper-noun chunk as an
// organization rather than a person (§4.E proper-noun chunking).
var orgSuffixes = map[string]bool{
	"army": true, "forces": true, "ministry": true, "battalion": true,
	"brigade": true, "command": true, "corps": true, "coalition": true,
	"movement": true, "front": true, "party": true, "group": true,
	"militia": true, "guard": true, "council": true, "authority": true,
}

// locationPrepositions precede a proper-noun chunk that names a place
// (§4.E proper-noun chunking near prepositional phrases).
var locationPrepositions = map[string]bool{
	"in": true, "at": true, "near": true, "outside": true, "from": true,
}

var (
	casualtyNumberPattern = regexp.MustCompile(
		`(?i)(\d+)\s*(?:people|persons?|civilians?|soldiers?|troops?)?\s*(?:were\s+)?(killed|dead|died)`)
	woundNumberPattern = regexp.MustCompile(
		`(?i)(\d+)\s*(?:people|persons?|civilians?|soldiers?|troops?)?\s*(?:were\s+)?(wounded|injured)`)
	properNounChunkPattern = regexp.MustCompile(`\b([A-Z][a-zA-Z.]*(?:\s+[A-Z][a-zA-Z.]*){0,3})\b`)
)

// EntityMatch is a single extracted entity: its surface form and the
// extractor's confidence in it (§4.E ExtractEntities).
type EntityMatch struct {
	Surface    string
	Confidence float64
}

// Entities holds every category ExtractEntities produces.
type Entities struct {
	Persons       []EntityMatch
	Organizations []EntityMatch
	Locations     []EntityMatch
	Weapons       []EntityMatch
	Casualties    []EntityMatch
}

// buildLexicon compiles terms into a ready-to-search Aho-Corasick
// automaton, reusing the teacher's cache.AhoCorasick rather than a
// per-category regex alternation.
func buildLexicon(terms []string) *cache.AhoCorasick {
	ac := cache.NewAhoCorasick()
	for _, t := range terms {
		ac.AddPattern(t, nil)
	}
	ac.Build()
	return ac
}

// ExtractEntities runs the deterministic regex/lexicon pass described in
// §4.E over text: casualty numerals, weapon and military-unit lexicon
// matches, and proper-noun chunking disambiguated by organization
// suffixes and location prepositions. The LLM-recall augmentation named
// in the same contract is performed by internal/extractor's own flow,
// which calls this pass first and merges its own entity recall on top -
// keeping this package's output fully deterministic and independently
// testable.
func (p *Processor) ExtractEntities(text string) Entities {
	var ents Entities

	for _, m := range casualtyNumberPattern.FindAllStringSubmatch(text, -1) {
		ents.Casualties = append(ents.Casualties, EntityMatch{Surface: m[0], Confidence: 0.9})
	}
	for _, m := range woundNumberPattern.FindAllStringSubmatch(text, -1) {
		ents.Casualties = append(ents.Casualties, EntityMatch{Surface: m[0], Confidence: 0.85})
	}
	for _, m := range p.casualtyLexicon.Search(text) {
		if !containsNumberNear(text, m.Position) {
			ents.Casualties = append(ents.Casualties, EntityMatch{Surface: m.Pattern, Confidence: 0.4})
		}
	}

	for _, m := range p.weaponLexicon.Search(text) {
		ents.Weapons = append(ents.Weapons, EntityMatch{Surface: m.Pattern, Confidence: 0.8})
	}
	for _, m := range p.militaryUnitLexicon.Search(text) {
		ents.Organizations = append(ents.Organizations, EntityMatch{Surface: m.Pattern, Confidence: 0.5})
	}

	for _, chunkMatch := range properNounChunkPattern.FindAllStringIndex(text, -1) {
		chunk := strings.TrimSpace(text[chunkMatch[0]:chunkMatch[1]])
		chunk = strings.Join(dropLeadingStopwords(strings.Fields(chunk)), " ")
		if chunk == "" {
			continue
		}
		lastWord := strings.ToLower(strings.Trim(lastField(chunk), ".,"))
		precedingWord := strings.ToLower(strings.Trim(precedingWordAt(text, chunkMatch[0]), ".,"))

		switch {
		case orgSuffixes[lastWord]:
			ents.Organizations = append(ents.Organizations, EntityMatch{Surface: chunk, Confidence: 0.7})
		case locationPrepositions[precedingWord]:
			ents.Locations = append(ents.Locations, EntityMatch{Surface: chunk, Confidence: 0.6})
		default:
			ents.Persons = append(ents.Persons, EntityMatch{Surface: chunk, Confidence: 0.3})
		}
	}

	return ents
}

// containsNumberNear reports whether a digit sequence occurs within a
// small window of position pos, used to avoid double-counting a
// casualty lexicon hit already captured by the numeric pattern.
func containsNumberNear(text string, pos int) bool {
	start := pos - 20
	if start < 0 {
		start = 0
	}
	end := pos + 20
	if end > len(text) {
		end = len(text)
	}
	window := text[start:end]
	for _, r := range window {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// leadingStopwords are capitalized only by sentence position, never as
// part of a genuine proper-noun chunk.
var leadingStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "this": true, "that": true,
	"these": true, "those": true, "and": true, "but": true,
}

// dropLeadingStopwords strips stopwords from the front of a capitalized
// word run so sentence-initial capitalization doesn't widen a chunk
// (e.g. "The Eastern Defense Brigade" -> "Eastern Defense Brigade").
func dropLeadingStopwords(words []string) []string {
	for len(words) > 0 && leadingStopwords[strings.ToLower(words[0])] {
		words = words[1:]
	}
	return words
}

func lastField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// precedingWordAt returns the word immediately before byte offset pos in
// text, or "" if pos is at the start.
func precedingWordAt(text string, pos int) string {
	before := strings.TrimSpace(text[:min(pos, len(text))])
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// ScoreRelevance implements the conflict-keyword relevance formula from
// §4.E: 0.7*min(hits/8,1) + 0.3*min(len/1000,1).
func (p *Processor) ScoreRelevance(text string) float64 {
	hits := len(p.relevanceLexicon.Search(text))
	keywordScore := float64(hits) / 8.0
	if keywordScore > 1 {
		keywordScore = 1
	}
	lengthScore := float64(len([]rune(text))) / 1000.0
	if lengthScore > 1 {
		lengthScore = 1
	}
	return 0.7*keywordScore + 0.3*lengthScore
}

// conflictLexicon seeds the relevance-scoring automaton.
var conflictLexicon = []string{
	"military", "strike", "killed", "attack", "war", "conflict", "troops",
	"offensive", "shelling", "invasion", "combat", "insurgent", "rebel",
	"ceasefire", "airstrike", "clashes", "frontline", "occupation",
	"casualties", "wounded", "bombardment", "siege",
}
