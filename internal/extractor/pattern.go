// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package extractor

import (
	"regexp"
	"strconv"
	"time"

	"github.com/fieldreport/sentinel/internal/models"
	"github.com/fieldreport/sentinel/internal/textproc"
)

// Deterministic regex patterns, verbatim per spec.md §4.F.2.
var (
	patternKilled  = regexp.MustCompile(`(?i)(\d+)\s*(?:people|persons?|civilians?|soldiers?|troops?)?\s*(?:were\s+)?(?:killed|dead|died)`)
	patternWounded = regexp.MustCompile(`(?i)(\d+)\s*(?:people|persons?|civilians?|soldiers?|troops?)?\s*(?:were\s+)?(?:wounded|injured)`)
)

// patternExtract runs the deterministic fallback (§4.F.2): at most one
// event per article, built entirely from textproc's lexicon/regex pass
// with no LLM involvement. Returns nil if the article carries no
// conflict-relevant signal at all.
func patternExtract(proc *textproc.Processor, a *models.Article, articleDate time.Time) *models.Event {
	ents := proc.ExtractEntities(a.Body)
	killed := firstCount(patternKilled, a.Body)
	wounded := firstCount(patternWounded, a.Body)

	if killed == nil && wounded == nil && len(ents.Weapons) == 0 && len(ents.Organizations) == 0 {
		return nil
	}

	timestamp, tsConf := textproc.ExtractTemporal(a.Body, articleDate)

	var loc *models.Location
	if len(ents.Locations) > 0 {
		loc = &models.Location{
			Name:   ents.Locations[0].Surface,
			Method: models.GeoMethodUnresolved,
		}
	}

	escalation := baseEscalationScore(len(ents.Weapons), killed, wounded)

	return &models.Event{
		EnhancedHeadline: a.Headline,
		Timestamp:        timestamp,
		TimestampConf:    tsConf,
		Location:         loc,
		EventType:        models.EventTypeOther,
		Severity:         models.SeverityForEscalation(escalation),
		EscalationScore:  escalation,
		Casualties:       models.Casualties{Killed: killed, Wounded: wounded},
		PrimaryActors:    surfaceList(ents.Organizations),
		WeaponTypes:      surfaceList(ents.Weapons),
		SourceArticleIDs: []string{a.ID},
		Reliability:      0.4, // pattern path is lower-confidence than the LLM path
	}
}

// firstCount returns the first captured numeral matched by pattern, or
// nil if there is no match or it doesn't parse.
func firstCount(pattern *regexp.Regexp, text string) *int {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// baseEscalationScore derives a coarse 1-10 score from weapon count and
// casualty counts before the mandatory overrides in severity.go are
// applied. This is the pattern path's best-effort estimate; the LLM path
// supplies its own score directly.
func baseEscalationScore(weaponCount int, killed, wounded *int) int {
	score := 2
	if weaponCount > 0 {
		score += 2
	}
	if killed != nil {
		switch {
		case *killed >= 50:
			score += 4
		case *killed >= 10:
			score += 3
		case *killed >= 1:
			score += 2
		}
	}
	if wounded != nil && *wounded > 0 {
		score++
	}
	if score > 10 {
		score = 10
	}
	return score
}

// surfaceList extracts just the surface strings from a slice of entity
// matches, deduplicating while preserving first-seen order.
func surfaceList(matches []textproc.EntityMatch) []string {
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m.Surface] {
			continue
		}
		seen[m.Surface] = true
		out = append(out, m.Surface)
	}
	return out
}
