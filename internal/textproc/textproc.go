// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package textproc

import "github.com/fieldreport/sentinel/internal/cache"

// Processor holds the compiled lexicon automata shared across every
// ExtractEntities/ScoreRelevance call. Building a cache.AhoCorasick is a
// one-time cost; New compiles all four lexicons once so individual
// articles never pay it (§4.E addition: "compiled once... not re-compiled
// per article").
type Processor struct {
	weaponLexicon       *cache.AhoCorasick
	militaryUnitLexicon *cache.AhoCorasick
	casualtyLexicon     *cache.AhoCorasick
	relevanceLexicon    *cache.AhoCorasick
}

// New compiles the lexicon automata and returns a ready-to-use Processor.
func New() *Processor {
	return &Processor{
		weaponLexicon:       buildLexicon(weaponTerms),
		militaryUnitLexicon: buildLexicon(militaryUnitTerms),
		casualtyLexicon:     buildLexicon(casualtyTerms),
		relevanceLexicon:    buildLexicon(conflictLexicon),
	}
}
