// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package textproc

import (
	"strings"
	"unicode"
)

// defaultLanguage is returned whenever detection can't reach minConfidence,
// or the input is too short to classify at all (§4.E: "default en on failure").
const defaultLanguage = "en"

// minDetectableRunes is the shortest input DetectLanguage will attempt to
// classify; below this a trigram profile is too noisy to trust.
const minDetectableRunes = 12

// minProfileHits is the minimum total profile-trigram hits (summed across
// every language) required before a result is trusted at all; below this
// the signal is too sparse to separate languages reliably.
const minProfileHits = 3

// minConfidence is the minimum share of total profile hits the winning
// language must hold, relative to every language's hits combined (not
// relative to the text's raw trigram count, which grows with length and
// would swamp a small hand-curated profile).
const minConfidence = 0.35

// languageProfiles holds, per ISO-639-1 code, the most frequent character
// trigrams observed in that language's conflict/news reporting register.
// These are small, hand-curated top-N lists (Cavnar-Trenkle style n-gram
// frequency classification), not full corpora - good enough to separate
// the handful of languages this pipeline's sources actually publish in.
var languageProfiles = map[string][]string{
	"en": {" th", "the", "he ", "ing", "and", " an", "nd ", "ed ", "tio", "ati"},
	"es": {" de", "de ", "que", " qu", "ent", "ció", "ón ", " la", "la ", "nte"},
	"fr": {" de", "de ", "ent", "les", " le", "ion", "tio", "que", " qu", "ett"},
	"de": {"sch", "che", " de", "der", "und", " un", "ein", "ich", "en ", "gen"},
	"ru": {" на", "ста", "ост", "ени", "ого", "ств", "про", "ани", "как", "что"},
	"uk": {" на", "ння", "ати", "ськ", "про", "ами", "сть", "ого", "іль", "них"},
	"ar": {"الم", "في ", " في", "من ", " من", "على", " عل", "الد", "ية ", "ات "},
}

// DetectLanguage returns an ISO-639-1 language code for text, falling back
// to "en" when the input is too short or no profile scores confidently
// (§4.E DetectLanguage).
func DetectLanguage(text string) string {
	runes := []rune(strings.ToLower(text))
	if len([]rune(strings.TrimSpace(text))) < minDetectableRunes {
		return defaultLanguage
	}

	counts := trigramCounts(runes)

	langHits := make(map[string]int, len(languageProfiles))
	totalHits := 0
	for lang, profile := range languageProfiles {
		hits := 0
		for _, tri := range profile {
			hits += counts[tri]
		}
		langHits[lang] = hits
		totalHits += hits
	}
	if totalHits < minProfileHits {
		return defaultLanguage
	}

	bestLang := defaultLanguage
	bestHits := 0
	for lang, hits := range langHits {
		if hits > bestHits {
			bestHits = hits
			bestLang = lang
		}
	}

	if float64(bestHits)/float64(totalHits) < minConfidence {
		return defaultLanguage
	}
	return bestLang
}

// trigramCounts counts overlapping 3-rune windows, treating runs of
// whitespace as a single space so profile entries like " th" match word
// boundaries.
func trigramCounts(runes []rune) map[string]int {
	normalized := make([]rune, 0, len(runes))
	lastWasSpace := false
	for _, r := range runes {
		if unicode.IsSpace(r) {
			if lastWasSpace {
				continue
			}
			r = ' '
			lastWasSpace = true
		} else {
			lastWasSpace = false
		}
		normalized = append(normalized, r)
	}

	counts := make(map[string]int)
	for i := 0; i+3 <= len(normalized); i++ {
		counts[string(normalized[i:i+3])]++
	}
	return counts
}
