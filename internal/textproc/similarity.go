// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package textproc

import (
	"math"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// tokenize lowercases and splits text into a word-frequency bag, ignoring
// punctuation - the language-agnostic fallback representation used by
// Similarity (§4.E: "cosine over token bags").
func tokenize(text string) map[string]int {
	bag := make(map[string]int)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		bag[tok]++
	}
	return bag
}

// Similarity computes cosine similarity between the token-frequency bags
// of a and b, used by the clusterer as a language-agnostic fallback when
// no richer embedding is available (§4.E Similarity).
func Similarity(a, b string) float64 {
	bagA := tokenize(a)
	bagB := tokenize(b)
	if len(bagA) == 0 || len(bagB) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for tok, countA := range bagA {
		normA += float64(countA * countA)
		if countB, ok := bagB[tok]; ok {
			dot += float64(countA * countB)
		}
	}
	for _, countB := range bagB {
		normB += float64(countB * countB)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
