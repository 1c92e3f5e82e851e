// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package textproc

import "testing"

func TestSimilarityIdenticalTextIsOne(t *testing.T) {
	text := "Artillery strike hits residential district killing several civilians."
	if got := Similarity(text, text); got < 0.999 {
		t.Errorf("Similarity(identical) = %v, want ~1.0", got)
	}
}

func TestSimilarityUnrelatedTextIsLow(t *testing.T) {
	a := "Artillery strike hits residential district killing several civilians."
	b := "Local bakery wins regional award for best sourdough bread recipe."
	if got := Similarity(a, b); got > 0.2 {
		t.Errorf("Similarity(unrelated) = %v, want low", got)
	}
}

func TestSimilarityPartialOverlap(t *testing.T) {
	a := "Artillery strike hits residential district near the eastern border."
	b := "Artillery strike reported near the eastern border overnight."
	got := Similarity(a, b)
	if got < 0.4 || got > 1.0 {
		t.Errorf("Similarity(partial overlap) = %v, want in [0.4, 1.0]", got)
	}
}

func TestSimilarityEmptyStringIsZero(t *testing.T) {
	if got := Similarity("", "anything"); got != 0 {
		t.Errorf("Similarity(empty) = %v, want 0", got)
	}
}
