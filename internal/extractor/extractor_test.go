// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package extractor

import (
	"context"
	"testing"
	"time"

	"github.com/fieldreport/sentinel/internal/config"
	"github.com/fieldreport/sentinel/internal/models"
)

func intPtr(n int) *int { return &n }

func TestExtractPatternFallbackNoLLMConfigured(t *testing.T) {
	ctx := context.Background()
	x, err := New(ctx, config.LLMConfig{Provider: "none"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a := &models.Article{
		ID:          "article-1",
		Headline:    "Strike hits residential block",
		Body:        "At least 15 civilians were killed and 40 were wounded after an airstrike hit a residential block near the city of Kharkiv on Tuesday.",
		PublishedAt: time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC),
		SourceID:    "source-1",
	}

	events, err := x.Extract(ctx, a)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event from pattern path, got %d", len(events))
	}
	e := events[0]
	if e.Casualties.Killed == nil || *e.Casualties.Killed != 15 {
		t.Errorf("killed = %v, want 15", e.Casualties.Killed)
	}
	if e.Casualties.Wounded == nil || *e.Casualties.Wounded != 40 {
		t.Errorf("wounded = %v, want 40", e.Casualties.Wounded)
	}
	if len(e.SourceArticleIDs) != 1 || e.SourceArticleIDs[0] != "article-1" {
		t.Errorf("SourceArticleIDs = %v, want [article-1]", e.SourceArticleIDs)
	}
}

func TestExtractPatternFallbackNoSignalReturnsNoEvents(t *testing.T) {
	ctx := context.Background()
	x, err := New(ctx, config.LLMConfig{Provider: "none"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a := &models.Article{
		ID:          "article-2",
		Headline:    "Local bakery wins award",
		Body:        "The bakery on Main Street won a regional award for its sourdough bread.",
		PublishedAt: time.Now(),
		SourceID:    "source-1",
	}

	events, err := x.Extract(ctx, a)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events for non-conflict article, got %d", len(events))
	}
}

func TestApplySeverityOverridesNuclearWeaponForcesMinimum(t *testing.T) {
	e := &models.Event{EscalationScore: 2, WeaponTypes: []string{"suspected nuclear device"}}
	applySeverityOverrides(e)
	if e.EscalationScore < 8 {
		t.Errorf("EscalationScore = %d, want >= 8", e.EscalationScore)
	}
	if e.Severity != models.SeverityCritical {
		t.Errorf("Severity = %v, want critical", e.Severity)
	}
}

func TestApplySeverityOverridesMassCasualtyForcesMinimum(t *testing.T) {
	e := &models.Event{EscalationScore: 3, Casualties: models.Casualties{Killed: intPtr(150)}}
	applySeverityOverrides(e)
	if e.EscalationScore < 7 {
		t.Errorf("EscalationScore = %d, want >= 7", e.EscalationScore)
	}
}

func TestApplySeverityOverridesNeverLowersScore(t *testing.T) {
	e := &models.Event{EscalationScore: 9, WeaponTypes: []string{"nuclear"}}
	applySeverityOverrides(e)
	if e.EscalationScore != 9 {
		t.Errorf("EscalationScore = %d, want unchanged at 9", e.EscalationScore)
	}
}

func TestFromLLMResponseDiscardsNonConflict(t *testing.T) {
	x := &Extractor{}
	a := &models.Article{ID: "a1"}
	resp := &ExtractionResponse{IsConflict: false}
	events := x.fromLLMResponse(resp, a, time.Now())
	if len(events) != 0 {
		t.Errorf("expected no events when is_conflict=false, got %d", len(events))
	}
}

func TestFromLLMResponseConvertsEvent(t *testing.T) {
	x := &Extractor{}
	a := &models.Article{ID: "a1"}
	articleDate := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)

	resp := &ExtractionResponse{
		IsConflict: true,
		Events: []ExtractedEvent{
			{
				EnhancedHeadline:       "Forces clash near border town",
				ConflictType:           "armed_conflict",
				EscalationScore:        6,
				PrimaryActors:          []string{"Eastern Brigade"},
				Location:               ExtractedLocation{Name: "Border Town", Country: "Ruritania"},
				Casualties:             ExtractedCasualties{Killed: intPtr(5)},
				Weapons:                []string{"artillery"},
				Timestamp:              "2026-03-04T18:00:00Z",
				VerificationConfidence: 0.82,
			},
		},
	}

	events := x.fromLLMResponse(resp, a, articleDate)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.EventType != models.EventTypeArmedConflict {
		t.Errorf("EventType = %v, want armed_conflict", e.EventType)
	}
	if e.Location == nil || e.Location.Name != "Border Town" || e.Location.Country != "Ruritania" {
		t.Errorf("Location = %+v, unexpected", e.Location)
	}
	if e.TimestampConf != models.TimestampHigh {
		t.Errorf("TimestampConf = %v, want high for RFC3339 timestamp", e.TimestampConf)
	}
	if e.Reliability != 0.82 {
		t.Errorf("Reliability = %v, want 0.82", e.Reliability)
	}
}

func TestClampEscalationBounds(t *testing.T) {
	if got := clampEscalation(-5); got != 1 {
		t.Errorf("clampEscalation(-5) = %d, want 1", got)
	}
	if got := clampEscalation(99); got != 10 {
		t.Errorf("clampEscalation(99) = %d, want 10", got)
	}
	if got := clampEscalation(5); got != 5 {
		t.Errorf("clampEscalation(5) = %d, want 5", got)
	}
}

func TestEventTypeForUnknownDefaultsToOther(t *testing.T) {
	if got := eventTypeFor("something_weird"); got != models.EventTypeOther {
		t.Errorf("eventTypeFor(unknown) = %v, want other", got)
	}
}
