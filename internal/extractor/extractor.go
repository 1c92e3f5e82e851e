// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package extractor

import (
	"context"
	"time"

	"github.com/fieldreport/sentinel/internal/config"
	"github.com/fieldreport/sentinel/internal/models"
	"github.com/fieldreport/sentinel/internal/textproc"
)

// conflictTypes maps the LLM's free-text conflict_type onto the closed
// EventType taxonomy (§3); anything unrecognized becomes EventTypeOther.
var conflictTypes = map[string]models.EventType{
	"armed_conflict":     models.EventTypeArmedConflict,
	"terrorism":          models.EventTypeTerrorism,
	"military_operation": models.EventTypeMilitaryOperation,
	"civil_unrest":       models.EventTypeCivilUnrest,
	"military_exercise":  models.EventTypeMilitaryExercise,
	"diplomatic":         models.EventTypeDiplomatic,
}

// Extractor is the Event Extractor (component F): tries the LLM path
// first, falling back to the deterministic pattern path on unavailability
// or schema failure.
type Extractor struct {
	llm  *llmClient // nil when LLMConfig.Provider == "none"
	proc *textproc.Processor
}

// New builds an Extractor. ctx is used only to initialize the genkit
// client when an LLM provider is configured.
func New(ctx context.Context, cfg config.LLMConfig) (*Extractor, error) {
	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Extractor{llm: client, proc: textproc.New()}, nil
}

// Extract returns zero or more Event drafts for article (§4.F contract).
// The LLM path may yield multiple events; the pattern fallback yields at
// most one.
func (x *Extractor) Extract(ctx context.Context, a *models.Article) ([]*models.Event, error) {
	articleDate := a.PublishedAt
	if articleDate.IsZero() {
		articleDate = a.CreatedAt
	}

	if x.llm != nil {
		req := &ExtractionRequest{
			Headline:    a.Headline,
			Body:        a.Body,
			PublishedAt: articleDate.Format(time.RFC3339),
			SourceID:    a.SourceID,
		}
		if resp, ok := x.llm.extract(ctx, req); ok {
			return x.fromLLMResponse(resp, a, articleDate), nil
		}
	}

	if e := patternExtract(x.proc, a, articleDate); e != nil {
		applySeverityOverrides(e)
		return []*models.Event{e}, nil
	}
	return nil, nil
}

// fromLLMResponse converts a validated ExtractionResponse into Event
// drafts, discarding events where is_conflict was false (§4.F.1).
func (x *Extractor) fromLLMResponse(resp *ExtractionResponse, a *models.Article, articleDate time.Time) []*models.Event {
	if !resp.IsConflict {
		return nil
	}

	events := make([]*models.Event, 0, len(resp.Events))
	for _, raw := range resp.Events {
		e := &models.Event{
			EnhancedHeadline: raw.EnhancedHeadline,
			EventType:        eventTypeFor(raw.ConflictType),
			EscalationScore:  clampEscalation(raw.EscalationScore),
			Casualties:       models.Casualties{Killed: raw.Casualties.Killed, Wounded: raw.Casualties.Wounded},
			PrimaryActors:    raw.PrimaryActors,
			WeaponTypes:      raw.Weapons,
			SourceArticleIDs: []string{a.ID},
			Reliability:      raw.VerificationConfidence,
		}

		e.Timestamp, e.TimestampConf = resolveTimestamp(raw.Timestamp, articleDate)

		if raw.Location.Name != "" || raw.Location.Country != "" || raw.Location.City != "" {
			e.Location = &models.Location{
				Name:    firstNonEmpty(raw.Location.Name, raw.Location.City),
				Country: raw.Location.Country,
				Region:  raw.Location.City,
				Method:  models.GeoMethodUnresolved,
			}
		}

		applySeverityOverrides(e)
		events = append(events, e)
	}
	return events
}

func eventTypeFor(conflictType string) models.EventType {
	if t, ok := conflictTypes[conflictType]; ok {
		return t
	}
	return models.EventTypeOther
}

func clampEscalation(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// resolveTimestamp parses an RFC3339 timestamp from the LLM with high
// confidence, falling back to textproc's relative-expression resolution
// against articleDate when the LLM supplied free text instead.
func resolveTimestamp(raw string, articleDate time.Time) (time.Time, models.TimestampConfidence) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, models.TimestampHigh
	}
	return textproc.ExtractTemporal(raw, articleDate)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
