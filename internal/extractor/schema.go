// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package extractor

// ExtractionRequest is the LLM flow's input (§4.F.1).
type ExtractionRequest struct {
	Headline    string `json:"headline"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at"`
	SourceID    string `json:"source_id"`
}

// ExtractionResponse is the strict JSON shape requested from the LLM
// (§4.F.1). Schema-invalid responses (missing required fields, an
// escalation_score out of [1,10], etc.) are treated as LLM-unavailable.
type ExtractionResponse struct {
	IsConflict bool             `json:"is_conflict"`
	Events     []ExtractedEvent `json:"events"`
}

// ExtractedEvent is one event draft as returned by the LLM.
type ExtractedEvent struct {
	EnhancedHeadline     string             `json:"enhanced_headline"`
	ConflictType         string             `json:"conflict_type"`
	Severity             string             `json:"severity"`
	EscalationScore      int                `json:"escalation_score"`
	PrimaryActors        []string           `json:"primary_actors"`
	Location             ExtractedLocation  `json:"location"`
	Casualties           ExtractedCasualties `json:"casualties"`
	Weapons              []string           `json:"weapons"`
	Timestamp            string             `json:"timestamp"`
	VerificationConfidence float64          `json:"verification_confidence"`
}

// ExtractedLocation is the location sub-object in an ExtractedEvent.
type ExtractedLocation struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// ExtractedCasualties is the casualties sub-object in an ExtractedEvent.
type ExtractedCasualties struct {
	Killed  *int `json:"killed"`
	Wounded *int `json:"wounded"`
}

// valid reports whether resp satisfies the strict schema contract well
// enough to trust (§9: a schema-invalid response is LLM-unavailable).
func (r ExtractionResponse) valid() bool {
	if !r.IsConflict {
		return true // a well-formed "no conflict" response is still valid
	}
	if len(r.Events) == 0 {
		return false
	}
	for _, e := range r.Events {
		if e.EnhancedHeadline == "" || e.ConflictType == "" {
			return false
		}
		if e.EscalationScore < 1 || e.EscalationScore > 10 {
			return false
		}
		if e.VerificationConfidence < 0 || e.VerificationConfidence > 1 {
			return false
		}
	}
	return true
}
