// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package orchestrator

import (
	"fmt"
	"time"
)

// Outcome classifies how a cycle finished, mirrored into
// metrics.CyclesTotal's "outcome" label.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// CycleStats is the structured result of one RunCycle call (§7: "cycle-level
// outcome is always a structured stats record", never a bare error).
type CycleStats struct {
	CycleID   string
	StartedAt time.Time
	EndedAt   time.Time

	Round1Queries  int
	Round1Articles int
	Round1Events   int

	Round2Queries  int
	Round2Articles int
	Round2Events   int

	EventGroupsFormed int
	// CoverageBoost is Round2Events / max(1, Round1Events) - how much the
	// entity-targeted round added relative to the broad round (§4.J step 9).
	CoverageBoost float64

	AlertsFired int

	Outcome Outcome
	Errors  []string
}

func (s *CycleStats) addError(format string, args ...any) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

func (s *CycleStats) finalize() {
	s.EndedAt = time.Now()
	total := s.Round1Events + s.Round2Events
	switch {
	case len(s.Errors) == 0:
		s.Outcome = OutcomeSuccess
	case total > 0:
		s.Outcome = OutcomePartial
	default:
		s.Outcome = OutcomeFailed
	}
}
