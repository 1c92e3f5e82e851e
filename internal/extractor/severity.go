// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package extractor

import (
	"strings"

	"github.com/fieldreport/sentinel/internal/models"
)

// massCasualtyKilledThreshold is the killed count at/above which the
// mass-casualty escalation floor applies (§4.F).
const massCasualtyKilledThreshold = 100

// nuclearWeaponTerms identify CBRN-class weapons that force the minimum
// escalation floor, matched case-insensitively against WeaponTypes.
var nuclearWeaponTerms = []string{"nuclear", "cbrn", "chemical weapon", "chemical attack", "nerve agent"}

// applySeverityOverrides enforces §4.F's contractual escalation floors on
// e in place: nuclear/CBRN-class weapons force a minimum of 8, a killed
// count >= 100 forces a minimum of 7. These only ever raise the score -
// never lower it, regardless of which path produced e.
func applySeverityOverrides(e *models.Event) {
	if e == nil {
		return
	}

	if hasNuclearWeapon(e.WeaponTypes) {
		e.EscalationScore = max(e.EscalationScore, 8)
	}
	if e.Casualties.Killed != nil && *e.Casualties.Killed >= massCasualtyKilledThreshold {
		e.EscalationScore = max(e.EscalationScore, 7)
	}

	e.Severity = models.SeverityForEscalation(e.EscalationScore)
}

func hasNuclearWeapon(weapons []string) bool {
	for _, w := range weapons {
		lower := strings.ToLower(w)
		for _, term := range nuclearWeaponTerms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}
