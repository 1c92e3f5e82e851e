// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package textproc

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fieldreport/sentinel/internal/models"
)

var (
	relativeDayPattern  = regexp.MustCompile(`(?i)\byesterday\b`)
	relativeWeekPattern = regexp.MustCompile(`(?i)\blast\s+week\b`)
	daysAgoPattern      = regexp.MustCompile(`(?i)\b(\d+)\s+days?\s+ago\b`)
	weekday             = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	weekdayOrder        = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
)

// ExtractTemporal resolves the event time referenced in text relative to
// articleDate (§4.E ExtractTemporal). Absent any explicit or relative time
// expression, it returns articleDate itself with low confidence.
func ExtractTemporal(text string, articleDate time.Time) (time.Time, models.TimestampConfidence) {
	if m := daysAgoPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return articleDate.AddDate(0, 0, -n), models.TimestampMedium
		}
	}
	if relativeDayPattern.MatchString(text) {
		return articleDate.AddDate(0, 0, -1), models.TimestampMedium
	}
	if relativeWeekPattern.MatchString(text) {
		return articleDate.AddDate(0, 0, -7), models.TimestampMedium
	}
	if m := weekday.FindStringSubmatch(text); m != nil {
		if t, ok := resolveWeekday(strings.ToLower(m[1]), articleDate); ok {
			return t, models.TimestampMedium
		}
	}
	return articleDate, models.TimestampLow
}

// resolveWeekday finds the most recent occurrence of the named weekday on
// or before articleDate.
func resolveWeekday(name string, articleDate time.Time) (time.Time, bool) {
	targetIdx := -1
	for i, w := range weekdayOrder {
		if w == name {
			targetIdx = i
			break
		}
	}
	if targetIdx == -1 {
		return time.Time{}, false
	}
	currentIdx := int(articleDate.Weekday())
	delta := currentIdx - targetIdx
	if delta < 0 {
		delta += 7
	}
	return articleDate.AddDate(0, 0, -delta), true
}
