// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package store

import (
	"fmt"
	"strings"
	"time"
)

// buildInClause creates a parameterized IN clause for SQL queries.
// Returns the placeholder string and the arguments slice.
//
// Example:
//
//	placeholders, args := buildInClause([]string{"ua", "ru"})
//	// placeholders = "?,?"
//	// args = []interface{}{"ua", "ru"}
func buildInClause(items []string) (string, []interface{}) {
	placeholders := make([]string, len(items))
	args := make([]interface{}, len(items))
	for i, item := range items {
		placeholders[i] = "?"
		args[i] = item
	}
	return strings.Join(placeholders, ","), args
}

// EventFilter selects events for the `sentinel events` CLI query command and
// for alert-sink snapshot queries. All fields are optional and combine with
// AND; multi-select fields (EventTypes, Countries) combine with OR within
// the field.
type EventFilter struct {
	StartTime        *time.Time
	EndTime          *time.Time
	EventTypes       []string
	Countries        []string
	MinSeverity      string // one of models.Severity, empty = no floor
	MinEscalation    int
	GroupID          string
	Limit            int
}

// buildFilterConditions builds WHERE clause conditions (without the WHERE
// keyword) and matching arguments from an EventFilter. The base query should
// start from "WHERE 1=1" so these can be appended unconditionally.
func (f *EventFilter) buildFilterConditions() (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if f.StartTime != nil {
		conditions = append(conditions, "event_timestamp >= ?")
		args = append(args, *f.StartTime)
	}
	if f.EndTime != nil {
		conditions = append(conditions, "event_timestamp <= ?")
		args = append(args, *f.EndTime)
	}
	if len(f.EventTypes) > 0 {
		placeholders, typeArgs := buildInClause(f.EventTypes)
		conditions = append(conditions, fmt.Sprintf("event_type IN (%s)", placeholders))
		args = append(args, typeArgs...)
	}
	if len(f.Countries) > 0 {
		placeholders, countryArgs := buildInClause(f.Countries)
		conditions = append(conditions, fmt.Sprintf("location_country IN (%s)", placeholders))
		args = append(args, countryArgs...)
	}
	if f.MinSeverity != "" {
		conditions = append(conditions, severityFloorClause(f.MinSeverity))
	}
	if f.MinEscalation > 0 {
		conditions = append(conditions, "escalation_score >= ?")
		args = append(args, f.MinEscalation)
	}
	if f.GroupID != "" {
		conditions = append(conditions, "group_id = ?")
		args = append(args, f.GroupID)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " AND " + strings.Join(conditions, " AND "), args
}

// severityFloorClause expands a minimum severity into the set of severities
// at or above it, since severity is stored as text rather than an ordered
// enum column.
func severityFloorClause(min string) string {
	order := []string{"low", "medium", "high", "critical"}
	startIdx := 0
	for i, s := range order {
		if s == min {
			startIdx = i
			break
		}
	}
	quoted := make([]string, 0, len(order)-startIdx)
	for _, s := range order[startIdx:] {
		quoted = append(quoted, "'"+s+"'")
	}
	return "severity IN (" + strings.Join(quoted, ",") + ")"
}
