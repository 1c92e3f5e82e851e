// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fieldreport/sentinel/internal/store"
)

func runEvents(args []string) int {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	country := fs.String("country", "", "restrict to one country")
	minSeverity := fs.String("min-severity", "", "minimum severity: low|medium|high|critical")
	minEscalation := fs.Int("min-escalation", 0, "minimum escalation score (1-10)")
	groupID := fs.String("group-id", "", "restrict to one event group")
	since := fs.Duration("since", 0, "only events at or after now-since, e.g. 72h")
	limit := fs.Int("limit", 50, "maximum rows to print")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	cfg, ok := loadConfig()
	if !ok {
		return exitConfig
	}

	ctx := context.Background()
	db, err := openStoreReadOnly(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sentinel: events: %v\n", err)
		return exitRuntime
	}
	defer db.Close()

	filter := store.EventFilter{
		MinSeverity:   *minSeverity,
		MinEscalation: *minEscalation,
		GroupID:       *groupID,
		Limit:         *limit,
	}
	if *country != "" {
		filter.Countries = []string{*country}
	}
	if *since > 0 {
		start := time.Now().Add(-*since)
		filter.StartTime = &start
	}

	events, err := db.QueryEvents(ctx, filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sentinel: events: query failed: %v\n", err)
		return exitRuntime
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIMESTAMP\tSEVERITY\tESCALATION\tTYPE\tLOCATION\tHEADLINE")
	for _, e := range events {
		loc := "unresolved"
		if e.Location != nil && e.Location.Valid() {
			loc = e.Location.Name
			if e.Location.Country != "" {
				loc = fmt.Sprintf("%s, %s", loc, e.Location.Country)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			e.ID, e.Timestamp.Format(time.RFC3339), e.Severity, e.EscalationScore,
			e.EventType, loc, truncate(e.EnhancedHeadline, 60))
	}
	w.Flush()

	fmt.Fprintf(os.Stdout, "\n%d event(s)\n", len(events))
	return exitSuccess
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
