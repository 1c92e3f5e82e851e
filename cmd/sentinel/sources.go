// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fieldreport/sentinel/internal/registry"
)

func runSources(args []string) int {
	fs := flag.NewFlagSet("sources", flag.ContinueOnError)
	kindFlag := fs.String("kind", "all", "restrict to one source kind: google|rss|newsapi|all")
	lang := fs.String("language", "", "restrict to one language code")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	kind, ok := sourceKindFlags[*kindFlag]
	if !ok {
		fmt.Fprintf(os.Stderr, "sentinel: sources: invalid --kind %q (want google|rss|newsapi|all)\n", *kindFlag)
		return exitConfig
	}

	cfg, ok := loadConfig()
	if !ok {
		return exitConfig
	}

	ctx := context.Background()
	db, err := openStoreReadOnly(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sentinel: sources: %v\n", err)
		return exitRuntime
	}
	defer db.Close()

	reg := registry.New(db)
	sources, err := reg.List(ctx, registry.Filter{Kind: kind, Language: *lang})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sentinel: sources: list failed: %v\n", err)
		return exitRuntime
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tLANGUAGE\tHEALTH\tFAILURES\tACTIVE\tRATE/HR")
	for _, s := range sources {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\t%t\t%d\n",
			s.DisplayName, s.Kind, s.Language, s.Health, s.ConsecutiveFailures, s.Active, s.RateLimitPerHour)
	}
	w.Flush()

	fmt.Fprintf(os.Stdout, "\n%d source(s)\n", len(sources))
	return exitSuccess
}
