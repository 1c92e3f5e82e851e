// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package main

import (
	"context"
	"fmt"

	"github.com/fieldreport/sentinel/internal/config"
	"github.com/fieldreport/sentinel/internal/store"
)

// openStoreReadOnly opens the configured store for a query-only command
// (events, sources) without standing up the rest of the ingestion
// component graph buildApp constructs.
func openStoreReadOnly(ctx context.Context, cfg *config.Config) (*store.DB, error) {
	db, err := store.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}
	return db, nil
}
