// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
utils.go - profiling, context, and backup-support helpers shared across the
store package.

Profiling:
  - enableProfiling(): enables DuckDB query profiling when ENABLE_QUERY_PROFILING=true

Backup Support:
  - GetDatabasePath(): returns the database file path for backup operations
  - GetRecordCounts(): returns row counts for backup verification and the
    "sentinel sources" CLI summary
*/

package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fieldreport/sentinel/internal/logging"
)

// enableProfiling enables DuckDB query profiling for performance debugging.
func (db *DB) enableProfiling() error {
	if os.Getenv("ENABLE_QUERY_PROFILING") != "true" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "PRAGMA enable_profiling"); err != nil {
		return fmt.Errorf("enable profiling: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, "PRAGMA profiling_mode = 'detailed'"); err != nil {
		return fmt.Errorf("set profiling mode: %w", err)
	}

	logging.Info().Msg("query profiling enabled (detailed mode)")
	return nil
}

// ensureContext creates a context with a 30-second timeout if none is
// provided or the given context has no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}

// GetDatabasePath returns the path to the database file.
func (db *DB) GetDatabasePath() string {
	return db.cfg.Path
}

// GetRecordCounts returns the row count for articles and events, used by the
// "sentinel sources" CLI summary and backup verification.
func (db *DB) GetRecordCounts(ctx context.Context) (articles int64, events int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles_raw").Scan(&articles); err != nil {
		return 0, 0, fmt.Errorf("count articles: %w", err)
	}
	if err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&events); err != nil {
		return articles, 0, fmt.Errorf("count events: %w", err)
	}
	return articles, events, nil
}
