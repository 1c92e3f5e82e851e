// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
connection.go - Connection Management

This file provides connection pool configuration and the error classifiers
the write-path retry loops use to decide whether to retry a failed upsert,
fail fast, or propagate the error as-is.

Connection Pool Configuration:
  - MaxOpenConns: Based on CPU count for parallelism
  - MaxIdleConns: 2 for efficient connection reuse
  - ConnMaxLifetime: 1 hour to prevent stale connections
  - ConnMaxIdleTime: 5 minutes for idle connection cleanup
*/

//nolint:staticcheck // File documentation, not package doc
package store

import (
	"runtime"
	"strings"
	"time"
)

// configureConnectionPool sets connection pool parameters
func (db *DB) configureConnectionPool() error {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)

	// Note: Connection pool settings:
	// - max_open: NumCPU() for parallelism
	// - max_idle: 2 for connection reuse
	// - max_lifetime: 1h to prevent stale connections
	// - max_idle_time: 5m for idle connection cleanup

	return nil
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update") ||
		strings.Contains(errStr, "cannot update a table that has been altered")
}

// isInternalError checks if an error is a DuckDB INTERNAL error. These
// indicate a driver-level bug rather than a contended write, so callers
// should fail fast instead of retrying.
func isInternalError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "INTERNAL Error")
}
