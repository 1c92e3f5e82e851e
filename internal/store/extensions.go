// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
extensions.go - DuckDB Extension Installation

Required extensions:
  - spatial: GEOMETRY types, ST_* functions, and R-tree spatial indexes for
    event location queries and nearest-neighbor clustering support
  - icu: timezone-aware TIMESTAMPTZ operations, used throughout for
    published_at/timestamp/created_at columns
  - json: structured storage of LLM extraction payloads and tag arrays

Installation strategy, in order: try INSTALL, fall back to LOAD (already
installed), then FORCE INSTALL. If optional=true and all fail, the feature
is disabled gracefully rather than failing startup.
*/

package store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fieldreport/sentinel/internal/logging"
)

// extensionTimeout is the hard timeout for a single extension operation.
// CGO calls do not respect context cancellation, so a goroutine-based
// timeout is used in addition to the context deadline.
var extensionTimeout = getExtensionTimeout()

func getExtensionTimeout() time.Duration {
	if timeoutStr := os.Getenv("DUCKDB_EXTENSION_TIMEOUT"); timeoutStr != "" {
		if d, err := time.ParseDuration(timeoutStr); err == nil && d > 0 {
			return d
		}
	}
	return 30 * time.Second
}

func extensionContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), extensionTimeout)
}

type extensionSpec struct {
	Name              string
	VerifyQuery       string
	AvailabilityField func(db *DB) *bool
	WarningMessage    string
}

// execWithHardTimeout executes a statement with a goroutine-based hard
// timeout, since DuckDB's CGO calls can outlive context cancellation.
func (db *DB) execWithHardTimeout(query string) error {
	resultCh := make(chan error, 1)
	ctx, cancel := extensionContext()
	defer cancel()

	go func() {
		_, err := db.conn.ExecContext(ctx, query)
		resultCh <- err
	}()

	select {
	case err := <-resultCh:
		return err
	case <-time.After(extensionTimeout):
		return fmt.Errorf("operation timed out after %v", extensionTimeout)
	}
}

func (db *DB) installCoreExtension(spec *extensionSpec, optional bool) error {
	err := db.execWithHardTimeout(fmt.Sprintf("INSTALL %s;", spec.Name))
	if err == nil {
		err = db.execWithHardTimeout(fmt.Sprintf("LOAD %s;", spec.Name))
	}
	if err != nil {
		if loadErr := db.execWithHardTimeout(fmt.Sprintf("LOAD %s;", spec.Name)); loadErr == nil {
			err = nil
		}
	}
	if err != nil {
		if field := spec.AvailabilityField; field != nil {
			*field(db) = false
		}
		if optional {
			logging.Warn().Str("extension", spec.Name).Err(err).Msg(spec.WarningMessage)
			return nil
		}
		return fmt.Errorf("install %s extension: %w", spec.Name, err)
	}

	if spec.VerifyQuery != "" {
		ctx, cancel := extensionContext()
		defer cancel()
		var discard string
		if verr := db.conn.QueryRowContext(ctx, spec.VerifyQuery).Scan(&discard); verr != nil {
			if field := spec.AvailabilityField; field != nil {
				*field(db) = false
			}
			if optional {
				logging.Warn().Str("extension", spec.Name).Err(verr).Msg(spec.WarningMessage)
				return nil
			}
			return fmt.Errorf("verify %s extension: %w", spec.Name, verr)
		}
	}

	if field := spec.AvailabilityField; field != nil {
		*field(db) = true
	}
	return nil
}

type extensionInstaller func(optional bool) error

func installExtension(installer extensionInstaller, optional bool) error {
	if err := installer(optional); err != nil && !optional {
		return err
	}
	return nil
}

// installExtensions installs and loads spatial, icu, and json. Set
// DUCKDB_SPATIAL_OPTIONAL=true to allow startup without them (schema then
// falls back to non-GEOMETRY columns and text-based timestamps).
func (db *DB) installExtensions() error {
	optional := os.Getenv("DUCKDB_SPATIAL_OPTIONAL") == "true"

	installers := []extensionInstaller{db.installSpatial, db.installICU, db.installJSON}
	for _, installer := range installers {
		if err := installExtension(installer, optional); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) installSpatial(optional bool) error {
	return db.installCoreExtension(&extensionSpec{
		Name:              "spatial",
		AvailabilityField: func(db *DB) *bool { return &db.spatialAvailable },
		WarningMessage:    "spatial extension unavailable, event tables will omit GEOMETRY columns",
	}, optional)
}

func (db *DB) installICU(optional bool) error {
	return db.installCoreExtension(&extensionSpec{
		Name:              "icu",
		VerifyQuery:       "SELECT timezone('UTC', TIMESTAMP '2024-01-01 12:00:00')::VARCHAR",
		AvailabilityField: func(db *DB) *bool { return &db.icuAvailable },
		WarningMessage:    "icu extension unavailable, timezone-aware timestamp operations will be limited",
	}, optional)
}

func (db *DB) installJSON(optional bool) error {
	return db.installCoreExtension(&extensionSpec{
		Name:              "json",
		VerifyQuery:       `SELECT json_extract('{"name":"test"}', '$.name')::VARCHAR`,
		AvailabilityField: func(db *DB) *bool { return &db.jsonAvailable },
		WarningMessage:    "json extension unavailable, tag/weapon-type arrays will be stored as delimited text",
	}, optional)
}

// isExtensionInstalledLocally is kept for callers that want to skip a
// network INSTALL when pre-provisioned (see setup scripts in deployment).
func isExtensionInstalledLocally(extensionName string) bool {
	return strings.TrimSpace(os.Getenv("DUCKDB_EXTENSIONS_DIR")) != "" &&
		fileExists(os.Getenv("DUCKDB_EXTENSIONS_DIR")+"/"+extensionName+".duckdb_extension")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
