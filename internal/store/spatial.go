// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package store

import (
	"context"
	"fmt"

	"github.com/fieldreport/sentinel/internal/logging"
)

// initializeSpatialIndexes creates the R-tree spatial index and bounding-box
// columns the clusterer and "events near X" queries rely on. A no-op if the
// spatial extension failed to load.
func (db *DB) initializeSpatialIndexes() error {
	if !db.spatialAvailable {
		return nil
	}

	migrations := []string{
		`ALTER TABLE events ADD COLUMN IF NOT EXISTS bbox_xmin DOUBLE;`,
		`ALTER TABLE events ADD COLUMN IF NOT EXISTS bbox_ymin DOUBLE;`,
		`ALTER TABLE events ADD COLUMN IF NOT EXISTS bbox_xmax DOUBLE;`,
		`ALTER TABLE events ADD COLUMN IF NOT EXISTS bbox_ymax DOUBLE;`,
	}
	for _, query := range migrations {
		if _, err := db.conn.Exec(query); err != nil {
			return fmt.Errorf("spatial migration %q: %w", query, err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_events_spatial ON events USING RTREE (geom);`,
		`CREATE INDEX IF NOT EXISTS idx_events_bbox ON events(bbox_xmin, bbox_ymin, bbox_xmax, bbox_ymax);`,
	}
	for _, query := range indexes {
		if _, err := db.conn.Exec(query); err != nil {
			// R-tree support varies by DuckDB build; degrade to sequential scan.
			logging.Warn().Err(err).Msg("failed to create spatial index, queries will fall back to sequential scan")
		}
	}
	return nil
}

// UpdateEventSpatialData backfills geom and the bounding-box columns for one
// event after insert. Idempotent; safe to call unconditionally.
func (db *DB) UpdateEventSpatialData(ctx context.Context, eventID string, lat, lng float64) error {
	if !db.spatialAvailable {
		return nil
	}
	query := `
	UPDATE events
	SET
		geom = ST_Point(?, ?),
		bbox_xmin = ? - 0.01,
		bbox_ymin = ? - 0.01,
		bbox_xmax = ? + 0.01,
		bbox_ymax = ? + 0.01
	WHERE id = ?;
	`
	_, err := db.conn.ExecContext(ctx, query, lng, lat, lng, lat, lng, lat, eventID)
	return err
}

// NearbyEventIDs returns event ids within radiusKM of (lat, lng), excluding
// excludeID, for clustering candidate generation. Falls back to a bounding
// box scan (good enough at cluster scale) if spatial is unavailable.
func (db *DB) NearbyEventIDs(ctx context.Context, lat, lng, radiusKM float64, excludeID string) ([]string, error) {
	var rows interface {
		Next() bool
		Scan(dest ...interface{}) error
		Close() error
		Err() error
	}

	if db.spatialAvailable {
		r, err := db.conn.QueryContext(ctx, `
			SELECT id FROM events
			WHERE id != ?
			  AND geom IS NOT NULL
			  AND ST_Distance_Sphere(geom, ST_Point(?, ?)) / 1000.0 <= ?
		`, excludeID, lng, lat, radiusKM)
		if err != nil {
			return nil, fmt.Errorf("nearby events (spatial): %w", err)
		}
		rows = r
	} else {
		degreeRadius := radiusKM / 111.0 // rough km-per-degree at mid-latitudes
		r, err := db.conn.QueryContext(ctx, `
			SELECT id FROM events
			WHERE id != ?
			  AND bbox_xmin IS NOT NULL
			  AND bbox_xmin <= ? + ? AND bbox_xmax >= ? - ?
			  AND bbox_ymin <= ? + ? AND bbox_ymax >= ? - ?
		`, excludeID, lng, degreeRadius, lng, degreeRadius, lat, degreeRadius, lat, degreeRadius)
		if err != nil {
			return nil, fmt.Errorf("nearby events (bbox): %w", err)
		}
		rows = r
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan nearby event id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
