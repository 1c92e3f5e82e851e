// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/fieldreport/sentinel/internal/models"
)

func insertTestEvent(t *testing.T, db *DB, lat, lng float64, country string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := db.conn.Exec(`
		INSERT INTO events (
			id, title, enhanced_headline, event_timestamp, timestamp_confidence,
			lat, lng, location_country, location_method, event_type, severity,
			escalation_score, source_article_ids
		) VALUES (?, ?, ?, CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, "test event", "test event", models.TimestampHigh,
		lat, lng, country, models.GeoMethodGeocodingAPI,
		models.EventTypeArmedConflict, models.SeverityMedium, 5, "article-1")
	checkNoError(t, err)

	checkNoError(t, db.UpdateEventSpatialData(context.Background(), id, lat, lng))
	return id
}

func TestInitializeSpatialIndexes_CreatesColumns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM information_schema.columns
		WHERE table_name = 'events' AND column_name IN ('bbox_xmin', 'bbox_ymin', 'bbox_xmax', 'bbox_ymax')
	`).Scan(&count)
	checkNoError(t, err)
	if count != 4 {
		t.Errorf("expected 4 bbox columns, got %d", count)
	}
}

func TestUpdateEventSpatialData_Backfills(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	id := insertTestEvent(t, db, 50.45, 30.52, "Ukraine") // Kyiv

	var xmin, xmax float64
	err := db.conn.QueryRow(`SELECT bbox_xmin, bbox_xmax FROM events WHERE id = ?`, id).Scan(&xmin, &xmax)
	checkNoError(t, err)
	if xmin >= xmax {
		t.Errorf("expected bbox_xmin < bbox_xmax, got %f >= %f", xmin, xmax)
	}
}

func TestNearbyEventIDs_FindsCloseEvent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	kyiv := insertTestEvent(t, db, 50.45, 30.52, "Ukraine")
	nearKyiv := insertTestEvent(t, db, 50.46, 30.53, "Ukraine")
	tokyo := insertTestEvent(t, db, 35.68, 139.65, "Japan")

	ids, err := db.NearbyEventIDs(context.Background(), 50.45, 30.52, 50.0, kyiv)
	checkNoError(t, err)

	found := make(map[string]bool, len(ids))
	for _, id := range ids {
		found[id] = true
	}
	if !found[nearKyiv] {
		t.Errorf("expected nearby event %s within 50km of Kyiv, got %v", nearKyiv, ids)
	}
	if found[tokyo] {
		t.Errorf("did not expect Tokyo event %s within 50km of Kyiv", tokyo)
	}
}

func TestNearbyEventIDs_NoMatches(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	insertTestEvent(t, db, 35.68, 139.65, "Japan")

	ids, err := db.NearbyEventIDs(context.Background(), 50.45, 30.52, 10.0, "nonexistent")
	checkNoError(t, err)
	checkSliceEmpty(t, "nearby ids", len(ids))
}

func TestSpatialAvailabilityFlag(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	available := db.IsSpatialAvailable()
	t.Logf("spatial extension available: %v", available)
}
