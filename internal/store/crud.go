// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
crud.go - persistence operations for sources, articles, events, event groups,
and the search-query audit trail.

Pipe-delimited text columns (geographic_expertise, primary_actors,
weapon_types, source_article_ids, tags) stand in for native array columns so
the schema degrades gracefully when the json extension is unavailable; when
json is available callers may still prefer the delimited form for its
simpler LIKE-based filtering.
*/

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldreport/sentinel/internal/logging"
	"github.com/fieldreport/sentinel/internal/models"
)

const pipeDelim = "|"

func joinPipe(items []string) string {
	return strings.Join(items, pipeDelim)
}

func splitPipe(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, pipeDelim)
}

// UpsertSource inserts a new source or updates an existing one keyed by its
// normalized name. Retries on transaction conflicts, following the teacher's
// per-resource retry pattern (§4.B Source Registry upsert).
func (db *DB) UpsertSource(ctx context.Context, s *models.Source) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.DailyAccessResetAt.IsZero() {
		s.DailyAccessResetAt = now
	}

	const maxRetries = 3
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.doUpsertSource(ctx, s)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("upsert source: %w", ctx.Err())
		}
		if isInternalError(err) {
			return fmt.Errorf("upsert source: internal database error, not retrying: %w", err)
		}
		if isTransactionConflict(err) && attempt < maxRetries-1 {
			backoff := time.Millisecond * time.Duration(1<<uint(attempt))
			select {
			case <-time.After(backoff):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return err
	}
	return fmt.Errorf("upsert source: max retries exceeded: %w", lastErr)
}

func (db *DB) doUpsertSource(ctx context.Context, s *models.Source) error {
	query := `INSERT INTO sources (
		id, name, display_name, endpoint_url, kind, language, geographic_expertise,
		reliability_score, bias_score, rate_limit_per_hour, health, consecutive_failures,
		last_successful_fetch, daily_access_count, daily_access_reset_at, active,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (name) DO UPDATE SET
		display_name = EXCLUDED.display_name,
		endpoint_url = EXCLUDED.endpoint_url,
		kind = EXCLUDED.kind,
		language = EXCLUDED.language,
		geographic_expertise = EXCLUDED.geographic_expertise,
		reliability_score = EXCLUDED.reliability_score,
		bias_score = EXCLUDED.bias_score,
		rate_limit_per_hour = EXCLUDED.rate_limit_per_hour,
		health = EXCLUDED.health,
		consecutive_failures = EXCLUDED.consecutive_failures,
		last_successful_fetch = EXCLUDED.last_successful_fetch,
		daily_access_count = EXCLUDED.daily_access_count,
		daily_access_reset_at = EXCLUDED.daily_access_reset_at,
		active = EXCLUDED.active,
		updated_at = EXCLUDED.updated_at`

	_, err := db.conn.ExecContext(ctx, query,
		s.ID, s.Name, s.DisplayName, s.EndpointURL, s.Kind, s.Language, joinPipe(s.GeographicExpertise),
		s.ReliabilityScore, s.BiasScore, s.RateLimitPerHour, s.Health, s.ConsecutiveFailures,
		s.LastSuccessfulFetch, s.DailyAccessCount, s.DailyAccessResetAt, s.Active,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert source: %w", err)
	}
	return nil
}

// GetSourceByName retrieves a source by its normalized name.
func (db *DB) GetSourceByName(ctx context.Context, name string) (*models.Source, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, display_name, endpoint_url, kind, language, geographic_expertise,
			reliability_score, bias_score, rate_limit_per_hour, health, consecutive_failures,
			last_successful_fetch, daily_access_count, daily_access_reset_at, active,
			created_at, updated_at
		FROM sources WHERE name = ?`, name)
	return scanSource(row)
}

// GetSourceByID retrieves a source by its generated id, used by the Source
// Registry to refresh a single entry after RecordSuccess/RecordFailure.
func (db *DB) GetSourceByID(ctx context.Context, id string) (*models.Source, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, display_name, endpoint_url, kind, language, geographic_expertise,
			reliability_score, bias_score, rate_limit_per_hour, health, consecutive_failures,
			last_successful_fetch, daily_access_count, daily_access_reset_at, active,
			created_at, updated_at
		FROM sources WHERE id = ?`, id)
	return scanSource(row)
}

// ListActiveSources returns all sources with active = true, used by the
// collector to build its per-cycle fetch plan.
func (db *DB) ListActiveSources(ctx context.Context) ([]*models.Source, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, display_name, endpoint_url, kind, language, geographic_expertise,
			reliability_score, bias_score, rate_limit_per_hour, health, consecutive_failures,
			last_successful_fetch, daily_access_count, daily_access_reset_at, active,
			created_at, updated_at
		FROM sources WHERE active = TRUE ORDER BY reliability_score DESC`)
	if err != nil {
		return nil, fmt.Errorf("list active sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.Source
	for rows.Next() {
		s, err := scanSourceRows(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row rowScanner) (*models.Source, error) {
	var s models.Source
	var expertise string
	err := row.Scan(
		&s.ID, &s.Name, &s.DisplayName, &s.EndpointURL, &s.Kind, &s.Language, &expertise,
		&s.ReliabilityScore, &s.BiasScore, &s.RateLimitPerHour, &s.Health, &s.ConsecutiveFailures,
		&s.LastSuccessfulFetch, &s.DailyAccessCount, &s.DailyAccessResetAt, &s.Active,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan source: %w", err)
	}
	s.GeographicExpertise = splitPipe(expertise)
	return &s, nil
}

func scanSourceRows(rows *sql.Rows) (*models.Source, error) {
	return scanSource(rows)
}

// UpsertArticle inserts an article keyed by content hash. A duplicate insert
// is a no-op that returns the existing row's identity (§3 Article identity).
func (db *DB) UpsertArticle(ctx context.Context, a *models.Article) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO articles_raw (
			id, content_hash, url, headline, body, published_at, source_id,
			discovery_round, discovery_query, language, relevance_score, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_hash) DO NOTHING`,
		a.ID, a.ContentHash, a.URL, a.Headline, a.Body, a.PublishedAt, a.SourceID,
		int(a.DiscoveryRound), a.DiscoveryQuery, a.Language, a.RelevanceScore, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}
	return nil
}

// ArticleExistsByHash reports whether an article with this content hash has
// already been persisted, the read-through step of the dedup pipeline (§4.D).
func (db *DB) ArticleExistsByHash(ctx context.Context, contentHash string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM articles_raw WHERE content_hash = ?)`, contentHash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article existence: %w", err)
	}
	return exists, nil
}

// ArticleExistsByURL reports whether an article with this canonicalized URL
// has already been persisted, the read-through step of the dedup pipeline's
// Seen(url) operation (§4.D).
func (db *DB) ArticleExistsByURL(ctx context.Context, canonicalURL string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM articles_raw WHERE url = ?)`, canonicalURL).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article existence by url: %w", err)
	}
	return exists, nil
}

// maxEventBatchSize bounds a single InsertEvents transaction (§7 batching).
const maxEventBatchSize = 50

// InsertEvents persists extracted events in batches of at most
// maxEventBatchSize, each batch in its own transaction so a failure part-way
// through a large cycle does not roll back everything already committed.
func (db *DB) InsertEvents(ctx context.Context, events []*models.Event) error {
	for start := 0; start < len(events); start += maxEventBatchSize {
		end := start + maxEventBatchSize
		if end > len(events) {
			end = len(events)
		}
		if err := db.insertEventBatch(ctx, events[start:end]); err != nil {
			return fmt.Errorf("insert event batch [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

func (db *DB) insertEventBatch(ctx context.Context, batch []*models.Event) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.Warn().Err(rbErr).Msg("rollback failed after insert event batch error")
			}
		}
	}()

	for _, e := range batch {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now()
		}

		var lat, lng interface{}
		var locName, locCountry, locRegion string
		method := models.GeoMethodUnresolved
		confidence := 0.0
		if e.Location != nil && e.Location.Valid() {
			lat, lng = e.Location.Lat, e.Location.Lng
			locName, locCountry, locRegion = e.Location.Name, e.Location.Country, e.Location.Region
			method, confidence = e.Location.Method, e.Location.Confidence
		}

		var groupID interface{}
		if e.GroupID != "" {
			groupID = e.GroupID
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO events (
				id, title, enhanced_headline, event_timestamp, timestamp_confidence,
				lat, lng, location_name, location_country, location_region, location_method,
				location_confidence, event_type, severity, escalation_score,
				casualties_killed, casualties_wounded, casualties_missing,
				primary_actors, weapon_types, source_article_ids, reliability, tags,
				group_id, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Title, e.EnhancedHeadline, e.Timestamp, e.TimestampConf,
			lat, lng, locName, locCountry, locRegion, method,
			confidence, e.EventType, e.Severity, e.EscalationScore,
			e.Casualties.Killed, e.Casualties.Wounded, e.Casualties.Missing,
			joinPipe(e.PrimaryActors), joinPipe(e.WeaponTypes), joinPipe(e.SourceArticleIDs), e.Reliability, joinPipe(e.Tags),
			groupID, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}

		if lat != nil {
			if updErr := db.UpdateEventSpatialData(ctx, e.ID, e.Location.Lat, e.Location.Lng); updErr != nil {
				logging.Warn().Str("event_id", e.ID).Err(updErr).Msg("failed to backfill spatial data for event")
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit event batch: %w", err)
	}
	return nil
}

// InsertEventGroups persists cluster results and updates the group_id
// pointer on every member event (§4.H Cluster, the only post-persistence
// mutation the Event lifecycle allows).
func (db *DB) InsertEventGroups(ctx context.Context, groups []*models.EventGroup) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, g := range groups {
		if g.ID == "" {
			g.ID = uuid.New().String()
		}
		if g.CreatedAt.IsZero() {
			g.CreatedAt = time.Now()
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO event_groups (
				id, primary_event_id, group_confidence, corroboration_count,
				source_diversity_score, corroborated, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			g.ID, g.PrimaryEventID, g.GroupConfidence, g.CorroborationCount,
			g.SourceDiversityScore, g.Corroborated, g.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert event group %s: %w", g.ID, err)
		}

		if len(g.MemberEventIDs) > 0 {
			placeholders, args := buildInClause(g.MemberEventIDs)
			updateArgs := append([]interface{}{g.ID}, args...)
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf(`UPDATE events SET group_id = ? WHERE id IN (%s)`, placeholders), updateArgs...)
			if err != nil {
				return fmt.Errorf("update group_id for group %s: %w", g.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit event groups: %w", err)
	}
	return nil
}

// AppendQueryAudit writes one search-query audit row. The table is
// append-only and retained indefinitely (§3).
func (db *DB) AppendQueryAudit(ctx context.Context, a *models.SearchQueryAudit) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.ExecutedAt.IsZero() {
		a.ExecutedAt = time.Now()
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO search_queries (id, text, kind, round, result_count, success, error_text, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Text, a.Kind, int(a.Round), a.ResultCount, a.Success, a.ErrorText, a.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("append query audit: %w", err)
	}
	return nil
}

// QueryEvents returns events matching filter, most recent first.
func (db *DB) QueryEvents(ctx context.Context, filter EventFilter) ([]*models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	conditions, args := filter.buildFilterConditions()
	query := `SELECT
		id, title, enhanced_headline, event_timestamp, timestamp_confidence,
		lat, lng, location_name, location_country, location_region, location_method,
		location_confidence, event_type, severity, escalation_score,
		casualties_killed, casualties_wounded, casualties_missing,
		primary_actors, weapon_types, source_article_ids, reliability, tags,
		group_id, created_at
	FROM events WHERE 1=1` + conditions + ` ORDER BY event_timestamp DESC`

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// HighEscalationSnapshot returns the most recent events at or above
// minEscalation, the source data for the alerting sink's periodic digest.
func (db *DB) HighEscalationSnapshot(ctx context.Context, minEscalation int, limit int) ([]*models.Event, error) {
	return db.QueryEvents(ctx, EventFilter{MinEscalation: minEscalation, Limit: limit})
}

func scanEvent(rows *sql.Rows) (*models.Event, error) {
	var e models.Event
	var lat, lng sql.NullFloat64
	var locName, locCountry, locRegion sql.NullString
	var method string
	var confidence float64
	var killed, wounded, missing sql.NullInt64
	var actors, weapons, articleIDs, tags string
	var groupID sql.NullString

	err := rows.Scan(
		&e.ID, &e.Title, &e.EnhancedHeadline, &e.Timestamp, &e.TimestampConf,
		&lat, &lng, &locName, &locCountry, &locRegion, &method,
		&confidence, &e.EventType, &e.Severity, &e.EscalationScore,
		&killed, &wounded, &missing,
		&actors, &weapons, &articleIDs, &e.Reliability, &tags,
		&groupID, &e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}

	if lat.Valid && lng.Valid {
		e.Location = &models.Location{
			Lat: lat.Float64, Lng: lng.Float64,
			Name: locName.String, Country: locCountry.String, Region: locRegion.String,
			Method: models.GeoMethod(method), Confidence: confidence,
		}
	}
	if killed.Valid {
		k := int(killed.Int64)
		e.Casualties.Killed = &k
	}
	if wounded.Valid {
		w := int(wounded.Int64)
		e.Casualties.Wounded = &w
	}
	if missing.Valid {
		m := int(missing.Int64)
		e.Casualties.Missing = &m
	}
	e.PrimaryActors = splitPipe(actors)
	e.WeaponTypes = splitPipe(weapons)
	e.SourceArticleIDs = splitPipe(articleIDs)
	e.Tags = splitPipe(tags)
	if groupID.Valid {
		e.GroupID = groupID.String
	}
	return &e, nil
}
