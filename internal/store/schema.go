// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
schema.go - table definitions for the event store.

Tables:
  - sources: catalogued feeds/APIs with health and rate-limit bookkeeping
  - articles_raw: fetched articles, keyed by content hash
  - events: extracted structured events, one row per extraction
  - event_groups: clusters of near-duplicate events
  - search_queries: append-only audit of every discovery query executed

All tables use TEXT ids (UUIDs) rather than DuckDB sequences, since rows are
generated application-side before the batched insert.
*/

package store

import "fmt"

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			endpoint_url TEXT NOT NULL,
			kind TEXT NOT NULL,
			language TEXT,
			geographic_expertise TEXT, -- pipe-delimited
			reliability_score DOUBLE NOT NULL DEFAULT 50.0,
			bias_score DOUBLE NOT NULL DEFAULT 0.0,
			rate_limit_per_hour INTEGER NOT NULL DEFAULT 60,
			health DOUBLE NOT NULL DEFAULT 1.0,
			consecutive_failures INTEGER NOT NULL DEFAULT 0,
			last_successful_fetch TIMESTAMPTZ,
			daily_access_count INTEGER NOT NULL DEFAULT 0,
			daily_access_reset_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS articles_raw (
			id TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL UNIQUE,
			url TEXT NOT NULL,
			headline TEXT NOT NULL,
			body TEXT NOT NULL,
			published_at TIMESTAMPTZ,
			source_id TEXT NOT NULL REFERENCES sources(id),
			discovery_round INTEGER NOT NULL DEFAULT 1,
			discovery_query TEXT,
			language TEXT,
			relevance_score DOUBLE NOT NULL DEFAULT 0.0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS event_groups (
			id TEXT PRIMARY KEY,
			primary_event_id TEXT,
			group_confidence DOUBLE NOT NULL DEFAULT 0.0,
			corroboration_count INTEGER NOT NULL DEFAULT 1,
			source_diversity_score DOUBLE NOT NULL DEFAULT 0.0,
			corroborated BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS search_queries (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			kind TEXT NOT NULL,
			round INTEGER NOT NULL,
			result_count INTEGER NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL DEFAULT TRUE,
			error_text TEXT,
			executed_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	if db.spatialAvailable {
		queries = append(queries, `CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			enhanced_headline TEXT NOT NULL,
			event_timestamp TIMESTAMPTZ NOT NULL,
			timestamp_confidence TEXT NOT NULL,
			lat DOUBLE,
			lng DOUBLE,
			geom GEOMETRY,
			location_name TEXT,
			location_country TEXT,
			location_region TEXT,
			location_method TEXT NOT NULL DEFAULT 'unresolved',
			location_confidence DOUBLE NOT NULL DEFAULT 0.0,
			event_type TEXT NOT NULL,
			severity TEXT NOT NULL,
			escalation_score INTEGER NOT NULL,
			casualties_killed INTEGER,
			casualties_wounded INTEGER,
			casualties_missing INTEGER,
			primary_actors TEXT, -- pipe-delimited ordered list
			weapon_types TEXT,   -- pipe-delimited set
			source_article_ids TEXT NOT NULL, -- pipe-delimited set, non-empty
			reliability DOUBLE NOT NULL DEFAULT 0.0,
			tags TEXT,
			group_id TEXT REFERENCES event_groups(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`)
	} else {
		queries = append(queries, `CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			enhanced_headline TEXT NOT NULL,
			event_timestamp TIMESTAMPTZ NOT NULL,
			timestamp_confidence TEXT NOT NULL,
			lat DOUBLE,
			lng DOUBLE,
			location_name TEXT,
			location_country TEXT,
			location_region TEXT,
			location_method TEXT NOT NULL DEFAULT 'unresolved',
			location_confidence DOUBLE NOT NULL DEFAULT 0.0,
			event_type TEXT NOT NULL,
			severity TEXT NOT NULL,
			escalation_score INTEGER NOT NULL,
			casualties_killed INTEGER,
			casualties_wounded INTEGER,
			casualties_missing INTEGER,
			primary_actors TEXT,
			weapon_types TEXT,
			source_article_ids TEXT NOT NULL,
			reliability DOUBLE NOT NULL DEFAULT 0.0,
			tags TEXT,
			group_id TEXT REFERENCES event_groups(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`)
	}

	for _, q := range queries {
		if _, err := db.conn.Exec(q); err != nil {
			return fmt.Errorf("create table: %w (%s)", err, q)
		}
	}
	return nil
}

func (db *DB) createIndexes() error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_sources_active ON sources(active);`,
		`CREATE INDEX IF NOT EXISTS idx_articles_source ON articles_raw(source_id);`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published ON articles_raw(published_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_articles_url ON articles_raw(url);`,
		`CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(event_timestamp DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);`,
		`CREATE INDEX IF NOT EXISTS idx_events_severity ON events(severity);`,
		`CREATE INDEX IF NOT EXISTS idx_events_escalation ON events(escalation_score DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_events_group ON events(group_id);`,
		`CREATE INDEX IF NOT EXISTS idx_events_country ON events(location_country);`,
		`CREATE INDEX IF NOT EXISTS idx_search_queries_round ON search_queries(round, executed_at DESC);`,
	}
	for _, q := range indexes {
		if _, err := db.conn.Exec(q); err != nil {
			return fmt.Errorf("create index: %w (%s)", err, q)
		}
	}
	return nil
}
