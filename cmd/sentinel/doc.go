// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

// Package main is the entry point for the sentinel CLI.
//
// Sentinel discovers open-source news about armed conflict, extracts
// structured event records, clusters near-duplicates across sources, and
// persists results into a DuckDB-backed store with geographic indexing.
//
// # Commands
//
//	sentinel ingest  [--dry-run] [--verbose] [--limit N] [--source KIND]
//	sentinel monitor [--interval MINUTES] [--alerts]
//	sentinel events  [--country C] [--min-severity S] [--min-escalation N] [--limit N]
//	sentinel sources [--kind KIND]
//
// ingest runs exactly one ingestion cycle and exits. monitor runs the
// cycle on a recurring schedule, supervised, until terminated. events and
// sources are read-only queries against the store.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 (internal/config): built-in
// defaults, an optional sentinel.yaml config file, then SENTINEL_*
// environment variables, highest priority last. See internal/config's
// package doc for the full key list.
//
// # Exit Codes
//
//	0  success
//	1  configuration error (Config.Validate failed, bad flags)
//	2  unrecoverable runtime error (store, collector, or supervisor failure)
package main
