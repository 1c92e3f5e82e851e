// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
Package store is the Persistence Layer (component I). It owns the DuckDB-backed
event/article/source store, including schema creation, versioned migrations,
spatial indexing, and the offline spool for batches that repeatedly fail to
persist.

Key Components:

  - DB: connection wrapper around DuckDB, extension loading (spatial/icu/json),
    schema and index creation, checkpointing.
  - CRUD operations (crud.go): source registry upserts, article dedup inserts,
    batched event inserts, event-group persistence, query-audit logging.
  - EventFilter (query.go): the multi-dimensional filter used by both the
    `sentinel events` CLI command and the Alert Emitter's escalation snapshots.
  - Spool (spool.go): BadgerDB-backed durable holding area for event batches
    that fail their single retry, replayed by Spool.ReplayAll (no CLI flag
    calls it).

Architecture:

DuckDB runs in-process (no server), with spatial/json/icu extensions loaded
at startup when available. When the spatial extension cannot be loaded the
events table degrades to a bounding-box column set with a btree index
instead of an RTREE, so the store remains fully functional (just without
exact great-circle nearest-neighbor queries) on builds where the extension
can't be fetched.

Batches are written in bounded-size transactions (maxEventBatchSize) so a
failure partway through a cycle never rolls back everything already
committed in the same InsertEvents call.
*/
package store
