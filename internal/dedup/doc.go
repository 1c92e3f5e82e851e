// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
Package dedup implements the Dedup Index (component D): a process-wide
in-memory structure, backed by a database read-through, that decides
whether a fetched article has already been admitted this run.

Seen/SeenHash consult a cache.BloomLRU first (O(1), no false negatives) so
the common case - an already-seen URL or content hash - never touches the
database. On a Bloom "maybe", the read-through against internal/store's
articles_raw table resolves the answer exactly, and internal/store's
unique index on content_hash remains the permanent source of truth even
if the in-memory cache is cold (e.g. right after a restart).

Reuses the teacher's cache.BloomLRU/ExactLRU structures directly per
SPEC_FULL.md's "reused, not reimplemented" table.
*/
package dedup
