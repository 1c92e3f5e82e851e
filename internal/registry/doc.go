// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
Package registry implements the Source Registry (component B): the catalogue
of fetchable sources (RSS feeds, search APIs, news APIs), their health and
rate-limit bookkeeping.

Registry state is persisted through internal/store's sources table so it
survives process restarts; the in-memory Registry is a read-through cache
refreshed by List. Rate-limit accounting uses a cache.SlidingWindowCounter
per source keyed to the source's declared hourly cap, grounded on the
teacher's geolocation-cache resolve-or-fetch shape in internal/sync.

Health only ever decreases on failure and increases on success (never on a
no-op), per spec.md §4.B's "health never rises on failure" invariant.
*/
package registry
