// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics provides Prometheus instrumentation for the ingestion
// pipeline: per-source fetch counts and errors, circuit-breaker state,
// dedup hit rates, extraction method mix, geocoding resolution tiers,
// cluster formation, persistence batches, and alert firings.
//
// Metrics are registered at package init via promauto and are safe for
// concurrent use from every pipeline stage.
package metrics
