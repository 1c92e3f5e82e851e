// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

// Package orchestrator implements the Two-Round Orchestrator (component J):
// the ten-step cycle that turns a set of catalogued sources and conflict
// zones into persisted, geo-resolved, deduplicated, clustered events.
//
// A cycle runs a broad round (zone-templated queries against every active
// source), mines entities from what it finds, runs a second, narrower round
// targeted at those entities, and finally evaluates the Alert Emitter
// against everything persisted. Two invocations covering the same time
// window are idempotent: duplicate articles are absorbed by the dedup
// index and the store's content-hash uniqueness constraint, so replaying
// a cycle never doubles persisted state.
package orchestrator
