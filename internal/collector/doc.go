// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
Package collector implements the Collector (component C): given a set of
generated queries and the active source list, fans out to Search API,
News API, and RSS strategies and returns a bounded stream of raw Article
candidates (§4.C).

Concurrency is bounded globally by RuntimeConfig.MaxConcurrentRequests
via errgroup.SetLimit; per-source fetches are serialized to concurrency
1 via a per-source mutex. Each source additionally carries its own
circuit breaker (grounded on the teacher's CircuitBreakerClient,
internal/sync/circuit_breaker.go) so a source failing hard stops being
dialed for its cooldown window independent of the Source Registry's own
health bookkeeping, and a token-bucket rate limiter pacing individual
requests against its declared hourly cap.
*/
package collector
