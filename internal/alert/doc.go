// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

// Package alert implements the Alert Emitter (component K): it evaluates
// persisted events against the configured firing conditions and delivers
// one alert per qualifying event to every configured sink, deduplicated by
// event id within a single cycle.
package alert
