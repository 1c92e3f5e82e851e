// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates Sentinel's runtime configuration.
//
// Configuration is assembled in three layers with Koanf v2, lowest priority
// first:
//
//  1. Defaults: built-in values returned by defaultConfig()
//  2. Config file: optional sentinel.yaml discovered via SENTINEL_CONFIG or
//     the default search paths
//  3. Environment variables: SENTINEL_-prefixed, highest priority
//
// Load() also applies a .env file (via godotenv) before reading the
// environment, so local development can keep secrets out of the shell.
//
// Config is immutable after Load() returns and safe for concurrent read
// access.
package config
