// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
seed.go - loads the operator-maintained source list (config.SourcesConfig.SeedFile,
conventionally sources.yaml) into the sources table on startup.

Seeding is idempotent: UpsertSource keys on the normalized name, so re-running
against an existing database only refreshes display metadata and never
resets health/rate-limit bookkeeping for a source that has already been
observed.
*/

package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fieldreport/sentinel/internal/logging"
	"github.com/fieldreport/sentinel/internal/models"
)

// seedSourceEntry is the YAML shape of one entry in sources.yaml.
type seedSourceEntry struct {
	DisplayName         string   `yaml:"display_name"`
	EndpointURL         string   `yaml:"endpoint_url"`
	Kind                string   `yaml:"kind"`
	Language            string   `yaml:"language"`
	GeographicExpertise []string `yaml:"geographic_expertise"`
	ReliabilityScore    float64  `yaml:"reliability_score"`
	BiasScore           float64  `yaml:"bias_score"`
	RateLimitPerHour    int      `yaml:"rate_limit_per_hour"`
}

type seedFile struct {
	Sources []seedSourceEntry `yaml:"sources"`
}

// SeedSourcesFromFile reads a sources.yaml seed file and upserts each entry
// into the sources table. Returns the number of sources processed.
func (db *DB) SeedSourcesFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var parsed seedFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	logging.Info().Int("count", len(parsed.Sources)).Str("file", path).Msg("seeding source registry")

	for _, entry := range parsed.Sources {
		if entry.ReliabilityScore == 0 {
			entry.ReliabilityScore = 50.0
		}
		if entry.RateLimitPerHour == 0 {
			entry.RateLimitPerHour = 60
		}

		s := &models.Source{
			Name:                models.NormalizeSourceName(entry.DisplayName),
			DisplayName:         entry.DisplayName,
			EndpointURL:         entry.EndpointURL,
			Kind:                models.SourceKind(entry.Kind),
			Language:            entry.Language,
			GeographicExpertise: entry.GeographicExpertise,
			ReliabilityScore:    entry.ReliabilityScore,
			BiasScore:           entry.BiasScore,
			RateLimitPerHour:    entry.RateLimitPerHour,
			Health:              1.0,
			Active:              true,
		}

		if err := db.UpsertSource(ctx, s); err != nil {
			return 0, fmt.Errorf("seed source %s: %w", entry.DisplayName, err)
		}
	}

	logging.Info().Int("count", len(parsed.Sources)).Msg("source registry seeded")
	return len(parsed.Sources), nil
}
