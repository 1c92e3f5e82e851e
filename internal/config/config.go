// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/fieldreport/sentinel/internal/models"
)

// Config holds all application configuration loaded from environment
// variables and an optional config file. See package doc for load order.
type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	Sources    SourcesConfig    `koanf:"sources"`
	LLM        LLMConfig        `koanf:"llm"`
	Geocoding  GeocodingConfig  `koanf:"geocoding"`
	Runtime    RuntimeConfig    `koanf:"runtime"`
	Alerting   AlertingConfig   `koanf:"alerting"`
	NATS       NATSConfig       `koanf:"nats"`
	Spool      SpoolConfig      `koanf:"spool"`
	Logging    LoggingConfig    `koanf:"logging"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

// DatabaseConfig configures the DuckDB-backed event store.
type DatabaseConfig struct {
	Path            string        `koanf:"path"`
	MemoryLimit     string        `koanf:"memory_limit"`
	Threads         int           `koanf:"threads"`
	QueryTimeout    time.Duration `koanf:"query_timeout"`
	EnableSpatial   bool          `koanf:"enable_spatial"`
	EnableJSON      bool          `koanf:"enable_json"`
	EnableICU       bool          `koanf:"enable_icu"`
}

// SourcesConfig configures news-source discovery and fetching.
type SourcesConfig struct {
	SearchAPIKey       string `koanf:"search_api_key"`
	SearchAPIEndpoint  string `koanf:"search_api_endpoint"`
	NewsAPIKey         string `koanf:"news_api_key"`
	NewsAPIEndpoint    string `koanf:"news_api_endpoint"`
	SeedFile           string `koanf:"seed_file"` // bootstrap RSS source list
	UserAgent          string `koanf:"user_agent"`
	RequestTimeout     time.Duration `koanf:"request_timeout"`
}

// LLMConfig configures the structured-extraction model client.
type LLMConfig struct {
	Provider    string        `koanf:"provider"` // "openai" | "none" (regex-only fallback)
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxRetries  int           `koanf:"max_retries"`
}

// GeocodingConfig configures the geocoding-API fallback tier of location
// resolution (tiers 1-5 are local gazetteer lookups and need no config).
type GeocodingConfig struct {
	Provider      string        `koanf:"provider"` // "nominatim" | "none"
	Endpoint      string        `koanf:"endpoint"`
	APIKey        string        `koanf:"api_key"`
	Timeout       time.Duration `koanf:"timeout"`
	GazetteerPath string        `koanf:"gazetteer_path"` // tiers 1-4 seed file, see internal/geo
}

// RuntimeConfig holds the ingestion-cycle tunables from spec §4/§6.
type RuntimeConfig struct {
	MaxConcurrentRequests int           `koanf:"max_concurrent_requests"`
	BatchSize             int           `koanf:"batch_size"`
	DedupWindow           time.Duration `koanf:"dedup_window"`
	RetryAttempts         int           `koanf:"retry_attempts"`
	BaseRetryDelay        time.Duration `koanf:"base_retry_delay"`
	RelevanceThreshold    float64       `koanf:"relevance_threshold"`
	SimilarityThreshold   float64       `koanf:"similarity_threshold"`
	Round2Enabled         bool          `koanf:"round2_enabled"`
	PerRunArticleCap      int           `koanf:"per_run_article_cap"`
	CycleInterval         time.Duration `koanf:"cycle_interval"`
	ConflictZones         []string      `koanf:"conflict_zones"`

	// SourceKindFilter restricts a cycle to one source kind. Empty (the
	// default) means every active source is used; it is never set from
	// the environment or a config file, only by the ingest CLI's
	// --source flag for a single one-off run.
	SourceKindFilter models.SourceKind `koanf:"-"`
}

// AlertingConfig configures the Alert Emitter's firing conditions and sinks.
type AlertingConfig struct {
	Enabled                bool    `koanf:"enabled"`
	MinEscalationScore     int     `koanf:"min_escalation_score"`
	MinCorroborationCount  int     `koanf:"min_corroboration_count"`
	WebhookURL             string  `koanf:"webhook_url"`
}

// NATSConfig configures the Watermill/NATS JetStream event bus used for
// cross-phase cycle stats and the alert sink.
type NATSConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	Stream  string `koanf:"stream"`
}

// SpoolConfig configures the BadgerDB offline spool persistence falls back
// to when a store write fails twice in a row (§7).
type SpoolConfig struct {
	Path          string        `koanf:"path"`
	FlushInterval time.Duration `koanf:"flush_interval"`
}

// LoggingConfig configures the zerolog-backed structured logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "json" | "console"
}

// MetricsConfig configures the Prometheus /metrics endpoint the monitor
// command exposes.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

const (
	// ConfigPathEnvVar names the environment variable that, if set,
	// overrides the default config-file search paths.
	ConfigPathEnvVar = "SENTINEL_CONFIG"
)

// DefaultConfigPaths are searched in order when ConfigPathEnvVar is unset.
var DefaultConfigPaths = []string{
	"./sentinel.yaml",
	"/etc/sentinel/sentinel.yaml",
}

// defaultConfig returns the built-in defaults layered under the config file
// and environment variables.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:          "./sentinel.duckdb",
			MemoryLimit:   "2GB",
			Threads:       4,
			QueryTimeout:  30 * time.Second,
			EnableSpatial: true,
			EnableJSON:    true,
			EnableICU:     true,
		},
		Sources: SourcesConfig{
			SeedFile:       "./sources.yaml",
			UserAgent:      "SentinelBot/1.0 (+https://github.com/fieldreport/sentinel)",
			RequestTimeout: 15 * time.Second,
		},
		LLM: LLMConfig{
			Provider:   "openai",
			Model:      "gpt-4o-mini",
			Timeout:    30 * time.Second,
			MaxRetries: 2,
		},
		Geocoding: GeocodingConfig{
			Provider:      "nominatim",
			Endpoint:      "https://nominatim.openstreetmap.org/search",
			Timeout:       10 * time.Second,
			GazetteerPath: "./gazetteer.json",
		},
		Runtime: RuntimeConfig{
			MaxConcurrentRequests: 8,
			BatchSize:             50,
			DedupWindow:           72 * time.Hour,
			RetryAttempts:         3,
			BaseRetryDelay:        2 * time.Second,
			RelevanceThreshold:    0.4,
			SimilarityThreshold:   0.7,
			Round2Enabled:         true,
			PerRunArticleCap:      500,
			CycleInterval:         30 * time.Minute,
		},
		Alerting: AlertingConfig{
			Enabled:               true,
			MinEscalationScore:    7,
			MinCorroborationCount: 2,
		},
		NATS: NATSConfig{
			Enabled: false,
			URL:     "nats://127.0.0.1:4222",
			Stream:  "SENTINEL_EVENTS",
		},
		Spool: SpoolConfig{
			Path:          "./sentinel_spool",
			FlushInterval: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// Validate checks required fields and value ranges, aggregating every
// violation found rather than stopping at the first (§6/§7 configuration
// errors must be reported exhaustively so an operator can fix them in one
// pass).
func (c *Config) Validate() error {
	var errs ConfigErrors

	if c.Database.Path == "" {
		errs.add("database.path", "must not be empty")
	}
	if c.Runtime.MaxConcurrentRequests <= 0 {
		errs.add("runtime.max_concurrent_requests", "must be positive")
	}
	if c.Runtime.BatchSize <= 0 {
		errs.add("runtime.batch_size", "must be positive")
	}
	if c.Runtime.DedupWindow <= 0 {
		errs.add("runtime.dedup_window", "must be positive")
	}
	if c.Runtime.RelevanceThreshold < 0 || c.Runtime.RelevanceThreshold > 1 {
		errs.add("runtime.relevance_threshold", "must be in [0, 1]")
	}
	if c.Runtime.SimilarityThreshold < 0 || c.Runtime.SimilarityThreshold > 1 {
		errs.add("runtime.similarity_threshold", "must be in [0, 1]")
	}
	if c.LLM.Provider == "openai" && c.LLM.APIKey == "" {
		errs.add("llm.api_key", "required when llm.provider is \"openai\"")
	}
	if c.Alerting.Enabled && c.Alerting.MinEscalationScore < 1 || c.Alerting.MinEscalationScore > 10 {
		errs.add("alerting.min_escalation_score", "must be in [1, 10]")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs.add("nats.url", "required when nats.enabled is true")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ConfigErrors aggregates every field-level validation failure from
// Validate so callers see the whole problem set at once.
type ConfigErrors []ConfigError

// ConfigError names the offending field and what is wrong with it.
type ConfigError struct {
	Field  string
	Reason string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (errs *ConfigErrors) add(field, reason string) {
	*errs = append(*errs, ConfigError{Field: field, Reason: reason})
}

func (errs ConfigErrors) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	msg := fmt.Sprintf("%d configuration errors:", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return msg
}
