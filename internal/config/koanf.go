// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Load assembles Config from defaults, an optional config file, and
// environment variables (highest priority), in that order. A .env file in
// the working directory, if present, is applied to the process environment
// before the environment layer is read.
func Load() (*Config, error) {
	if envPath := os.Getenv("SENTINEL_DOTENV"); envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("SENTINEL_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths, honoring
// ConfigPathEnvVar first.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths that may arrive as comma-separated
// strings from the environment but must be unmarshaled as slices.
var sliceConfigPaths = []string{
	"runtime.conflict_zones",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps SENTINEL_-prefixed environment variable names to
// koanf config paths, e.g. SENTINEL_LLM_API_KEY -> llm.api_key. Unmapped
// keys are dropped so unrelated environment variables never leak in.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "SENTINEL_"))

	envMappings := map[string]string{
		"database_path":           "database.path",
		"database_memory_limit":   "database.memory_limit",
		"database_threads":        "database.threads",
		"database_query_timeout":  "database.query_timeout",
		"database_enable_spatial": "database.enable_spatial",
		"database_enable_json":    "database.enable_json",
		"database_enable_icu":     "database.enable_icu",

		"search_api_key":      "sources.search_api_key",
		"search_api_endpoint": "sources.search_api_endpoint",
		"news_api_key":        "sources.news_api_key",
		"news_api_endpoint":   "sources.news_api_endpoint",
		"sources_seed_file":   "sources.seed_file",
		"sources_user_agent":  "sources.user_agent",
		"request_timeout":     "sources.request_timeout",

		"llm_provider":    "llm.provider",
		"llm_api_key":     "llm.api_key",
		"llm_model":       "llm.model",
		"llm_timeout":     "llm.timeout",
		"llm_max_retries": "llm.max_retries",

		"geocoding_provider":       "geocoding.provider",
		"geocoding_endpoint":       "geocoding.endpoint",
		"geocoding_api_key":        "geocoding.api_key",
		"geocoding_timeout":        "geocoding.timeout",
		"geocoding_gazetteer_path": "geocoding.gazetteer_path",

		"max_concurrent_requests": "runtime.max_concurrent_requests",
		"batch_size":              "runtime.batch_size",
		"dedup_window":            "runtime.dedup_window",
		"retry_attempts":          "runtime.retry_attempts",
		"base_retry_delay":        "runtime.base_retry_delay",
		"relevance_threshold":     "runtime.relevance_threshold",
		"similarity_threshold":    "runtime.similarity_threshold",
		"round2_enabled":          "runtime.round2_enabled",
		"per_run_article_cap":     "runtime.per_run_article_cap",
		"cycle_interval":          "runtime.cycle_interval",
		"conflict_zones":          "runtime.conflict_zones",

		"alerting_enabled":                  "alerting.enabled",
		"alerting_min_escalation_score":     "alerting.min_escalation_score",
		"alerting_min_corroboration_count":  "alerting.min_corroboration_count",
		"alerting_webhook_url":              "alerting.webhook_url",

		"nats_enabled": "nats.enabled",
		"nats_url":     "nats.url",
		"nats_stream":  "nats.stream",

		"spool_path":           "spool.path",
		"spool_flush_interval": "spool.flush_interval",

		"log_level":  "logging.level",
		"log_format": "logging.format",

		"metrics_addr": "metrics.addr",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
