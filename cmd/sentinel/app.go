// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fieldreport/sentinel/internal/alert"
	"github.com/fieldreport/sentinel/internal/cluster"
	"github.com/fieldreport/sentinel/internal/collector"
	"github.com/fieldreport/sentinel/internal/config"
	"github.com/fieldreport/sentinel/internal/dedup"
	"github.com/fieldreport/sentinel/internal/extractor"
	"github.com/fieldreport/sentinel/internal/geo"
	"github.com/fieldreport/sentinel/internal/logging"
	"github.com/fieldreport/sentinel/internal/orchestrator"
	"github.com/fieldreport/sentinel/internal/registry"
	"github.com/fieldreport/sentinel/internal/store"
	"github.com/fieldreport/sentinel/internal/textproc"
)

// app bundles every constructed component, wired the way
// internal/orchestrator.New expects, plus whatever a CLI command needs to
// reach directly (db for read-only queries, registry for source listing).
type app struct {
	cfg      *config.Config
	db       *store.DB
	spool    *store.Spool
	registry *registry.Registry
	orch     *orchestrator.Orchestrator
}

// buildApp constructs the full component graph from cfg: store, registry,
// collector, dedup index, text processor, extractor, geo resolver,
// clusterer, and alert emitter, then wires them into an Orchestrator. This
// is the CLI-side equivalent of cmd/server's sequential main() setup,
// narrowed to sentinel's component set.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := store.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if cfg.Sources.SeedFile != "" {
		if _, statErr := os.Stat(cfg.Sources.SeedFile); statErr == nil {
			if _, seedErr := db.SeedSourcesFromFile(ctx, cfg.Sources.SeedFile); seedErr != nil {
				db.Close()
				return nil, fmt.Errorf("seed sources: %w", seedErr)
			}
		} else {
			logging.Warn().Str("file", cfg.Sources.SeedFile).Msg("sources seed file not found, skipping")
		}
	}

	var spool *store.Spool
	if cfg.Spool.Path != "" {
		spool, err = store.OpenSpool(cfg.Spool.Path)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("open spool: %w", err)
		}
	}

	reg := registry.New(db)

	httpClient := &http.Client{Timeout: cfg.Sources.RequestTimeout}
	col := collector.New(reg, httpClient, cfg.Runtime.MaxConcurrentRequests, cfg.Runtime.RetryAttempts, cfg.Runtime.BaseRetryDelay)

	dedupIdx := dedup.New(db)
	proc := textproc.New()

	ext, err := extractor.New(ctx, cfg.LLM)
	if err != nil {
		closeAll(db, spool)
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	var providers []geo.GeocodeProvider
	if p := geo.NewNominatimProvider(cfg.Geocoding); p != nil {
		providers = append(providers, p)
	}
	geoResolver, err := geo.New(cfg.Geocoding.GazetteerPath, providers...)
	if err != nil {
		closeAll(db, spool)
		return nil, fmt.Errorf("load gazetteer: %w", err)
	}

	clusterer := cluster.New(cellSizeKm)

	sinks := []alert.Sink{alert.NewLogSink()}
	if cfg.Alerting.WebhookURL != "" {
		sinks = append(sinks, alert.NewWebhookSink(cfg.Alerting.WebhookURL, &http.Client{Timeout: 10 * time.Second}))
	}
	if cfg.NATS.Enabled {
		queueSink, qerr := alert.NewQueueSink(cfg.NATS)
		if qerr != nil {
			logging.Warn().Err(qerr).Msg("alert queue sink unavailable, continuing without it")
		} else {
			sinks = append(sinks, queueSink)
		}
	}
	alerter := alert.New(cfg.Alerting, sinks...)

	orch := orchestrator.New(cfg.Runtime, db, spool, reg, col, dedupIdx, proc, ext, geoResolver, clusterer, alerter)

	return &app{cfg: cfg, db: db, spool: spool, registry: reg, orch: orch}, nil
}

// cellSizeKm is the clustering grid cell size (§4.H): events within one
// cell of each other are candidates for single-link clustering.
const cellSizeKm = 50.0

func closeAll(db *store.DB, spool *store.Spool) {
	_ = db.Close()
	if spool != nil {
		_ = spool.Close()
	}
}

func (a *app) Close() {
	if a.spool != nil {
		if err := a.spool.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing spool")
		}
	}
	if err := a.db.Close(); err != nil {
		logging.Error().Err(err).Msg("error closing store")
	}
}
