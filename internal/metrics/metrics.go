// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the ingestion pipeline: collection,
// deduplication, extraction, geocoding, clustering, and persistence.

var (
	// Collector metrics
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_articles_fetched_total",
			Help: "Total number of articles fetched, by source and round",
		},
		[]string{"source", "round"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_fetch_duration_seconds",
			Help:    "Duration of a single source fetch",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source", "kind"},
	)

	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_fetch_errors_total",
			Help: "Total fetch errors by source and error kind",
		},
		[]string{"source", "kind"},
	)

	SourceHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentinel_source_health",
			Help: "Current health score [0,1] of a source",
		},
		[]string{"source"},
	)

	SourceCircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentinel_source_circuit_state",
			Help: "Circuit breaker state per source: 0=closed, 1=half-open, 2=open",
		},
		[]string{"source"},
	)

	// Dedup metrics
	DedupHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_dedup_hits_total",
			Help: "Total articles rejected as duplicates",
		},
	)

	DedupChecksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_dedup_checks_total",
			Help: "Total dedup membership checks performed",
		},
	)

	// Extraction metrics
	EventsExtractedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_events_extracted_total",
			Help: "Total events extracted, by extraction method",
		},
		[]string{"method"}, // "llm" | "pattern"
	)

	ExtractionFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_extraction_fallbacks_total",
			Help: "Total times extraction fell back from LLM to pattern-based extraction",
		},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_extraction_duration_seconds",
			Help:    "Duration of a single article's event extraction",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Geocoding metrics
	GeocodeResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_geocode_resolutions_total",
			Help: "Total location resolutions, by resolution method",
		},
		[]string{"method"},
	)

	GeocodeUnresolvedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_geocode_unresolved_total",
			Help: "Total events left locationless after all resolution tiers",
		},
	)

	// Clustering metrics
	ClustersFormedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_clusters_formed_total",
			Help: "Total event groups formed in a cycle",
		},
	)

	ClusterSizeHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_cluster_size",
			Help:    "Distribution of event group member counts",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	// Persistence metrics
	PersistBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_persist_batch_duration_seconds",
			Help:    "Duration of a batched store write",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table"},
	)

	PersistErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_persist_errors_total",
			Help: "Total persistence errors by table",
		},
		[]string{"table"},
	)

	SpoolWritesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_spool_writes_total",
			Help: "Total batches diverted to the offline spool after repeated persistence failure",
		},
	)

	// Alerting metrics
	AlertsFiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_alerts_fired_total",
			Help: "Total alerts fired, by sink",
		},
		[]string{"sink"},
	)

	// Cycle metrics
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_cycle_duration_seconds",
			Help:    "Duration of one full ingestion cycle",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_cycles_total",
			Help: "Total ingestion cycles run, by outcome",
		},
		[]string{"outcome"}, // "success" | "partial" | "failed"
	)
)

// RecordFetch records the outcome of one source fetch attempt.
func RecordFetch(source, kind string, round int, duration time.Duration, err error) {
	FetchDuration.WithLabelValues(source, kind).Observe(duration.Seconds())
	if err != nil {
		FetchErrorsTotal.WithLabelValues(source, kind).Inc()
		return
	}
	ArticlesFetchedTotal.WithLabelValues(source, roundLabel(round)).Inc()
}

func roundLabel(round int) string {
	if round == 2 {
		return "targeted"
	}
	return "broad"
}

// RecordExtraction records one article's extraction outcome.
func RecordExtraction(method string, duration time.Duration, fellBack bool) {
	EventsExtractedTotal.WithLabelValues(method).Inc()
	ExtractionDuration.WithLabelValues(method).Observe(duration.Seconds())
	if fellBack {
		ExtractionFallbacksTotal.Inc()
	}
}

// RecordPersistBatch records a batched store write outcome.
func RecordPersistBatch(table string, duration time.Duration, err error) {
	PersistBatchDuration.WithLabelValues(table).Observe(duration.Seconds())
	if err != nil {
		PersistErrorsTotal.WithLabelValues(table).Inc()
	}
}
