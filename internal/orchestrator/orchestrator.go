// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldreport/sentinel/internal/alert"
	"github.com/fieldreport/sentinel/internal/cluster"
	"github.com/fieldreport/sentinel/internal/collector"
	"github.com/fieldreport/sentinel/internal/config"
	"github.com/fieldreport/sentinel/internal/dedup"
	"github.com/fieldreport/sentinel/internal/extractor"
	"github.com/fieldreport/sentinel/internal/geo"
	"github.com/fieldreport/sentinel/internal/logging"
	"github.com/fieldreport/sentinel/internal/metrics"
	"github.com/fieldreport/sentinel/internal/models"
	"github.com/fieldreport/sentinel/internal/registry"
	"github.com/fieldreport/sentinel/internal/store"
	"github.com/fieldreport/sentinel/internal/textproc"
)

// requireLocation matches §4.J step 4's default: events without a resolved
// location are dropped from persistence rather than stored ungeocoded.
const requireLocation = true

// Orchestrator runs the ten-step two-round ingestion cycle (component J),
// tying together every other component into one idempotent unit of work.
type Orchestrator struct {
	cfg         config.RuntimeConfig
	db          *store.DB
	spool       *store.Spool
	registry    *registry.Registry
	collector   *collector.Collector
	dedupIdx    *dedup.Index
	textProc    *textproc.Processor
	extractor   *extractor.Extractor
	geoResolver *geo.Resolver
	clusterer   *cluster.Clusterer
	alerter     *alert.Emitter
}

// New builds an Orchestrator from its already-constructed component
// dependencies. spool may be nil; when nil a batch that fails persistence
// twice is simply dropped with a logged error instead of spooled.
func New(
	cfg config.RuntimeConfig,
	db *store.DB,
	spool *store.Spool,
	reg *registry.Registry,
	col *collector.Collector,
	dedupIdx *dedup.Index,
	proc *textproc.Processor,
	ext *extractor.Extractor,
	geoResolver *geo.Resolver,
	clusterer *cluster.Clusterer,
	alerter *alert.Emitter,
) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		db:          db,
		spool:       spool,
		registry:    reg,
		collector:   col,
		dedupIdx:    dedupIdx,
		textProc:    proc,
		extractor:   ext,
		geoResolver: geoResolver,
		clusterer:   clusterer,
		alerter:     alerter,
	}
}

// Serve implements suture.Service, running RunCycle on cfg.CycleInterval
// until ctx is cancelled. One cycle's failure never stops the loop - it is
// folded into that cycle's CycleStats and logged; only a cancelled context
// ends Serve.
func (o *Orchestrator) Serve(ctx context.Context) error {
	ticker := time.NewTicker(o.cfg.CycleInterval)
	defer ticker.Stop()

	if _, err := o.RunCycle(ctx); err != nil {
		logging.Error().Err(err).Msg("orchestrator: initial cycle failed")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := o.RunCycle(ctx); err != nil {
				logging.Error().Err(err).Msg("orchestrator: cycle failed")
			}
		}
	}
}

func (o *Orchestrator) String() string { return "orchestrator" }

// RunCycle executes the full ten-step cycle once (§4.J) and returns a
// structured stats record. It only returns a non-nil error for conditions
// that prevent any further work this cycle (e.g. the active source list
// cannot be loaded); every other failure is absorbed into stats.Errors.
func (o *Orchestrator) RunCycle(ctx context.Context) (*CycleStats, error) {
	stats := &CycleStats{CycleID: uuid.New().String(), StartedAt: time.Now()}
	defer func() {
		stats.finalize()
		metrics.CycleDuration.Observe(stats.EndedAt.Sub(stats.StartedAt).Seconds())
		metrics.CyclesTotal.WithLabelValues(string(stats.Outcome)).Inc()
	}()

	sources, err := o.registry.List(ctx, registry.Filter{Kind: o.cfg.SourceKindFilter})
	if err != nil {
		return stats, fmt.Errorf("orchestrator: list active sources: %w", err)
	}

	// Step 1: round-1 broad queries.
	queries1 := round1Queries(o.cfg.ConflictZones)
	stats.Round1Queries = len(queries1)
	o.auditQueries(ctx, queries1, models.QueryKindBroad, models.RoundBroad)

	// Steps 2-5: collect, dedup/filter, extract/georesolve, cluster, store.
	round1Events := o.runRound(ctx, sources, queries1, models.RoundBroad, stats, true)
	stats.Round1Events = len(round1Events)

	// Step 7: round-2 targeted queries, gated on round2 being enabled and
	// round 1 having found anything to mine entities from.
	var round2Events []*models.Event
	if o.cfg.Round2Enabled && len(round1Events) > 0 {
		mined := mineEntities(round1Events)
		queries2 := round2Queries(mined, queries1)
		stats.Round2Queries = len(queries2)
		if len(queries2) > 0 {
			o.auditQueries(ctx, queries2, models.QueryKindTargeted, models.RoundTargeted)
			round2Events = o.runRound(ctx, sources, queries2, models.RoundTargeted, stats, true)
			stats.Round2Events = len(round2Events)
		}
	}

	// Step 9: merge/derive cross-round metrics.
	if stats.Round1Events > 0 {
		stats.CoverageBoost = float64(stats.Round2Events) / float64(stats.Round1Events)
	} else if stats.Round2Events > 0 {
		stats.CoverageBoost = float64(stats.Round2Events)
	}

	// Step 10: alerting, evaluated over everything persisted this cycle.
	if o.alerter != nil {
		all := append(append([]*models.Event{}, round1Events...), round2Events...)
		stats.AlertsFired = o.alerter.Evaluate(ctx, all)
	}

	logging.Info().
		Str("cycle_id", stats.CycleID).
		Int("round1_articles", stats.Round1Articles).
		Int("round1_events", stats.Round1Events).
		Int("round2_articles", stats.Round2Articles).
		Int("round2_events", stats.Round2Events).
		Int("groups", stats.EventGroupsFormed).
		Int("alerts", stats.AlertsFired).
		Str("outcome", string(stats.Outcome)).
		Msg("orchestrator: cycle complete")

	return stats, nil
}

// auditQueries records each query's execution via AppendQueryAudit (§4.J
// step 1/7). ResultCount/Success are filled in after collection; the audit
// call here is the pre-flight record required even if collection fails.
func (o *Orchestrator) auditQueries(ctx context.Context, queries []string, kind models.SearchQueryAuditKind, round models.DiscoveryRound) {
	for _, q := range queries {
		err := o.db.AppendQueryAudit(ctx, &models.SearchQueryAudit{
			Text:       q,
			Kind:       kind,
			Round:      round,
			Success:    true,
			ExecutedAt: time.Now(),
		})
		if err != nil {
			logging.Warn().Str("query", q).Err(err).Msg("orchestrator: query audit append failed")
		}
	}
}

// runRound executes steps 2-5 (or their step-8 repeat) for one round:
// collect, dedup + relevance filter, extract + georesolve, cluster, and
// persist. It returns the events it persisted so the caller can mine
// entities from them or feed them to the alerter.
func (o *Orchestrator) runRound(ctx context.Context, sources []*models.Source, queries []string, round models.DiscoveryRound, stats *CycleStats, storeResults bool) []*models.Event {
	articles, err := o.collector.Collect(ctx, sources, queries, round)
	if err != nil {
		stats.addError("round %d collect: %v", round, err)
		return nil
	}
	if round == models.RoundBroad {
		stats.Round1Articles = len(articles)
	} else {
		stats.Round2Articles = len(articles)
	}

	admitted := o.filterArticles(ctx, articles, stats)
	events := o.extractEvents(ctx, admitted, stats)
	if len(events) == 0 {
		return nil
	}

	groups := o.clusterer.Cluster(events)
	stats.EventGroupsFormed += len(groups)
	for _, g := range groups {
		metrics.ClusterSizeHistogram.Observe(float64(len(g.MemberEventIDs)))
	}
	metrics.ClustersFormedTotal.Add(float64(len(groups)))

	if !storeResults {
		return events
	}
	o.persist(ctx, events, groups, stats)
	return events
}

// filterArticles admits articles through the dedup index and drops those
// below the relevance threshold (§4.J step 3).
func (o *Orchestrator) filterArticles(ctx context.Context, articles []*models.Article, stats *CycleStats) []*models.Article {
	admitted := make([]*models.Article, 0, len(articles))
	for _, a := range articles {
		ok, err := o.dedupIdx.Admit(ctx, a)
		if err != nil {
			stats.addError("dedup admit %s: %v", a.URL, err)
			continue
		}
		if !ok {
			continue
		}

		if a.RelevanceScore == 0 {
			a.RelevanceScore = o.textProc.ScoreRelevance(a.Body)
		}
		if a.RelevanceScore < o.cfg.RelevanceThreshold {
			continue
		}

		if err := o.db.UpsertArticle(ctx, a); err != nil {
			stats.addError("upsert article %s: %v", a.URL, err)
			continue
		}
		admitted = append(admitted, a)
	}
	return admitted
}

// extractEvents runs extraction and georesolution per article (§4.J step
// 4). The extractor only ever sets Location to an unresolved hint; this is
// the one place the real Resolver.Resolve runs and replaces it.
func (o *Orchestrator) extractEvents(ctx context.Context, articles []*models.Article, stats *CycleStats) []*models.Event {
	var events []*models.Event
	for _, a := range articles {
		extracted, err := o.extractor.Extract(ctx, a)
		if err != nil {
			stats.addError("extract article %s: %v", a.ID, err)
			continue
		}
		for _, e := range extracted {
			o.resolveLocation(e, a)
			if requireLocation && !e.Location.Valid() {
				metrics.GeocodeUnresolvedTotal.Inc()
				continue
			}
			events = append(events, e)
		}
	}
	return events
}

// resolveLocation replaces the extractor's unresolved location hint with a
// real geo.Resolver result (§4.G), recording the resolution method metric.
func (o *Orchestrator) resolveLocation(e *models.Event, a *models.Article) {
	hint := ""
	if e.Location != nil {
		hint = firstNonEmpty(e.Location.Name, e.Location.Country, e.Location.Region)
	}
	if hint == "" {
		e.Location = nil
		return
	}

	resolved := o.geoResolver.Resolve(hint, a.Body)
	e.Location = resolved
	if resolved != nil && resolved.Valid() {
		metrics.GeocodeResolutionsTotal.WithLabelValues(string(resolved.Method)).Inc()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// persist writes events and their groups (§4.J step 5/8), retrying once and
// diverting to the offline spool on a second failure (§7).
func (o *Orchestrator) persist(ctx context.Context, events []*models.Event, groups []*models.EventGroup, stats *CycleStats) {
	start := time.Now()
	err := o.db.InsertEvents(ctx, events)
	if err != nil {
		err = o.db.InsertEvents(ctx, events)
	}
	metrics.RecordPersistBatch("events", time.Since(start), err)

	if err != nil {
		stats.addError("persist events: %v", err)
		o.spoolBatch(ctx, events, err, stats)
		return
	}

	if len(groups) == 0 {
		return
	}
	if err := o.db.InsertEventGroups(ctx, groups); err != nil {
		stats.addError("persist event groups: %v", err)
	}
}

// spoolBatch diverts a twice-failed batch to the offline spool (§7); if no
// spool is configured the batch is dropped with a logged error.
func (o *Orchestrator) spoolBatch(ctx context.Context, events []*models.Event, cause error, stats *CycleStats) {
	if o.spool == nil {
		logging.Error().Err(cause).Int("events", len(events)).Msg("orchestrator: persist failed twice, no spool configured, dropping batch")
		return
	}
	if _, err := o.spool.Write(ctx, stats.CycleID, events, cause); err != nil {
		stats.addError("spool write: %v", err)
		return
	}
	metrics.SpoolWritesTotal.Inc()
}
