// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package collector

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/fieldreport/sentinel/internal/errkind"
	"github.com/fieldreport/sentinel/internal/logging"
	"github.com/fieldreport/sentinel/internal/models"
	"github.com/fieldreport/sentinel/internal/registry"
)

// searchWindow is the "last 24 hours" default lookback for the Search
// and News API strategies (§4.C), overridable per Collector.
const searchWindow = 24 * time.Hour

// interBatchDelay is the minimum spacing between outbound requests
// across the whole collection run, preventing burstiness (§4.C).
const interBatchDelay = 200 * time.Millisecond

// sourceFetcher records the outcome of one source's fetch for the
// registry health bookkeeping step that follows fan-out.
type sourceFetcher struct {
	source   *models.Source
	articles []*models.Article
	err      error
}

// Collector implements component C: given queries and the active source
// list, fans out through the three strategies and returns a bounded
// stream of raw Article candidates.
type Collector struct {
	registry              *registry.Registry
	client                *http.Client
	maxConcurrentRequests int
	retryAttempts         int
	baseRetryDelay        time.Duration

	breakers *breakerRegistry

	mu          sync.Mutex
	sourceLocks map[string]*sync.Mutex
	limiters    map[string]*rate.Limiter

	dispatchLimiter *rate.Limiter
}

// New builds a Collector. maxConcurrentRequests bounds global fan-out;
// retryAttempts/baseRetryDelay parameterize fetchURL's backoff.
func New(reg *registry.Registry, client *http.Client, maxConcurrentRequests, retryAttempts int, baseRetryDelay time.Duration) *Collector {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxConcurrentRequests <= 0 {
		maxConcurrentRequests = 8
	}
	return &Collector{
		registry:              reg,
		client:                client,
		maxConcurrentRequests: maxConcurrentRequests,
		retryAttempts:         retryAttempts,
		baseRetryDelay:        baseRetryDelay,
		breakers:              newBreakerRegistry(),
		sourceLocks:           make(map[string]*sync.Mutex),
		limiters:              make(map[string]*rate.Limiter),
		dispatchLimiter:       rate.NewLimiter(rate.Every(interBatchDelay), 1),
	}
}

// Collect fans out through every active source's strategy for each
// query (RSS sources ignore queries and fetch their feed once), honoring
// per-source concurrency 1, circuit breakers, and rate limits. A failed
// source contributes zero articles and records a registry failure; the
// rest of the pipeline continues (§4.C failure semantics).
func (c *Collector) Collect(ctx context.Context, sources []*models.Source, queries []string, round models.DiscoveryRound) ([]*models.Article, error) {
	type job struct {
		source *models.Source
		query  string
	}

	var jobs []job
	for _, s := range sources {
		if s.Kind == models.SourceKindRSS {
			jobs = append(jobs, job{source: s})
			continue
		}
		for _, q := range queries {
			jobs = append(jobs, job{source: s, query: q})
		}
	}

	results := make([]sourceFetcher, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrentRequests)

	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			articles, err := c.fetchOne(gctx, j.source, j.query, round)
			results[i] = sourceFetcher{source: j.source, articles: articles, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return c.reduce(ctx, results), nil
}

// fetchOne runs one (source, query) job end-to-end: rate limiting,
// per-source serialization, circuit breaking, retrying fetch, and
// strategy-specific parsing.
func (c *Collector) fetchOne(ctx context.Context, source *models.Source, query string, round models.DiscoveryRound) ([]*models.Article, error) {
	lock := c.lockFor(source.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := c.dispatchLimiter.Wait(ctx); err != nil {
		return nil, errkind.New(errkind.Cancellation, "collector", err)
	}
	if err := c.limiterFor(source).Wait(ctx); err != nil {
		return nil, errkind.New(errkind.Cancellation, "collector", err)
	}

	requestURL := c.buildURL(source, query)
	breaker := c.breakers.forSource(source.ID, source.Name)

	body, err := breaker.Execute(func() ([]byte, error) {
		return fetchURL(ctx, c.client, requestURL, c.retryAttempts, c.baseRetryDelay)
	})
	if err != nil {
		return nil, err
	}

	switch source.Kind {
	case models.SourceKindRSS:
		return parseRSSFeed(body, source, round)
	default:
		return parseAPIResponse(body, source, query, round)
	}
}

func (c *Collector) buildURL(source *models.Source, query string) string {
	switch source.Kind {
	case models.SourceKindNewsAPI:
		return buildNewsAPIURL(source.EndpointURL, query, searchWindow)
	case models.SourceKindRSS:
		return source.EndpointURL
	default:
		return buildSearchAPIURL(source.EndpointURL, query, searchWindow)
	}
}

// reduce folds per-job results into a flat article slice and updates
// registry health bookkeeping once per source.
func (c *Collector) reduce(ctx context.Context, results []sourceFetcher) []*models.Article {
	perSource := make(map[string][]*models.Article)
	perSourceErr := make(map[string]error)
	bySourceMeta := make(map[string]*models.Source)

	for _, r := range results {
		bySourceMeta[r.source.ID] = r.source
		if r.err != nil {
			perSourceErr[r.source.ID] = r.err
			continue
		}
		perSource[r.source.ID] = append(perSource[r.source.ID], r.articles...)
	}

	var all []*models.Article
	for id, source := range bySourceMeta {
		articles := perSource[id]
		if err := perSourceErr[id]; err != nil && len(articles) == 0 {
			logging.Warn().Str("source", source.Name).Err(err).Msg("collector: source fetch failed")
			if regErr := c.registry.RecordFailure(ctx, id, errkind.KindOf(err).String()); regErr != nil {
				logging.Error().Err(regErr).Str("source", source.Name).Msg("collector: failed to record source failure")
			}
			continue
		}
		if regErr := c.registry.RecordSuccess(ctx, id, len(articles)); regErr != nil {
			logging.Error().Err(regErr).Str("source", source.Name).Msg("collector: failed to record source success")
		}
		all = append(all, articles...)
	}
	return all
}

func (c *Collector) lockFor(sourceID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.sourceLocks[sourceID]
	if !ok {
		l = &sync.Mutex{}
		c.sourceLocks[sourceID] = l
	}
	return l
}

// limiterFor returns a token-bucket rate limiter paced to the source's
// declared hourly cap, independent of the Source Registry's own hourly
// cap accounting (SPEC_FULL.md addition).
func (c *Collector) limiterFor(source *models.Source) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[source.ID]
	if !ok {
		perHour := source.RateLimitPerHour
		if perHour <= 0 {
			perHour = 60
		}
		l = rate.NewLimiter(rate.Limit(float64(perHour)/3600.0), 1)
		c.limiters[source.ID] = l
	}
	return l
}
