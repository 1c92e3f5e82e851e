// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fieldreport/sentinel/internal/cache"
	"github.com/fieldreport/sentinel/internal/logging"
	"github.com/fieldreport/sentinel/internal/models"
	"github.com/fieldreport/sentinel/internal/store"
)

// Health tuning constants (§4.B). Implementers may retune these but must
// preserve the monotone "health never rises on failure" property.
const (
	successHealthGain = 0.1
	failureHealthLoss = 0.2
	minHealth         = 0.0
	maxHealth         = 1.0
)

// rateLimitWindow is the rolling window over which CheckRateLimit counts
// the fetches it has allowed for a source against its declared hourly cap.
const rateLimitWindow = time.Hour

// Filter restricts List to a subset of the active source catalogue.
type Filter struct {
	Kind     models.SourceKind // zero value = any kind
	Language string            // empty = any language
}

func (f Filter) matches(s *models.Source) bool {
	if f.Kind != "" && s.Kind != f.Kind {
		return false
	}
	if f.Language != "" && s.Language != f.Language {
		return false
	}
	return true
}

// Registry is a read-through cache over internal/store's sources table.
// It is the only component in this pipeline with concurrent mutation
// (spec.md §9), so every mutating operation is serialized through a single
// mutex rather than exposing raw fields to callers.
type Registry struct {
	db *store.DB

	mu      sync.RWMutex
	sources map[string]*models.Source // keyed by ID

	rateMu       sync.Mutex
	rateCounters map[string]*cache.SlidingWindowCounter // keyed by ID
}

// New creates a Registry backed by db. Call List once at startup to warm
// the cache before relying on RecordSuccess/RecordFailure/CheckRateLimit.
func New(db *store.DB) *Registry {
	return &Registry{
		db:           db,
		sources:      make(map[string]*models.Source),
		rateCounters: make(map[string]*cache.SlidingWindowCounter),
	}
}

// List returns the active sources matching filter, refreshing the
// in-memory cache from the store first.
func (r *Registry) List(ctx context.Context, filter Filter) ([]*models.Source, error) {
	all, err := r.db.ListActiveSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	r.mu.Lock()
	for _, s := range all {
		r.sources[s.ID] = s
	}
	r.mu.Unlock()

	var matched []*models.Source
	for _, s := range all {
		if filter.matches(s) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

// Upsert inserts or updates a source, keyed by its normalized name (§4.B).
func (r *Registry) Upsert(ctx context.Context, s *models.Source) error {
	if s.Name == "" {
		s.Name = models.NormalizeSourceName(s.DisplayName)
	}
	if err := r.db.UpsertSource(ctx, s); err != nil {
		return fmt.Errorf("upsert source %s: %w", s.Name, err)
	}
	r.mu.Lock()
	r.sources[s.ID] = s
	r.mu.Unlock()
	return nil
}

// RecordSuccess increments the source's daily access count, resets its
// consecutive-failure streak, raises health by successHealthGain (capped at
// 1.0), and updates LastSuccessfulFetch. articleCount is accepted for
// future weighting but does not currently scale the health gain.
func (r *Registry) RecordSuccess(ctx context.Context, sourceID string, articleCount int) error {
	s, err := r.fetchForUpdate(ctx, sourceID)
	if err != nil {
		return err
	}

	now := time.Now()
	s.DailyAccessCount++
	s.ConsecutiveFailures = 0
	s.Health = minFloat(maxHealth, s.Health+successHealthGain)
	s.LastSuccessfulFetch = &now

	logging.Debug().Str("source", s.Name).Int("articles", articleCount).Float64("health", s.Health).
		Msg("source registry: recorded success")

	return r.persist(ctx, s)
}

// RecordFailure increments the consecutive-failure streak, decays health by
// failureHealthLoss (floored at 0.0), and deactivates the source once
// ConsecutiveFailures reaches models.MaxConsecutiveFailures.
func (r *Registry) RecordFailure(ctx context.Context, sourceID string, errKind string) error {
	s, err := r.fetchForUpdate(ctx, sourceID)
	if err != nil {
		return err
	}

	s.ConsecutiveFailures++
	s.Health = maxFloat(minHealth, s.Health-failureHealthLoss)
	if s.ConsecutiveFailures >= models.MaxConsecutiveFailures {
		s.Active = false
		logging.Warn().Str("source", s.Name).Int("failures", s.ConsecutiveFailures).
			Msg("source registry: deactivating source after repeated failures")
	}

	logging.Debug().Str("source", s.Name).Str("error_kind", errKind).Float64("health", s.Health).
		Msg("source registry: recorded failure")

	return r.persist(ctx, s)
}

// CheckRateLimit reports whether sourceID may be fetched again this window.
// Each allowed call is counted in a rateLimitWindow-sized sliding counter,
// and a source is blocked once that count reaches its declared hourly cap.
// DailyAccessCount is not consulted.
func (r *Registry) CheckRateLimit(sourceID string) bool {
	r.mu.RLock()
	s, ok := r.sources[sourceID]
	r.mu.RUnlock()
	if !ok {
		// Unknown source: fail closed, the collector should not fetch it.
		return false
	}
	if s.RateLimitPerHour <= 0 {
		return true
	}

	counter := r.counterFor(sourceID, s.RateLimitPerHour)
	if counter.Count() >= int64(s.RateLimitPerHour) {
		return false
	}
	counter.IncrementOne()
	return true
}

func (r *Registry) counterFor(sourceID string, rateLimitPerHour int) *cache.SlidingWindowCounter {
	r.rateMu.Lock()
	defer r.rateMu.Unlock()

	c, ok := r.rateCounters[sourceID]
	if !ok {
		buckets := rateLimitPerHour
		if buckets > 60 {
			buckets = 60
		}
		if buckets < 1 {
			buckets = 1
		}
		c = cache.NewSlidingWindowCounter(rateLimitWindow, buckets)
		r.rateCounters[sourceID] = c
	}
	return c
}

// fetchForUpdate returns the cached source, falling back to the store if
// the cache hasn't been warmed by List yet.
func (r *Registry) fetchForUpdate(ctx context.Context, sourceID string) (*models.Source, error) {
	r.mu.RLock()
	s, ok := r.sources[sourceID]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	s, err := r.db.GetSourceByID(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("fetch source %s: %w", sourceID, err)
	}
	if s == nil {
		return nil, fmt.Errorf("source %s not found", sourceID)
	}
	return s, nil
}

func (r *Registry) persist(ctx context.Context, s *models.Source) error {
	if err := r.db.UpsertSource(ctx, s); err != nil {
		return fmt.Errorf("persist source %s: %w", s.Name, err)
	}
	r.mu.Lock()
	r.sources[s.ID] = s
	r.mu.Unlock()
	return nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
