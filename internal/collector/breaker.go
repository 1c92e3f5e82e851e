// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package collector

import (
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/fieldreport/sentinel/internal/logging"
)

// breakerRegistry hands out one gobreaker.CircuitBreaker per source,
// created lazily. Grounded on internal/sync/circuit_breaker.go's
// CircuitBreakerClient, generalized from a single wrapped client to a
// per-source keyed pool since the collector dials many independent
// sources rather than one API.
type breakerRegistry struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

func newBreakerRegistry() *breakerRegistry {
	return &breakerRegistry{breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte])}
}

func (b *breakerRegistry) forSource(sourceID, sourceName string) *gobreaker.CircuitBreaker[[]byte] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.breakers[sourceID]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        sourceName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("source", name).Str("from", from.String()).Str("to", to.String()).
				Msg("collector: circuit breaker state transition")
		},
	})
	b.breakers[sourceID] = cb
	return cb
}
