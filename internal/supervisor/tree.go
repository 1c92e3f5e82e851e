// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	// Default: 5
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay in seconds.
	// Default: 30
	FailureDecay float64

	// FailureBackoff is the duration to wait when threshold is exceeded.
	// Default: 15s
	FailureBackoff time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns production-ready defaults.
// These values match suture's built-in defaults per pkg.go.dev documentation.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// SupervisorTree manages the hierarchical supervisor structure for Sentinel.
//
// The tree is organized into three layers:
//   - collection: the orchestrator's cycle runner (the whole cycle, from
//     collection through persistence, runs inside it)
//   - processing: the metrics HTTP server
//   - messaging: empty unless a caller adds a service with AddMessagingService
//
// This structure provides failure isolation - a crash in the messaging layer
// won't affect a cycle already in flight in the collection layer.
type SupervisorTree struct {
	root       *suture.Supervisor
	collection *suture.Supervisor
	processing *suture.Supervisor
	messaging  *suture.Supervisor
	logger     *slog.Logger
	config     TreeConfig
}

// NewSupervisorTree creates a new supervisor tree with the given configuration.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	// Apply defaults for zero values
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5.0
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = 30.0
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = 15 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	// Create event hook using sutureslog.
	// IMPORTANT: The correct API is (&Handler{Logger: logger}).MustHook()
	// NOT sutureslog.EventHook(logger) which does not exist.
	// MustHook has a pointer receiver, so we need to take the address.
	handler := &sutureslog.Handler{Logger: logger}
	eventHook := handler.MustHook()

	rootSpec := suture.Spec{
		EventHook:        eventHook,
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	// Child supervisors use the same failure parameters.
	// They will inherit the EventHook when added to the root.
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	root := suture.New("sentinel", rootSpec)
	collection := suture.New("collection-layer", childSpec)
	processing := suture.New("processing-layer", childSpec)
	messaging := suture.New("messaging-layer", childSpec)

	// Build tree hierarchy
	root.Add(collection)
	root.Add(processing)
	root.Add(messaging)

	return &SupervisorTree{
		root:       root,
		collection: collection,
		processing: processing,
		messaging:  messaging,
		logger:     logger,
		config:     config,
	}, nil
}

// Root returns the root supervisor for direct access if needed.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// AddCollectionService adds a service to the collection layer supervisor.
// Use this for the orchestrator's cycle runner and scheduler.
func (t *SupervisorTree) AddCollectionService(svc suture.Service) suture.ServiceToken {
	return t.collection.Add(svc)
}

// AddProcessingService adds a service to the processing layer supervisor.
// Use this for long-running extraction/clustering workers, if any run
// independently of the cycle itself.
func (t *SupervisorTree) AddProcessingService(svc suture.Service) suture.ServiceToken {
	return t.processing.Add(svc)
}

// AddMessagingService adds a service to the messaging layer supervisor.
// Use this for the alert bus publisher and NATS bridge (if enabled).
func (t *SupervisorTree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	return t.messaging.Add(svc)
}

// RemoveMessagingService removes a service from the messaging layer supervisor.
// Use this to remove services that were added with AddMessagingService.
func (t *SupervisorTree) RemoveMessagingService(token suture.ServiceToken) error {
	return t.messaging.Remove(token)
}

// Serve starts the supervisor tree and blocks until the context is canceled.
// This is the main entry point for running the supervised application.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground starts the supervisor tree in a background goroutine.
// Returns a channel that receives the error (or nil) when the supervisor stops.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport returns information about services that failed to stop
// within the configured shutdown timeout. Useful for debugging shutdown issues.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}

// Remove removes a service from the tree by its token.
// The service will be stopped and removed.
func (t *SupervisorTree) Remove(token suture.ServiceToken) error {
	return t.root.Remove(token)
}

// RemoveAndWait removes a service and waits for it to fully stop.
// Use this when you need to ensure a service has completely terminated
// before proceeding (e.g., during configuration reload).
func (t *SupervisorTree) RemoveAndWait(token suture.ServiceToken, timeout time.Duration) error {
	return t.root.RemoveAndWait(token, timeout)
}
