// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
Package supervisor provides process supervision for sentinel using suture v4.

It implements a hierarchical supervisor tree that manages the lifecycle of
the application's long-running services, with Erlang/OTP-style automatic
restart, failure isolation, and graceful shutdown.

# Overview

The supervisor tree organizes services into three layers for failure isolation:

	RootSupervisor ("sentinel")
	├── collection-layer
	│   └── Orchestrator (the ingestion cycle runner, scheduled via its own ticker)
	├── processing-layer
	│   └── HTTPServerService (the Prometheus /metrics endpoint)
	└── messaging-layer
	    └── (alert queue publisher, when NATS-backed alerting is enabled)

This hierarchy ensures that a crash in the metrics endpoint doesn't affect a
collection cycle already in flight, and that an alert-publishing failure
doesn't prevent the next scheduled cycle from starting.

# Key Features

Automatic Restart:
  - Crashed services are automatically restarted
  - Exponential backoff prevents restart storms
  - Configurable failure thresholds and decay rates

Failure Isolation:
  - Services are organized into logical groups
  - Child supervisor failures don't propagate upward
  - Each layer has independent failure counting

Graceful Shutdown:
  - Context cancellation triggers orderly shutdown
  - Configurable shutdown timeout per service
  - UnstoppedServiceReport for debugging hangs

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    log.Fatal(err)
	}

	tree.AddCollectionService(orch)
	tree.AddProcessingService(services.NewHTTPServerService(metricsServer, 5*time.Second))

	errCh := tree.ServeBackground(ctx)
	if err := <-errCh; err != nil {
	    log.Printf("supervisor stopped: %v", err)
	}

# Configuration

The TreeConfig controls restart behavior:

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,             // Failures before backoff
	    FailureDecay:     30.0,            // Seconds for failures to decay
	    FailureBackoff:   15 * time.Second, // Backoff duration
	    ShutdownTimeout:  10 * time.Second, // Per-service shutdown timeout
	}

DefaultTreeConfig matches suture's production-ready defaults.

# Failure Handling

The supervisor uses a failure counter with exponential decay: each crash
increments it, the counter decays over FailureDecay seconds, and once it
exceeds FailureThreshold the supervisor waits FailureBackoff before the next
restart attempt.

# Service Interface

Every supervised value must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return nil: service stopped cleanly, will not be restarted
  - Return error: service crashed, will be restarted
  - Context canceled: shutdown requested, return promptly

# What Is Not Supervised

DuckDB is not supervised: it's an embedded library, not a long-running
service, and a crash there requires a process restart regardless. The
orchestrator's HTTP client to news sources is likewise unsupervised — its
retry policy (internal/collector) handles transient failures inline within
a cycle.

# Debugging Shutdown Issues

If services don't stop within the timeout:

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    log.Printf("service didn't stop: %v", svc)
	}

# See Also

  - internal/supervisor/services: service wrappers (e.g. HTTPServerService)
  - github.com/thejerf/suture/v4: underlying supervision library
*/
package supervisor
