// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
Package services provides suture.Service wrappers that adapt components with
their own lifecycle idiom (ListenAndServe/Shutdown, Serve, Start/Stop) onto
suture's context-aware Serve pattern, for registration with a
internal/supervisor.SupervisorTree.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps anything satisfying ListenAndServe() error / Shutdown(ctx) error,
    most directly *http.Server.
  - Runs ListenAndServe in a goroutine, waits for context cancellation, then
    calls Shutdown with a bounded timeout.
  - Used by cmd/sentinel's monitor command to supervise the Prometheus
    /metrics endpoint alongside the ingestion orchestrator.

# Usage Example

	tree, _ := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())

	metricsServer := &http.Server{Addr: ":9090", Handler: promhttp.Handler()}
	tree.AddProcessingService(services.NewHTTPServerService(metricsServer, 5*time.Second))

	tree.ServeBackground(ctx)

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

Services implement fmt.Stringer for logging:

	func (s *HTTPServerService) String() string {
	    return "http-server"
	}

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: underlying supervision library
*/
package services
