// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldreport/sentinel/internal/logging"
	"github.com/fieldreport/sentinel/internal/supervisor"
	"github.com/fieldreport/sentinel/internal/supervisor/services"
)

func runMonitor(args []string) int {
	fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
	intervalMinutes := fs.Int("interval", 0, "minutes between cycles (0 = use configured default)")
	alertsOn := fs.Bool("alerts", false, "force alert evaluation on, overriding alerting.enabled")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	cfg, ok := loadConfig()
	if !ok {
		return exitConfig
	}
	if *intervalMinutes > 0 {
		cfg.Runtime.CycleInterval = time.Duration(*intervalMinutes) * time.Minute
	}
	if *alertsOn {
		cfg.Alerting.Enabled = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sentinel: monitor: %v\n", err)
		return exitRuntime
	}
	defer a.Close()

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "sentinel: monitor: build supervisor tree: %v\n", err)
		return exitRuntime
	}

	tree.AddCollectionService(a.orch)

	metricsServer := &http.Server{
		Addr:    cfg.Metrics.Addr,
		Handler: promhttp.Handler(),
	}
	tree.AddProcessingService(services.NewHTTPServerService(metricsServer, 5*time.Second))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().
		Dur("cycle_interval", cfg.Runtime.CycleInterval).
		Str("metrics_addr", cfg.Metrics.Addr).
		Msg("starting sentinel monitor")

	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("services failed to stop within timeout")
	}

	logging.Info().Msg("sentinel monitor stopped")
	return exitSuccess
}
