// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package main

import (
	"fmt"
	"os"

	"github.com/fieldreport/sentinel/internal/config"
	"github.com/fieldreport/sentinel/internal/logging"
)

// Exit codes (spec §6): 0 success, 1 configuration error, 2 unrecoverable
// runtime error. Other values are reserved.
const (
	exitSuccess = 0
	exitConfig  = 1
	exitRuntime = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return exitConfig
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "ingest":
		return runIngest(rest)
	case "monitor":
		return runMonitor(rest)
	case "events":
		return runEvents(rest)
	case "sources":
		return runSources(rest)
	case "-h", "--help", "help":
		printUsage()
		return exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "sentinel: unknown command %q\n\n", cmd)
		printUsage()
		return exitConfig
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: sentinel <command> [flags]

Commands:
  ingest   Run one ingestion cycle and exit
  monitor  Run ingestion on a recurring schedule until terminated
  events   Query stored events
  sources  List catalogued sources and their health

Run "sentinel <command> -h" for flags on a specific command.`)
}

// loadConfig loads and validates configuration, initializing the logger as
// soon as logging settings are known. A failure here is always a
// configuration error (exit 1): nothing downstream has been touched yet.
func loadConfig() (*config.Config, bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sentinel: configuration error: %v\n", err)
		return nil, false
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	return cfg, true
}
