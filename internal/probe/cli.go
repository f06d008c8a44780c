package probe

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/paddock/pkg/logger"
)

// SetupLogging initialises the logger, writing to stdout and, when logFile is
// set, to that file as well. The returned closer releases the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer = io.NopCloser(nil)
	)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, f)
		closer = f
	}
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closer, nil
}

// ShowHelp prints usage information for the probe.
func ShowHelp() {
	os.Stdout.WriteString(`Paddock Smoke Probe
===================

Queries a running paddock service and checks that its aggregates agree
with each other.

Usage:
  paddock-probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -timeout duration
        Per-request timeout (default 10s)
  -retries int
        Retries per request (default 2)
  -repeat int
        Fetches per endpoint for the idempotency check (default 3)
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Checks:
  outcome_partition            outcome buckets sum to the career race count
  wins_in_range                wins-per-season rows stay inside from/to
  wins_total                   wins over the full span equal career wins
  poles_vs_wins_years_unique   poles-vs-wins has one row per year
  idempotent                   repeated requests return identical bodies
  invalid_range_rejected       from > to answers 400 invalid_range
`)
}
