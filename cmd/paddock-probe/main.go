package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/paddock/internal/probe"
)

const defaultRunTimeout = 2 * time.Minute

func main() {
	os.Exit(run())
}

// run returns the process exit code: 0 when every check passed, 1 on a
// failed check, 2 when the probe could not run.
func run() int {
	var (
		baseURL = flag.String("url", probe.DefaultBaseURL, "Base URL of the service")
		timeout = flag.Duration("timeout", probe.DefaultTimeout, "Per-request timeout")
		retries = flag.Int("retries", probe.DefaultRetries, "Retries per request")
		repeat  = flag.Int("repeat", probe.DefaultRepeat, "Fetches per endpoint for the idempotency check")
		logFile = flag.String("log", "", "Also write logs to this file")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return 0
	}

	closer, err := probe.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 2
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	report, err := probe.Run(ctx, &probe.Config{
		BaseURL: *baseURL,
		Timeout: *timeout,
		Retries: *retries,
		Repeat:  *repeat,
		LogFile: *logFile,
		Verbose: *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		return 2
	}
	if !report.OK() {
		return 1
	}
	return 0
}
