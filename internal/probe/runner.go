package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/paddock/internal/domain/aggregate"
	"github.com/okian/paddock/pkg/logger"
)

// idempotentPaths are fetched Config.Repeat times and compared byte for byte.
var idempotentPaths = []string{
	"/aggregates/wins-per-season",
	"/aggregates/points-per-season",
	"/aggregates/outcomes",
	"/aggregates/poles-by-track",
	"/aggregates/poles-vs-wins",
	"/aggregates/pole-comparison",
	"/aggregates/monaco-finishes",
	"/aggregates/fatalities-per-decade",
	"/aggregates/fatalities-before-after",
	"/aggregates/career",
	"/seasons",
}

// Run executes every check against the service and returns the report.
// The error is non-nil only when the service could not be queried.
func Run(ctx context.Context, config *Config) (*Report, error) {
	lg := logger.Named("probe")
	report := &Report{Started: time.Now()}
	c := newClient(config)

	lg.Info(ctx, "starting paddock probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("repeat", config.Repeat),
		logger.Duration("timeout", config.Timeout))

	if err := checkServiceHealth(ctx, c); err != nil {
		return report, fmt.Errorf("service health check failed: %w", err)
	}

	snap, err := takeSnapshot(ctx, c)
	if err != nil {
		return report, fmt.Errorf("snapshot failed: %w", err)
	}

	VerifyOutcomePartition(snap, report)
	VerifyWinsTotal(snap, report)
	VerifyYearsUnique(snap, report)

	if span := snap.Seasons.Span; span != nil {
		if err := checkWindows(ctx, c, span.Min, span.Max, report); err != nil {
			return report, err
		}
	} else {
		lg.Warn(ctx, "focus driver has no seasons; range checks skipped")
	}

	if err := checkIdempotent(ctx, c, config.Repeat, report); err != nil {
		return report, err
	}

	report.Duration = time.Since(report.Started)
	displayReport(ctx, report)
	return report, nil
}

// checkServiceHealth verifies the service answers /healthz.
func checkServiceHealth(ctx context.Context, c *client) error {
	code, _, err := c.status(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("%s: status %d", CheckHealth, code)
	}
	return nil
}

// takeSnapshot reads the aggregates the cross checks compare, concurrently.
func takeSnapshot(ctx context.Context, c *client) (*Snapshot, error) {
	var s Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.getJSON(gctx, "/seasons", nil, &s.Seasons) })
	g.Go(func() error { return c.getJSON(gctx, "/aggregates/career", nil, &s.Career) })
	g.Go(func() error { return c.getJSON(gctx, "/aggregates/outcomes", nil, &s.Outcomes) })
	g.Go(func() error { return c.getJSON(gctx, "/aggregates/wins-per-season", nil, &s.Wins) })
	g.Go(func() error { return c.getJSON(gctx, "/aggregates/poles-vs-wins", nil, &s.PolesVsWins) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &s, nil
}

// checkWindows runs the range checks over sub-windows of the span and
// confirms an inverted range is rejected.
func checkWindows(ctx context.Context, c *client, from, to int, report *Report) error {
	windows := [][2]int{{from, to}, {from, from}, {to, to}}
	if mid := (from + to) / 2; mid > from {
		windows = append(windows, [2]int{from, mid}, [2]int{mid, to})
	}
	for _, w := range windows {
		var wins []aggregate.SeasonWins
		if err := c.getJSON(ctx, "/aggregates/wins-per-season", rangeQuery(w[0], w[1]), &wins); err != nil {
			return err
		}
		VerifyWinsInRange(wins, w[0], w[1], report)
	}

	report.Checks++
	code, errCode, err := c.status(ctx, "/aggregates/wins-per-season", rangeQuery(to+1, from))
	if err != nil {
		return err
	}
	if code != http.StatusBadRequest || errCode != "invalid_range" {
		report.fail(CheckInvalidRange, "from %d to %d answered %d %q", to+1, from, code, errCode)
	}
	return nil
}

// checkIdempotent fetches each path repeat times concurrently and compares
// the bodies.
func checkIdempotent(ctx context.Context, c *client, repeat int, report *Report) error {
	if repeat < 2 {
		repeat = 2
	}
	results := make([][][]byte, len(idempotentPaths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range idempotentPaths {
		results[i] = make([][]byte, repeat)
		for j := 0; j < repeat; j++ {
			g.Go(func() (err error) {
				results[i][j], err = c.raw(gctx, path, nil)
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, path := range idempotentPaths {
		VerifyIdempotent(path, results[i], report)
	}
	return nil
}

// displayReport logs the outcome of the run.
func displayReport(ctx context.Context, report *Report) {
	lg := logger.Named("probe")
	for _, f := range report.Failures {
		lg.Error(ctx, "check failed", logger.String("check", f.Check), logger.String("detail", f.Detail))
	}
	lg.Info(ctx, "probe finished",
		logger.Int("checks", report.Checks),
		logger.Int("failures", len(report.Failures)),
		logger.Duration("duration", report.Duration))
}
