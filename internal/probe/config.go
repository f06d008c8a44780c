package probe

import (
	"fmt"
	"time"

	"github.com/okian/paddock/internal/domain/aggregate"
	"github.com/okian/paddock/internal/domain/types"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL string        // Base URL of the service
	Timeout time.Duration // Per-request timeout
	Retries int           // Retries per request
	Repeat  int           // Times each endpoint is fetched for the idempotency check
	LogFile string        // Optional log file; empty logs to stdout only
	Verbose bool          // Debug logging
}

// Snapshot is one consistent read of the aggregates the checks need.
type Snapshot struct {
	Seasons     types.SeasonsInfo
	Career      aggregate.Summary
	Outcomes    []aggregate.OutcomeCount
	Wins        []aggregate.SeasonWins
	PolesVsWins []aggregate.YearPolesWins
}

// Failure describes one violated property.
type Failure struct {
	Check  string
	Detail string
}

// Report summarises a probe run.
type Report struct {
	Checks   int
	Failures []Failure
	Started  time.Time
	Duration time.Duration
}

// OK reports whether every check passed.
func (r *Report) OK() bool { return len(r.Failures) == 0 }

func (r *Report) fail(check, format string, args ...any) {
	r.Failures = append(r.Failures, Failure{Check: check, Detail: fmt.Sprintf(format, args...)})
}
