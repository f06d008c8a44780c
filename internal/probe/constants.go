package probe

import "time"

// Defaults for the probe CLI.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 2
	DefaultRepeat  = 3
)

// Check names.
const (
	CheckHealth           = "health"
	CheckOutcomePartition = "outcome_partition"
	CheckWinsInRange      = "wins_in_range"
	CheckWinsTotal        = "wins_total"
	CheckYearsUnique      = "poles_vs_wins_years_unique"
	CheckIdempotent       = "idempotent"
	CheckInvalidRange     = "invalid_range_rejected"
)

const logFilePermission = 0o600
