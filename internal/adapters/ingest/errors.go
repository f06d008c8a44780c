package ingest

import "errors"

// Sentinel error kinds for ingestion. Callers match them with errors.Is.
var (
	ErrMissingColumn = errors.New("required column missing")
	ErrReadTable     = errors.New("read table failed")
	ErrTableNotFound = errors.New("html table not found")
	ErrFetch         = errors.New("fetch failed")
	ErrInvalidLayout = errors.New("layout is not valid json")
	ErrNoFatalities  = errors.New("no fatality source configured")
)

// Skip reasons recorded in table reports and metrics.
const (
	ReasonColumnCount = "column_count"
	ReasonBadNumber   = "bad_number"
	ReasonMalformed   = "malformed"
	ReasonBadDate     = "bad_date"
)
