// Package model contains the race-history entities shared between layers.
// Values are loaded once and never mutated afterwards.
package model

import "time"

// RaceResult is one driver's outcome in one race.
type RaceResult struct {
	RaceID        int
	DriverID      int
	Grid          int     // starting position, 0 for pit-lane starts
	PositionOrder int     // finishing order; non-finishers are ordered after every classified car
	Points        float64 // championship points awarded
}

// Driver is a driver identity record.
type Driver struct {
	DriverID int
	Forename string
	Surname  string
}

// FullName returns "Forename Surname".
func (d Driver) FullName() string {
	return d.Forename + " " + d.Surname
}

// Race is a single championship event.
type Race struct {
	RaceID    int
	Year      int
	CircuitID int
	Name      string
}

// Circuit is a venue.
type Circuit struct {
	CircuitID int
	Name      string
}

// Qualifying is one driver's qualifying classification for a race.
type Qualifying struct {
	QualifyID int
	RaceID    int
	DriverID  int
	Position  int
}

// FatalityRecord is one fatal incident taken from the scraped fatality table.
// Only records with a parseable accident date exist.
type FatalityRecord struct {
	Driver         string
	Event          string
	DateOfAccident string // raw cell text
	Date           time.Time
	Year           int
	Decade         int
	// Fields holds every cell of the source row keyed by its header.
	Fields map[string]string
}

// Row is one denormalized results⋈drivers⋈races row.
type Row struct {
	Result RaceResult
	Driver Driver
	Race   Race
}

// Year returns the season the race belongs to.
func (r Row) Year() int { return r.Race.Year }

// DriverName returns the driver's full name.
func (r Row) DriverName() string { return r.Driver.FullName() }

// CircuitID returns the race venue id.
func (r Row) CircuitID() int { return r.Race.CircuitID }

// RaceName returns the event name, e.g. "Monaco Grand Prix".
func (r Row) RaceName() string { return r.Race.Name }

// Season pairs a year with its display label. Ordering always uses Year.
type Season struct {
	Year  int    `json:"year"`
	Label string `json:"label"`
}

// TableReport describes how many rows of a source table were read, kept and
// skipped, with skip counts keyed by reason.
type TableReport struct {
	Table   string         `json:"table"`
	Read    int            `json:"read"`
	Loaded  int            `json:"loaded"`
	Skipped int            `json:"skipped"`
	Reasons map[string]int `json:"reasons,omitempty"`
}

// Skip records one skipped row under reason.
func (r *TableReport) Skip(reason string) {
	r.Skipped++
	if r.Reasons == nil {
		r.Reasons = make(map[string]int)
	}
	r.Reasons[reason]++
}
