// Package records holds the immutable in-memory record store.
//
// A Store is built once from already-parsed tables and never changes
// afterwards. Accessors hand out copies, so a Store can be shared by
// reference across goroutines without locking.
package records

import (
	"encoding/json"
	"slices"

	"github.com/okian/paddock/internal/domain/model"
)

// Tables groups the source tables a Store is built from.
type Tables struct {
	Races      []model.Race
	Results    []model.RaceResult
	Drivers    []model.Driver
	Qualifying []model.Qualifying
	Circuits   []model.Circuit
	Fatalities []model.FatalityRecord
	// Layout is the circuit boundary GeoJSON document, passed through as is.
	Layout json.RawMessage
	// Reports describes rows read and skipped per source table.
	Reports []model.TableReport
}

// Store is the read-only record store.
type Store struct {
	t Tables
}

// New copies tables into a new Store.
func New(t Tables) *Store {
	return &Store{t: Tables{
		Races:      slices.Clone(t.Races),
		Results:    slices.Clone(t.Results),
		Drivers:    slices.Clone(t.Drivers),
		Qualifying: slices.Clone(t.Qualifying),
		Circuits:   slices.Clone(t.Circuits),
		Fatalities: cloneFatalities(t.Fatalities),
		Layout:     slices.Clone(t.Layout),
		Reports:    cloneReports(t.Reports),
	}}
}

// Races returns a copy of the races table.
func (s *Store) Races() []model.Race { return slices.Clone(s.t.Races) }

// Results returns a copy of the results table.
func (s *Store) Results() []model.RaceResult { return slices.Clone(s.t.Results) }

// Drivers returns a copy of the drivers table.
func (s *Store) Drivers() []model.Driver { return slices.Clone(s.t.Drivers) }

// Qualifying returns a copy of the qualifying table.
func (s *Store) Qualifying() []model.Qualifying { return slices.Clone(s.t.Qualifying) }

// Circuits returns a copy of the circuits table.
func (s *Store) Circuits() []model.Circuit { return slices.Clone(s.t.Circuits) }

// Fatalities returns a copy of the fatality table.
func (s *Store) Fatalities() []model.FatalityRecord { return cloneFatalities(s.t.Fatalities) }

// Layout returns a copy of the circuit layout document. It is nil when no
// layout was loaded.
func (s *Store) Layout() json.RawMessage { return slices.Clone(s.t.Layout) }

// Reports returns the load diagnostics of every table.
func (s *Store) Reports() []model.TableReport { return cloneReports(s.t.Reports) }

// Counts returns the number of rows held per table.
func (s *Store) Counts() map[string]int {
	return map[string]int{
		"races":      len(s.t.Races),
		"results":    len(s.t.Results),
		"drivers":    len(s.t.Drivers),
		"qualifying": len(s.t.Qualifying),
		"circuits":   len(s.t.Circuits),
		"fatalities": len(s.t.Fatalities),
	}
}

func cloneFatalities(in []model.FatalityRecord) []model.FatalityRecord {
	if in == nil {
		return nil
	}
	out := make([]model.FatalityRecord, len(in))
	for i, f := range in {
		out[i] = f
		if f.Fields != nil {
			out[i].Fields = make(map[string]string, len(f.Fields))
			for k, v := range f.Fields {
				out[i].Fields[k] = v
			}
		}
	}
	return out
}

func cloneReports(in []model.TableReport) []model.TableReport {
	if in == nil {
		return nil
	}
	out := make([]model.TableReport, len(in))
	for i, r := range in {
		out[i] = r
		if r.Reasons != nil {
			out[i].Reasons = make(map[string]int, len(r.Reasons))
			for k, v := range r.Reasons {
				out[i].Reasons[k] = v
			}
		}
	}
	return out
}
