// Package join builds denormalized views over the record tables.
//
// Joins are hash joins: the right-hand tables are indexed by key, then the
// results table is streamed through the index. Rows whose keys find no match
// are dropped.
package join

import (
	"strings"

	"github.com/okian/paddock/internal/domain/model"
)

// ResultsDriversRaces inner-joins results with drivers on driver id and then
// with races on race id. Output follows the order of results; a key matched by
// several right-hand rows yields one output row per match.
func ResultsDriversRaces(results []model.RaceResult, drivers []model.Driver, races []model.Race) []model.Row {
	driversByID := make(map[int][]model.Driver, len(drivers))
	for _, d := range drivers {
		driversByID[d.DriverID] = append(driversByID[d.DriverID], d)
	}
	racesByID := make(map[int][]model.Race, len(races))
	for _, r := range races {
		racesByID[r.RaceID] = append(racesByID[r.RaceID], r)
	}

	rows := make([]model.Row, 0, len(results))
	for _, res := range results {
		ds, ok := driversByID[res.DriverID]
		if !ok {
			continue
		}
		rs, ok := racesByID[res.RaceID]
		if !ok {
			continue
		}
		for _, d := range ds {
			for _, r := range rs {
				rows = append(rows, model.Row{Result: res, Driver: d, Race: r})
			}
		}
	}
	return rows
}

// ResultsDrivers inner-joins results with drivers on driver id only. Rows
// carry a zero Race, so results are kept even when their race is unknown.
func ResultsDrivers(results []model.RaceResult, drivers []model.Driver) []model.Row {
	driversByID := make(map[int][]model.Driver, len(drivers))
	for _, d := range drivers {
		driversByID[d.DriverID] = append(driversByID[d.DriverID], d)
	}
	rows := make([]model.Row, 0, len(results))
	for _, res := range results {
		for _, d := range driversByID[res.DriverID] {
			rows = append(rows, model.Row{Result: res, Driver: d})
		}
	}
	return rows
}

// CircuitIDsMatching returns the ids of every circuit whose name contains
// pattern, ignoring case. Ids are unique and keep table order.
func CircuitIDsMatching(circuits []model.Circuit, pattern string) []int {
	needle := strings.ToLower(pattern)
	seen := make(map[int]struct{})
	ids := make([]int, 0)
	for _, c := range circuits {
		if !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		if _, dup := seen[c.CircuitID]; dup {
			continue
		}
		seen[c.CircuitID] = struct{}{}
		ids = append(ids, c.CircuitID)
	}
	return ids
}
