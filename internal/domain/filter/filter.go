// Package filter applies parameter-driven predicates to joined rows.
//
// Every filter returns a new slice and leaves its input untouched. Filters
// never fail on empty results; an empty slice is a valid answer.
package filter

import (
	"fmt"

	"github.com/okian/paddock/internal/domain/model"
)

// YearRange is an inclusive [Min, Max] season window.
type YearRange struct {
	Min int `json:"from"`
	Max int `json:"to"`
}

// Validate rejects ranges whose bounds cross.
func (r YearRange) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("%w: from %d is after to %d", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// PositionPredicate selects finishing or grid positions.
type PositionPredicate func(position int) bool

// Position predicates. Win, Podium, TopTen and Other never overlap.
var (
	Win    PositionPredicate = func(p int) bool { return p == 1 }
	Podium PositionPredicate = func(p int) bool { return p == 2 || p == 3 }
	TopTen PositionPredicate = func(p int) bool { return p >= 4 && p <= 10 }
	Other  PositionPredicate = func(p int) bool { return p > 10 }
	// Pole matches a first-place starting grid slot.
	Pole PositionPredicate = func(p int) bool { return p == 1 }
)

// ByYearRange keeps rows whose season lies in rng. Crossed bounds are
// rejected with ErrInvalidRange instead of being reordered.
func ByYearRange(rows []model.Row, rng YearRange) ([]model.Row, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return where(rows, func(r model.Row) bool { return rng.Contains(r.Year()) }), nil
}

// ByPosition keeps rows whose finishing order satisfies pred.
func ByPosition(rows []model.Row, pred PositionPredicate) []model.Row {
	return where(rows, func(r model.Row) bool { return pred(r.Result.PositionOrder) })
}

// ByGrid keeps rows whose starting grid slot satisfies pred.
func ByGrid(rows []model.Row, pred PositionPredicate) []model.Row {
	return where(rows, func(r model.Row) bool { return pred(r.Result.Grid) })
}

// ByDriverNames keeps rows whose driver full name is in names. Names matching
// no driver are ignored.
func ByDriverNames(rows []model.Row, names []string) []model.Row {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return where(rows, func(r model.Row) bool {
		_, ok := set[r.DriverName()]
		return ok
	})
}

// ByCircuitIDs keeps rows raced at one of ids.
func ByCircuitIDs(rows []model.Row, ids []int) []model.Row {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return where(rows, func(r model.Row) bool {
		_, ok := set[r.CircuitID()]
		return ok
	})
}

func where(rows []model.Row, keep func(model.Row) bool) []model.Row {
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
