// Package types contains request and response shapes shared by the service
// and the HTTP layer.
package types

import (
	"github.com/okian/paddock/internal/domain/filter"
	"github.com/okian/paddock/internal/domain/model"
)

// Bounds is a requested year range; nil ends fall back to a default.
type Bounds struct {
	From *int
	To   *int
}

// Resolve fills missing ends from def. Only a pair of supplied bounds can
// cross; a defaulted end is widened to keep the range ordered, so a single
// bound outside def selects nothing instead of failing.
func (b Bounds) Resolve(def filter.YearRange) (filter.YearRange, error) {
	rng := def
	switch {
	case b.From != nil && b.To != nil:
		rng = filter.YearRange{Min: *b.From, Max: *b.To}
		if err := rng.Validate(); err != nil {
			return filter.YearRange{}, err
		}
	case b.From != nil:
		rng.Min = *b.From
		rng.Max = max(def.Max, *b.From)
	case b.To != nil:
		rng.Max = *b.To
		rng.Min = min(def.Min, *b.To)
	}
	return rng, nil
}

// SeasonsInfo describes the selectable seasons and drivers.
type SeasonsInfo struct {
	FocusDriver       string            `json:"focus_driver"`
	Span              *filter.YearRange `json:"span,omitempty"`
	Seasons           []model.Season    `json:"seasons"`
	MonacoDefault     filter.YearRange  `json:"monaco_default"`
	ComparisonOptions []string          `json:"comparison_options"`
	DefaultComparison []string          `json:"default_comparison"`
}
