// Package aggregate computes the summary tables served to the presentation
// layer.
//
// Every function is a pure function of its (already filtered) input rows.
// Input order never affects the output; output order is fixed per table.
// Empty input always yields an empty, non-nil table.
package aggregate

import (
	"cmp"
	"slices"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/okian/paddock/internal/domain/derive"
	"github.com/okian/paddock/internal/domain/filter"
	"github.com/okian/paddock/internal/domain/model"
)

// SeasonWins is one row of the wins-per-season table.
type SeasonWins struct {
	Season model.Season `json:"season"`
	Wins   int          `json:"wins"`
}

// SeasonPoints is one row of the points-per-season table.
type SeasonPoints struct {
	Season model.Season `json:"season"`
	Points float64      `json:"points"`
	// Display is Points rounded to one decimal.
	Display string `json:"display"`
}

// OutcomeCount is one bucket of the outcome breakdown.
type OutcomeCount struct {
	Result string `json:"result"`
	Count  int    `json:"count"`
}

// TrackPoles is one row of the poles-by-track table.
type TrackPoles struct {
	Track string `json:"track"`
	Poles int    `json:"poles"`
}

// YearPolesWins is one row of the poles-vs-wins table.
type YearPolesWins = derive.YearTally

// DriverPoles is one row of the pole comparison table.
type DriverPoles struct {
	DriverID int    `json:"driver_id"`
	Driver   string `json:"driver"`
	Poles    int    `json:"poles"`
}

// SeasonFinish is one Monaco finish.
type SeasonFinish struct {
	Season   model.Season `json:"season"`
	Position int          `json:"position"`
}

// DecadeFatalities is one row of the fatalities-per-decade table.
type DecadeFatalities struct {
	Decade     int `json:"decade"`
	Fatalities int `json:"fatalities"`
}

// PeriodFatalities is one side of the before/after threshold split.
type PeriodFatalities struct {
	Period     string `json:"period"`
	Fatalities int    `json:"fatalities"`
}

// Summary holds the career headline numbers.
type Summary struct {
	Races   int     `json:"races"`
	Wins    int     `json:"wins"`
	Podiums int     `json:"podiums"`
	Poles   int     `json:"poles"`
	Points  float64 `json:"points"`
}

// WinsPerSeason counts wins per season, ascending by year.
func WinsPerSeason(rows []model.Row) []SeasonWins {
	counts := countBy(filter.ByPosition(rows, filter.Win), model.Row.Year)
	out := make([]SeasonWins, 0, len(counts))
	for _, y := range sortedKeys(counts) {
		out = append(out, SeasonWins{Season: derive.SeasonOf(y), Wins: counts[y]})
	}
	return out
}

// PointsPerSeason sums points per season, ascending by year. Sums are exact
// decimal additions so half points never drift.
func PointsPerSeason(rows []model.Row) []SeasonPoints {
	sums := make(map[int]decimal.Decimal)
	for _, r := range rows {
		sums[r.Year()] = sums[r.Year()].Add(decimal.NewFromFloat(r.Result.Points))
	}
	out := make([]SeasonPoints, 0, len(sums))
	for _, y := range sortedKeys(sums) {
		s := sums[y]
		out = append(out, SeasonPoints{
			Season:  derive.SeasonOf(y),
			Points:  s.InexactFloat64(),
			Display: s.StringFixed(1),
		})
	}
	return out
}

// OutcomeBreakdown partitions rows into wins, podiums, 4th–10th and other
// finishes. The four counts always sum to len(rows).
func OutcomeBreakdown(rows []model.Row) []OutcomeCount {
	if len(rows) == 0 {
		return []OutcomeCount{}
	}
	counts := make(map[derive.Outcome]int, len(derive.Outcomes))
	for _, r := range rows {
		counts[derive.Classify(r.Result.PositionOrder)]++
	}
	out := make([]OutcomeCount, 0, len(derive.Outcomes))
	for _, o := range derive.Outcomes {
		out = append(out, OutcomeCount{Result: o.String(), Count: counts[o]})
	}
	return out
}

// PolesByTrack counts pole positions per event name; "Grand Prix" is
// stripped from each name afterwards, so distinct events whose names strip
// alike stay separate rows. Rows are ordered by descending count; equal
// counts keep ascending event name order.
func PolesByTrack(rows []model.Row) []TrackPoles {
	counts := countBy(filter.ByGrid(rows, filter.Pole), model.Row.RaceName)
	out := make([]TrackPoles, 0, len(counts))
	for _, name := range sortedKeys(counts) {
		out = append(out, TrackPoles{Track: derive.StripGrandPrix(name), Poles: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Poles > out[j].Poles })
	return out
}

// PolesVsWinsByYear counts poles and wins per season and merges both on
// year. A season with only one of the two has zero for the other.
func PolesVsWinsByYear(rows []model.Row) []YearPolesWins {
	poles := countBy(filter.ByGrid(rows, filter.Pole), model.Row.Year)
	wins := countBy(filter.ByPosition(rows, filter.Win), model.Row.Year)
	return derive.ReconcilePolesWins(poles, wins)
}

// PoleComparison counts poles for each named driver. Drivers without a pole
// are absent. Rows are ordered by descending count; equal counts keep
// ascending driver id order.
func PoleComparison(rows []model.Row, names []string) []DriverPoles {
	poles := filter.ByGrid(filter.ByDriverNames(rows, names), filter.Pole)
	counts := countBy(poles, func(r model.Row) int { return r.Driver.DriverID })
	labels := make(map[int]string, len(counts))
	for _, r := range poles {
		labels[r.Driver.DriverID] = r.DriverName()
	}
	out := make([]DriverPoles, 0, len(counts))
	for _, id := range sortedKeys(counts) {
		out = append(out, DriverPoles{DriverID: id, Driver: labels[id], Poles: counts[id]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Poles > out[j].Poles })
	return out
}

// MonacoFinishes projects the finishing position of every row raced at one
// of circuitIDs, in chronological order.
func MonacoFinishes(rows []model.Row, circuitIDs []int) []SeasonFinish {
	at := filter.ByCircuitIDs(rows, circuitIDs)
	slices.SortStableFunc(at, func(a, b model.Row) int {
		if c := cmp.Compare(a.Year(), b.Year()); c != 0 {
			return c
		}
		return cmp.Compare(a.Race.RaceID, b.Race.RaceID)
	})
	out := make([]SeasonFinish, 0, len(at))
	for _, r := range at {
		out = append(out, SeasonFinish{Season: derive.SeasonOf(r.Year()), Position: r.Result.PositionOrder})
	}
	return out
}

// FatalitiesPerDecade counts fatal accidents per decade, ascending.
func FatalitiesPerDecade(records []model.FatalityRecord) []DecadeFatalities {
	counts := countBy(records, func(f model.FatalityRecord) int { return f.Decade })
	out := make([]DecadeFatalities, 0, len(counts))
	for _, d := range sortedKeys(counts) {
		out = append(out, DecadeFatalities{Decade: d, Fatalities: counts[d]})
	}
	return out
}

// FatalitiesBeforeAfter splits fatal accidents into those before threshold
// and those in or after it. The "before" row always comes first.
func FatalitiesBeforeAfter(records []model.FatalityRecord, threshold int) []PeriodFatalities {
	if len(records) == 0 {
		return []PeriodFatalities{}
	}
	before := 0
	for _, f := range records {
		if f.Year < threshold {
			before++
		}
	}
	return []PeriodFatalities{
		{Period: derive.BeforeLabel(threshold), Fatalities: before},
		{Period: derive.AfterLabel(threshold), Fatalities: len(records) - before},
	}
}

// CareerSummary computes race, win, podium, pole and points totals.
func CareerSummary(rows []model.Row) Summary {
	s := Summary{Races: len(rows)}
	points := decimal.Zero
	for _, r := range rows {
		switch derive.Classify(r.Result.PositionOrder) {
		case derive.OutcomeWin:
			s.Wins++
			s.Podiums++
		case derive.OutcomePodium:
			s.Podiums++
		}
		if filter.Pole(r.Result.Grid) {
			s.Poles++
		}
		points = points.Add(decimal.NewFromFloat(r.Result.Points))
	}
	s.Points = points.InexactFloat64()
	return s
}

// SeasonSpan returns the first and last season present in rows. The boolean
// is false for empty input.
func SeasonSpan(rows []model.Row) (filter.YearRange, bool) {
	if len(rows) == 0 {
		return filter.YearRange{}, false
	}
	span := filter.YearRange{Min: rows[0].Year(), Max: rows[0].Year()}
	for _, r := range rows[1:] {
		span.Min = min(span.Min, r.Year())
		span.Max = max(span.Max, r.Year())
	}
	return span, true
}

func countBy[T any, K comparable](items []T, key func(T) K) map[K]int {
	counts := make(map[K]int)
	for _, it := range items {
		counts[key(it)]++
	}
	return counts
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
