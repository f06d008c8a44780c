package aggregate

// Table names, one per served aggregate.
const (
	NameWinsPerSeason         = "wins_per_season"
	NamePointsPerSeason       = "points_per_season"
	NameOutcomeBreakdown      = "outcome_breakdown"
	NamePolesByTrack          = "poles_by_track"
	NamePolesVsWins           = "poles_vs_wins"
	NamePoleComparison        = "pole_comparison"
	NameMonacoFinishes        = "monaco_finishes"
	NameFatalitiesPerDecade   = "fatalities_per_decade"
	NameFatalitiesBeforeAfter = "fatalities_before_after"
	NameCareerSummary         = "career_summary"
)

// Table is the column-oriented form of an aggregate used for file exports.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

func newTable(name string, columns []string, n int) Table {
	return Table{Name: name, Columns: columns, Rows: make([][]any, 0, n)}
}

// WinsTable renders wins per season as [Season, Wins].
func WinsTable(rows []SeasonWins) Table {
	t := newTable(NameWinsPerSeason, []string{"Season", "Wins"}, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Season.Label, r.Wins})
	}
	return t
}

// PointsTable renders points per season as [Season, Points].
func PointsTable(rows []SeasonPoints) Table {
	t := newTable(NamePointsPerSeason, []string{"Season", "Points"}, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Season.Label, r.Points})
	}
	return t
}

// OutcomesTable renders the outcome breakdown as [Result, Count].
func OutcomesTable(rows []OutcomeCount) Table {
	t := newTable(NameOutcomeBreakdown, []string{"Result", "Count"}, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Result, r.Count})
	}
	return t
}

// TrackPolesTable renders poles by track as [Track, Pole Positions].
func TrackPolesTable(rows []TrackPoles) Table {
	t := newTable(NamePolesByTrack, []string{"Track", "Pole Positions"}, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Track, r.Poles})
	}
	return t
}

// PolesWinsTable renders poles vs wins as [year, poles, wins].
func PolesWinsTable(rows []YearPolesWins) Table {
	t := newTable(NamePolesVsWins, []string{"year", "poles", "wins"}, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Year, r.Poles, r.Wins})
	}
	return t
}

// DriverPolesTable renders the pole comparison as [Driver, Poles].
func DriverPolesTable(rows []DriverPoles) Table {
	t := newTable(NamePoleComparison, []string{"Driver", "Poles"}, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Driver, r.Poles})
	}
	return t
}

// FinishesTable renders Monaco finishes as [Season, Position].
func FinishesTable(rows []SeasonFinish) Table {
	t := newTable(NameMonacoFinishes, []string{"Season", "Position"}, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Season.Label, r.Position})
	}
	return t
}

// DecadeTable renders fatalities per decade as [Decade, Fatalities].
func DecadeTable(rows []DecadeFatalities) Table {
	t := newTable(NameFatalitiesPerDecade, []string{"Decade", "Fatalities"}, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Decade, r.Fatalities})
	}
	return t
}

// PeriodTable renders the threshold split as [Period, Fatalities].
func PeriodTable(rows []PeriodFatalities) Table {
	t := newTable(NameFatalitiesBeforeAfter, []string{"Period", "Fatalities"}, len(rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Period, r.Fatalities})
	}
	return t
}

// SummaryTable renders the career summary as a single row.
func SummaryTable(s Summary) Table {
	t := newTable(NameCareerSummary, []string{"Races", "Wins", "Podiums", "Poles", "Points"}, 1)
	t.Rows = append(t.Rows, []any{s.Races, s.Wins, s.Podiums, s.Poles, s.Points})
	return t
}
