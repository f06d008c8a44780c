// Package derive holds the stateless helpers of the aggregation pipeline:
// season labels, decade buckets, outcome classes, period labels and the
// poles/wins reconciliation.
package derive

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/okian/paddock/internal/domain/model"
)

// Outcome is a finishing-position class. The four classes partition every
// possible finishing position.
type Outcome int

// Outcome classes in display order.
const (
	OutcomeWin Outcome = iota
	OutcomePodium
	OutcomeTopTen
	OutcomeOther
)

// Outcomes lists every class in display order.
var Outcomes = []Outcome{OutcomeWin, OutcomePodium, OutcomeTopTen, OutcomeOther}

// String returns the display label of the class.
func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "Wins"
	case OutcomePodium:
		return "2nd/3rd (Podiums)"
	case OutcomeTopTen:
		return "4th–10th"
	default:
		return "Other / DNF"
	}
}

// Classify buckets a finishing position. Positions below 1 never occur in
// valid data and fall into OutcomeOther with non-finishers.
func Classify(position int) Outcome {
	switch {
	case position == 1:
		return OutcomeWin
	case position == 2 || position == 3:
		return OutcomePodium
	case position >= 4 && position <= 10:
		return OutcomeTopTen
	default:
		return OutcomeOther
	}
}

// SeasonLabel formats a year as an apostrophe and its last two digits, e.g.
// 1988 -> "'88". Labels repeat every century; order by year, never by label.
func SeasonLabel(year int) string {
	yy := year % 100
	if yy < 0 {
		yy = -yy
	}
	return fmt.Sprintf("'%02d", yy)
}

// SeasonOf pairs year with its label.
func SeasonOf(year int) model.Season {
	return model.Season{Year: year, Label: SeasonLabel(year)}
}

// Decade rounds year down to a multiple of ten.
func Decade(year int) int {
	d := year / 10 * 10
	if year%10 < 0 {
		d -= 10
	}
	return d
}

// Period labels which side of threshold a year falls on.
func Period(year, threshold int) string {
	if year < threshold {
		return BeforeLabel(threshold)
	}
	return AfterLabel(threshold)
}

// BeforeLabel is the label for years strictly before threshold.
func BeforeLabel(threshold int) string {
	return fmt.Sprintf("Before %d", threshold)
}

// AfterLabel is the label for threshold and later years.
func AfterLabel(threshold int) string {
	return fmt.Sprintf("%d and After", threshold)
}

var grandPrixSuffix = regexp.MustCompile(`\s*Grand Prix`)

// StripGrandPrix removes "Grand Prix" from an event name:
// "Monaco Grand Prix" -> "Monaco".
func StripGrandPrix(name string) string {
	return strings.TrimSpace(grandPrixSuffix.ReplaceAllString(name, ""))
}

// YearTally holds the pole and win counts of one season.
type YearTally struct {
	Year  int `json:"year"`
	Poles int `json:"poles"`
	Wins  int `json:"wins"`
}

// ReconcilePolesWins outer-joins per-year pole and win counts. Every year
// present on either side appears once; the missing side is zero. Output is
// ascending by year.
func ReconcilePolesWins(poles, wins map[int]int) []YearTally {
	years := make(map[int]struct{}, len(poles)+len(wins))
	for y := range poles {
		years[y] = struct{}{}
	}
	for y := range wins {
		years[y] = struct{}{}
	}

	out := make([]YearTally, 0, len(years))
	for y := range years {
		out = append(out, YearTally{Year: y, Poles: poles[y], Wins: wins[y]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
