package probe

import (
	"bytes"

	"github.com/okian/paddock/internal/domain/aggregate"
)

// VerifyOutcomePartition checks that the outcome buckets sum to the career
// race count.
func VerifyOutcomePartition(s *Snapshot, r *Report) {
	r.Checks++
	total := 0
	for _, o := range s.Outcomes {
		total += o.Count
	}
	if total != s.Career.Races {
		r.fail(CheckOutcomePartition, "outcomes sum to %d, career has %d races", total, s.Career.Races)
	}
}

// VerifyWinsInRange checks that every wins-per-season row lies in [from, to].
func VerifyWinsInRange(wins []aggregate.SeasonWins, from, to int, r *Report) {
	r.Checks++
	for _, w := range wins {
		if y := w.Season.Year; y < from || y > to {
			r.fail(CheckWinsInRange, "season %d outside %d-%d", y, from, to)
			return
		}
	}
}

// VerifyWinsTotal checks that wins over the full span equal career wins.
func VerifyWinsTotal(s *Snapshot, r *Report) {
	r.Checks++
	total := 0
	for _, w := range s.Wins {
		total += w.Wins
	}
	if total != s.Career.Wins {
		r.fail(CheckWinsTotal, "wins per season sum to %d, career has %d", total, s.Career.Wins)
	}
}

// VerifyYearsUnique checks that poles-vs-wins has at most one row per year.
func VerifyYearsUnique(s *Snapshot, r *Report) {
	r.Checks++
	seen := make(map[int]bool, len(s.PolesVsWins))
	for _, row := range s.PolesVsWins {
		if seen[row.Year] {
			r.fail(CheckYearsUnique, "year %d appears twice", row.Year)
			return
		}
		seen[row.Year] = true
	}
}

// VerifyIdempotent checks that repeated fetches of path returned the same body.
func VerifyIdempotent(path string, bodies [][]byte, r *Report) {
	r.Checks++
	for i := 1; i < len(bodies); i++ {
		if !bytes.Equal(bodies[0], bodies[i]) {
			r.fail(CheckIdempotent, "%s: response %d differs from the first", path, i+1)
			return
		}
	}
}
