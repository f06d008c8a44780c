package api

import (
	"context"
	"net/http"

	"github.com/okian/paddock/internal/adapters/export"
	"github.com/okian/paddock/internal/domain/aggregate"
	"github.com/okian/paddock/internal/domain/types"
)

// AggregatesHandler serves the aggregate tables as JSON, CSV or XLSX.
type AggregatesHandler struct {
	deps AggregateDependencies
}

// NewAggregatesHandler creates a new aggregates handler.
func NewAggregatesHandler(deps AggregateDependencies) *AggregatesHandler {
	return &AggregatesHandler{deps: deps}
}

// HandleWinsPerSeason handles GET /aggregates/wins-per-season?from=&to=.
func (h *AggregatesHandler) HandleWinsPerSeason(w http.ResponseWriter, r *http.Request) {
	serveRanged(w, r, "api.wins_per_season", h.deps.WinsPerSeason, aggregate.WinsTable)
}

// HandlePointsPerSeason handles GET /aggregates/points-per-season?from=&to=.
func (h *AggregatesHandler) HandlePointsPerSeason(w http.ResponseWriter, r *http.Request) {
	serveRanged(w, r, "api.points_per_season", h.deps.PointsPerSeason, aggregate.PointsTable)
}

// HandleMonacoFinishes handles GET /aggregates/monaco-finishes?from=&to=.
func (h *AggregatesHandler) HandleMonacoFinishes(w http.ResponseWriter, r *http.Request) {
	serveRanged(w, r, "api.monaco_finishes", h.deps.MonacoFinishes, aggregate.FinishesTable)
}

// HandleOutcomes handles GET /aggregates/outcomes.
func (h *AggregatesHandler) HandleOutcomes(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "api.outcomes", h.deps.Outcomes, aggregate.OutcomesTable)
}

// HandlePolesByTrack handles GET /aggregates/poles-by-track.
func (h *AggregatesHandler) HandlePolesByTrack(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "api.poles_by_track", h.deps.PolesByTrack, aggregate.TrackPolesTable)
}

// HandlePolesVsWins handles GET /aggregates/poles-vs-wins.
func (h *AggregatesHandler) HandlePolesVsWins(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "api.poles_vs_wins", h.deps.PolesVsWins, aggregate.PolesWinsTable)
}

// HandlePoleComparison handles GET /aggregates/pole-comparison?driver=...
func (h *AggregatesHandler) HandlePoleComparison(w http.ResponseWriter, r *http.Request) {
	names := parseDrivers(r.URL.Query())
	compute := func(ctx context.Context) ([]aggregate.DriverPoles, error) {
		return h.deps.PoleComparison(ctx, names)
	}
	serve(w, r, "api.pole_comparison", compute, aggregate.DriverPolesTable)
}

// HandleFatalitiesPerDecade handles GET /aggregates/fatalities-per-decade.
func (h *AggregatesHandler) HandleFatalitiesPerDecade(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "api.fatalities_per_decade", h.deps.FatalitiesPerDecade, aggregate.DecadeTable)
}

// HandleFatalitiesBeforeAfter handles GET /aggregates/fatalities-before-after.
func (h *AggregatesHandler) HandleFatalitiesBeforeAfter(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "api.fatalities_before_after", h.deps.FatalitiesBeforeAfter, aggregate.PeriodTable)
}

// HandleCareer handles GET /aggregates/career. JSON responses carry a single
// object rather than a list.
func (h *AggregatesHandler) HandleCareer(w http.ResponseWriter, r *http.Request) {
	const op = "api.career"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	format, err := parseFormat(r.URL.Query())
	if err != nil {
		fail(w, r, WrapKind(op, ErrUnsupportedFormat, err))
		return
	}
	sum, err := h.deps.Career(r.Context())
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	if format == export.FormatJSON {
		writeJSON(w, http.StatusOK, sum)
		return
	}
	writeTable(w, r, op, format, aggregate.SummaryTable(sum))
}

func serveRanged[T any](
	w http.ResponseWriter,
	r *http.Request,
	op string,
	compute func(context.Context, types.Bounds) ([]T, error),
	table func([]T) aggregate.Table,
) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	b, err := parseBounds(r.URL.Query())
	if err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	serve(w, r, op, func(ctx context.Context) ([]T, error) { return compute(ctx, b) }, table)
}

func serve[T any](
	w http.ResponseWriter,
	r *http.Request,
	op string,
	compute func(context.Context) ([]T, error),
	table func([]T) aggregate.Table,
) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	format, err := parseFormat(r.URL.Query())
	if err != nil {
		fail(w, r, WrapKind(op, ErrUnsupportedFormat, err))
		return
	}
	rows, err := compute(r.Context())
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	if format == export.FormatJSON {
		writeJSON(w, http.StatusOK, rows)
		return
	}
	writeTable(w, r, op, format, table(rows))
}

// writeTable streams t as a file attachment.
func writeTable(w http.ResponseWriter, r *http.Request, op string, format export.Format, t aggregate.Table) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename(t.Name)+`"`)
	if err := export.Write(w, format, t); err != nil {
		fail(w, r, Wrap(op, err))
	}
}
