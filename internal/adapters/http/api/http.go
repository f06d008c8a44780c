// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/paddock/internal/domain/aggregate"
	"github.com/okian/paddock/internal/domain/types"
	"github.com/okian/paddock/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AggregateDependencies
	SeasonsDependencies
}

// AggregateDependencies computes the served aggregates.
type AggregateDependencies interface {
	WinsPerSeason(ctx context.Context, b types.Bounds) ([]aggregate.SeasonWins, error)
	PointsPerSeason(ctx context.Context, b types.Bounds) ([]aggregate.SeasonPoints, error)
	MonacoFinishes(ctx context.Context, b types.Bounds) ([]aggregate.SeasonFinish, error)
	Outcomes(ctx context.Context) ([]aggregate.OutcomeCount, error)
	PolesByTrack(ctx context.Context) ([]aggregate.TrackPoles, error)
	PolesVsWins(ctx context.Context) ([]aggregate.YearPolesWins, error)
	PoleComparison(ctx context.Context, names []string) ([]aggregate.DriverPoles, error)
	FatalitiesPerDecade(ctx context.Context) ([]aggregate.DecadeFatalities, error)
	FatalitiesBeforeAfter(ctx context.Context) ([]aggregate.PeriodFatalities, error)
	Career(ctx context.Context) (aggregate.Summary, error)
}

// SeasonsDependencies exposes slider bounds and the circuit layout.
type SeasonsDependencies interface {
	Seasons(ctx context.Context) (types.SeasonsInfo, error)
	Layout(ctx context.Context) (json.RawMessage, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	aggregatesHandler *AggregatesHandler
	seasonsHandler    *SeasonsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		aggregatesHandler: NewAggregatesHandler(deps),
		seasonsHandler:    NewSeasonsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(path, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(path, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}

	route("/healthz", "healthz", s.healthHandler.HandleHealth)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/seasons", "seasons", s.seasonsHandler.HandleSeasons)
	route("/circuits/monaco/layout", "monaco_layout", s.seasonsHandler.HandleLayout)

	a := s.aggregatesHandler
	route("/aggregates/wins-per-season", aggregate.NameWinsPerSeason, a.HandleWinsPerSeason)
	route("/aggregates/points-per-season", aggregate.NamePointsPerSeason, a.HandlePointsPerSeason)
	route("/aggregates/monaco-finishes", aggregate.NameMonacoFinishes, a.HandleMonacoFinishes)
	route("/aggregates/outcomes", aggregate.NameOutcomeBreakdown, a.HandleOutcomes)
	route("/aggregates/poles-by-track", aggregate.NamePolesByTrack, a.HandlePolesByTrack)
	route("/aggregates/poles-vs-wins", aggregate.NamePolesVsWins, a.HandlePolesVsWins)
	route("/aggregates/pole-comparison", aggregate.NamePoleComparison, a.HandlePoleComparison)
	route("/aggregates/fatalities-per-decade", aggregate.NameFatalitiesPerDecade, a.HandleFatalitiesPerDecade)
	route("/aggregates/fatalities-before-after", aggregate.NameFatalitiesBeforeAfter, a.HandleFatalitiesBeforeAfter)
	route("/aggregates/career", aggregate.NameCareerSummary, a.HandleCareer)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err, logs server-side failures and writes the error body.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("code", code),
			logger.Error(err),
		)
	}
	w.Header().Del("Content-Disposition")
	writeError(w, status, code, err)
}
