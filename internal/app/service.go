// Package service provides the aggregation service behind the HTTP API.
// It owns the record store and turns requests into aggregate tables.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/okian/paddock/internal/domain/aggregate"
	"github.com/okian/paddock/internal/domain/derive"
	"github.com/okian/paddock/internal/domain/filter"
	"github.com/okian/paddock/internal/domain/join"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/records"
	"github.com/okian/paddock/internal/domain/types"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// Loader builds the record store.
type Loader interface {
	Load(ctx context.Context) (*records.Store, error)
}

// resolveRange applies defaults to b and counts rejected ranges.
func resolveRange(b types.Bounds, def filter.YearRange) (filter.YearRange, error) {
	rng, err := b.Resolve(def)
	if err != nil {
		metrics.RecordInvalidRange()
		return filter.YearRange{}, err
	}
	return rng, nil
}

// Service implements the API dependencies for the aggregation system.
type Service struct {
	mu sync.RWMutex

	store  *records.Store
	loader Loader

	focusDriver       string
	comparisonOptions []string
	defaultComparison []string
	monacoPattern     string
	monacoWindow      filter.YearRange
	fatalityThreshold int

	started bool
	logger  logger.Logger
}

// comparisonDrivers are the drivers offered for the pole comparison; the
// first three are selected by default.
var comparisonDrivers = []string{
	"Ayrton Senna",
	"Michael Schumacher",
	"Lewis Hamilton",
	"Sebastian Vettel",
	"Alain Prost",
	"Niki Lauda",
	"Max Verstappen",
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		focusDriver:       "Ayrton Senna",
		comparisonOptions: append([]string(nil), comparisonDrivers...),
		defaultComparison: append([]string(nil), comparisonDrivers[:3]...),
		monacoPattern:     "Monaco",
		monacoWindow:      filter.YearRange{Min: 1984, Max: 1993},
		fatalityThreshold: 1994,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the record store unless one was supplied.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		if s.loader == nil {
			return ErrNoLoader
		}
		s.logger.Info(ctx, "loading record store...")
		store, err := s.loader.Load(ctx)
		if err != nil {
			return fmt.Errorf("load record store: %w", err)
		}
		s.store = store
	}

	s.started = true
	counts := s.store.Counts()
	s.logger.Info(ctx, "aggregation service started",
		logger.String("focus_driver", s.focusDriver),
		logger.Int("results", counts["results"]),
		logger.Int("fatalities", counts["fatalities"]),
	)
	return nil
}

// Stop marks the service as stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "aggregation service stopped")
}

// Ready reports whether the store is loaded.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

func (s *Service) loaded() (*records.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// allRows joins results with drivers and races.
func (s *Service) allRows() ([]model.Row, error) {
	store, err := s.loaded()
	if err != nil {
		return nil, err
	}
	return join.ResultsDriversRaces(store.Results(), store.Drivers(), store.Races()), nil
}

// focusRows returns the joined rows of the focus driver.
func (s *Service) focusRows() ([]model.Row, error) {
	rows, err := s.allRows()
	if err != nil {
		return nil, err
	}
	return filter.ByDriverNames(rows, []string{s.focusDriver}), nil
}

// focusSpan is the default range for season-filtered aggregates.
func (s *Service) focusSpan(rows []model.Row) filter.YearRange {
	span, ok := aggregate.SeasonSpan(rows)
	if !ok {
		return filter.YearRange{}
	}
	return span
}

// observe records metrics and a debug line for one computed aggregate.
func observe[T any](ctx context.Context, s *Service, name string, start time.Time, out []T) []T {
	elapsed := time.Since(start)
	metrics.RecordAggregate(name, len(out), elapsed)
	s.logger.Debug(ctx, "aggregate computed",
		logger.String("aggregate", name),
		logger.Int("rows", len(out)),
		logger.Duration("elapsed", elapsed),
	)
	return out
}

// WinsPerSeason counts the focus driver's wins per season within b.
func (s *Service) WinsPerSeason(ctx context.Context, b types.Bounds) ([]aggregate.SeasonWins, error) {
	start := time.Now()
	rows, err := s.focusRows()
	if err != nil {
		return nil, err
	}
	rng, err := resolveRange(b, s.focusSpan(rows))
	if err != nil {
		return nil, err
	}
	in, err := filter.ByYearRange(rows, rng)
	if err != nil {
		return nil, err
	}
	return observe(ctx, s, aggregate.NameWinsPerSeason, start, aggregate.WinsPerSeason(in)), nil
}

// PointsPerSeason sums the focus driver's points per season within b.
func (s *Service) PointsPerSeason(ctx context.Context, b types.Bounds) ([]aggregate.SeasonPoints, error) {
	start := time.Now()
	rows, err := s.focusRows()
	if err != nil {
		return nil, err
	}
	rng, err := resolveRange(b, s.focusSpan(rows))
	if err != nil {
		return nil, err
	}
	in, err := filter.ByYearRange(rows, rng)
	if err != nil {
		return nil, err
	}
	return observe(ctx, s, aggregate.NamePointsPerSeason, start, aggregate.PointsPerSeason(in)), nil
}

// Outcomes partitions the focus driver's results into outcome buckets.
func (s *Service) Outcomes(ctx context.Context) ([]aggregate.OutcomeCount, error) {
	start := time.Now()
	rows, err := s.focusRows()
	if err != nil {
		return nil, err
	}
	return observe(ctx, s, aggregate.NameOutcomeBreakdown, start, aggregate.OutcomeBreakdown(rows)), nil
}

// PolesByTrack counts the focus driver's poles per event.
func (s *Service) PolesByTrack(ctx context.Context) ([]aggregate.TrackPoles, error) {
	start := time.Now()
	rows, err := s.focusRows()
	if err != nil {
		return nil, err
	}
	return observe(ctx, s, aggregate.NamePolesByTrack, start, aggregate.PolesByTrack(rows)), nil
}

// PolesVsWins merges the focus driver's poles and wins per year.
func (s *Service) PolesVsWins(ctx context.Context) ([]aggregate.YearPolesWins, error) {
	start := time.Now()
	rows, err := s.focusRows()
	if err != nil {
		return nil, err
	}
	return observe(ctx, s, aggregate.NamePolesVsWins, start, aggregate.PolesVsWinsByYear(rows)), nil
}

// PoleComparison counts poles of the named drivers over the whole results
// table. Results are joined with drivers only, so a result whose race is
// missing still counts. An empty selection uses the default comparison.
func (s *Service) PoleComparison(ctx context.Context, names []string) ([]aggregate.DriverPoles, error) {
	start := time.Now()
	store, err := s.loaded()
	if err != nil {
		return nil, err
	}
	rows := join.ResultsDrivers(store.Results(), store.Drivers())
	if len(names) == 0 {
		names = s.defaultComparison
	}
	return observe(ctx, s, aggregate.NamePoleComparison, start, aggregate.PoleComparison(rows, names)), nil
}

// MonacoFinishes lists the focus driver's finishes at circuits matching the
// Monaco pattern within b, defaulting to the configured window.
func (s *Service) MonacoFinishes(ctx context.Context, b types.Bounds) ([]aggregate.SeasonFinish, error) {
	start := time.Now()
	store, err := s.loaded()
	if err != nil {
		return nil, err
	}
	rows, err := s.focusRows()
	if err != nil {
		return nil, err
	}
	rng, err := resolveRange(b, s.monacoWindow)
	if err != nil {
		return nil, err
	}
	in, err := filter.ByYearRange(rows, rng)
	if err != nil {
		return nil, err
	}
	ids := join.CircuitIDsMatching(store.Circuits(), s.monacoPattern)
	return observe(ctx, s, aggregate.NameMonacoFinishes, start, aggregate.MonacoFinishes(in, ids)), nil
}

// FatalitiesPerDecade counts fatal accidents per decade.
func (s *Service) FatalitiesPerDecade(ctx context.Context) ([]aggregate.DecadeFatalities, error) {
	start := time.Now()
	store, err := s.loaded()
	if err != nil {
		return nil, err
	}
	out := aggregate.FatalitiesPerDecade(store.Fatalities())
	return observe(ctx, s, aggregate.NameFatalitiesPerDecade, start, out), nil
}

// FatalitiesBeforeAfter splits fatal accidents at the threshold year.
func (s *Service) FatalitiesBeforeAfter(ctx context.Context) ([]aggregate.PeriodFatalities, error) {
	start := time.Now()
	store, err := s.loaded()
	if err != nil {
		return nil, err
	}
	out := aggregate.FatalitiesBeforeAfter(store.Fatalities(), s.fatalityThreshold)
	return observe(ctx, s, aggregate.NameFatalitiesBeforeAfter, start, out), nil
}

// Career returns the focus driver's headline numbers.
func (s *Service) Career(ctx context.Context) (aggregate.Summary, error) {
	start := time.Now()
	rows, err := s.focusRows()
	if err != nil {
		return aggregate.Summary{}, err
	}
	sum := aggregate.CareerSummary(rows)
	observe(ctx, s, aggregate.NameCareerSummary, start, []aggregate.Summary{sum})
	return sum, nil
}

// Seasons describes the focus driver's season span and selectable drivers.
func (s *Service) Seasons(ctx context.Context) (types.SeasonsInfo, error) {
	rows, err := s.focusRows()
	if err != nil {
		return types.SeasonsInfo{}, err
	}
	info := types.SeasonsInfo{
		FocusDriver:       s.focusDriver,
		Seasons:           []model.Season{},
		MonacoDefault:     s.monacoWindow,
		ComparisonOptions: append([]string(nil), s.comparisonOptions...),
		DefaultComparison: append([]string(nil), s.defaultComparison...),
	}
	if span, ok := aggregate.SeasonSpan(rows); ok {
		info.Span = &span
		for y := span.Min; y <= span.Max; y++ {
			info.Seasons = append(info.Seasons, derive.SeasonOf(y))
		}
	}
	s.logger.Debug(ctx, "seasons listed", logger.Int("seasons", len(info.Seasons)))
	return info, nil
}

// Layout returns the circuit layout document.
func (s *Service) Layout(ctx context.Context) (json.RawMessage, error) {
	store, err := s.loaded()
	if err != nil {
		return nil, err
	}
	layout := store.Layout()
	if len(layout) == 0 {
		s.logger.Debug(ctx, "layout requested but not loaded")
		return nil, ErrNoLayout
	}
	return layout, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"focusDriver": s.focusDriver,
	}
	if s.started {
		stats["tables"] = s.store.Counts()
		stats["reports"] = s.store.Reports()
	}
	return stats
}
