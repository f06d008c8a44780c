package service

import (
	"github.com/okian/paddock/internal/domain/filter"
	"github.com/okian/paddock/internal/domain/records"
	"github.com/okian/paddock/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithStore uses an already built store; Start then skips loading.
func WithStore(store *records.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLoader sets the loader that builds the store on Start.
func WithLoader(l Loader) Option {
	return func(s *Service) {
		s.loader = l
	}
}

// WithFocusDriver sets the driver the career aggregates describe.
func WithFocusDriver(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.focusDriver = name
		}
	}
}

// WithComparisonDrivers sets the offered comparison drivers and the default
// selection.
func WithComparisonDrivers(options, defaults []string) Option {
	return func(s *Service) {
		if len(options) > 0 {
			s.comparisonOptions = append([]string(nil), options...)
		}
		if len(defaults) > 0 {
			s.defaultComparison = append([]string(nil), defaults...)
		}
	}
}

// WithMonaco sets the circuit name pattern and default year window of the
// Monaco finishes aggregate.
func WithMonaco(pattern string, from, to int) Option {
	return func(s *Service) {
		if pattern != "" {
			s.monacoPattern = pattern
		}
		if from != 0 || to != 0 {
			s.monacoWindow = filter.YearRange{Min: from, Max: to}
		}
	}
}

// WithFatalityThreshold sets the year splitting fatalities into before and after.
func WithFatalityThreshold(year int) Option {
	return func(s *Service) {
		if year != 0 {
			s.fatalityThreshold = year
		}
	}
}
