// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New(ctx) returns a Config populated with defaults.
//   - Load(ctx) layers a YAML file and PADDOCK_* env vars over the defaults.
//   - Errors are wrapped with ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir holds races.csv, results.csv, drivers.csv, qualifying.csv and circuits.csv.
	DataDir string `koanf:"data_dir"`

	// LayoutFile is the GeoJSON circuit layout served as-is. Optional.
	LayoutFile string `koanf:"layout_file"`

	// FatalitiesURL is fetched at start-up when FatalitiesFile is empty.
	FatalitiesURL string `koanf:"fatalities_url"`

	// FatalitiesFile is a local copy of the fatality page; it wins over FatalitiesURL.
	FatalitiesFile string `koanf:"fatalities_file"`

	// FatalityTableIndex selects the table on the fatality page (0-based).
	FatalityTableIndex int `koanf:"fatality_table_index"`

	// FetchTimeoutMS bounds a single fetch attempt.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// FetchRetries is the number of retries after the first attempt.
	FetchRetries int `koanf:"fetch_retries"`

	// FocusDriver is the driver whose career the career aggregates describe.
	FocusDriver string `koanf:"focus_driver"`

	// ComparisonDrivers lists the drivers offered for the pole comparison.
	ComparisonDrivers []string `koanf:"comparison_drivers"`

	// DefaultComparison is the pole comparison selection when none is given.
	DefaultComparison []string `koanf:"default_comparison"`

	// MonacoPattern is matched case-insensitively against circuit names.
	MonacoPattern string `koanf:"monaco_pattern"`

	// MonacoFrom and MonacoTo bound the default Monaco finishing window.
	MonacoFrom int `koanf:"monaco_from"`
	MonacoTo   int `koanf:"monaco_to"`

	// FatalityThresholdYear splits fatalities into before and after.
	FatalityThresholdYear int `koanf:"fatality_threshold_year"`
}

// New creates a Config with defaults. The context is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		DataDir:            "data",
		FatalitiesURL:      "https://en.wikipedia.org/wiki/List_of_Formula_One_fatalities",
		FatalityTableIndex: 2,
		FetchTimeoutMS:     10_000,
		FetchRetries:       3,
		FocusDriver:        "Ayrton Senna",
		ComparisonDrivers: []string{
			"Ayrton Senna",
			"Michael Schumacher",
			"Lewis Hamilton",
			"Sebastian Vettel",
			"Alain Prost",
			"Niki Lauda",
			"Max Verstappen",
		},
		DefaultComparison:     []string{"Ayrton Senna", "Michael Schumacher", "Lewis Hamilton"},
		MonacoPattern:         "Monaco",
		MonacoFrom:            1984,
		MonacoTo:              1993,
		FatalityThresholdYear: 1994,
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting, wrapped with ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DataDir) == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.FocusDriver) == "":
		return fmt.Errorf("%w: focus_driver must not be empty", ErrInvalidConfig)
	case c.MonacoFrom > c.MonacoTo:
		return fmt.Errorf("%w: monaco_from %d is after monaco_to %d", ErrInvalidConfig, c.MonacoFrom, c.MonacoTo)
	case c.FatalityTableIndex < 0:
		return fmt.Errorf("%w: fatality_table_index must not be negative", ErrInvalidConfig)
	case c.FetchRetries < 0:
		return fmt.Errorf("%w: fetch_retries must not be negative", ErrInvalidConfig)
	case c.FetchTimeoutMS <= 0:
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	}
	return nil
}
