// Package ingest turns the raw race-history sources into a records.Store:
// five CSV tables, the scraped fatality table and the circuit layout.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/records"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// PageFetcher downloads a document by URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Loader reads every source and builds the record store.
type Loader struct {
	dataDir        string
	layoutFile     string
	fatalitiesURL  string
	fatalitiesFile string
	tableIndex     int
	fetcher        PageFetcher
	logger         logger.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLayoutFile sets the GeoJSON layout path.
func WithLayoutFile(path string) LoaderOption {
	return func(l *Loader) { l.layoutFile = path }
}

// WithFatalitiesURL sets the page the fatality table is scraped from.
func WithFatalitiesURL(url string) LoaderOption {
	return func(l *Loader) { l.fatalitiesURL = url }
}

// WithFatalitiesFile sets a local copy of the fatality page. It takes
// precedence over the URL.
func WithFatalitiesFile(path string) LoaderOption {
	return func(l *Loader) { l.fatalitiesFile = path }
}

// WithFatalityTableIndex selects the table on the fatality page.
func WithFatalityTableIndex(index int) LoaderOption {
	return func(l *Loader) { l.tableIndex = index }
}

// WithFetcher sets the fetcher used for the fatality URL.
func WithFetcher(f PageFetcher) LoaderOption {
	return func(l *Loader) {
		if f != nil {
			l.fetcher = f
		}
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(lg logger.Logger) LoaderOption {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewLoader creates a Loader reading CSV tables from dataDir.
func NewLoader(dataDir string, opts ...LoaderOption) *Loader {
	l := &Loader{dataDir: dataDir, tableIndex: 2}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads all sources concurrently and returns the immutable store.
// Any I/O failure aborts the load.
func (l *Loader) Load(ctx context.Context) (*records.Store, error) {
	if l.logger == nil {
		l.logger = logger.Named("ingest")
	}
	start := time.Now()

	var (
		t       records.Tables
		reports = make([]model.TableReport, 6)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		t.Races, reports[0], err = readFile(gctx, l.csvPath(TableRaces), ReadRaces)
		return err
	})
	g.Go(func() (err error) {
		t.Results, reports[1], err = readFile(gctx, l.csvPath(TableResults), ReadResults)
		return err
	})
	g.Go(func() (err error) {
		t.Drivers, reports[2], err = readFile(gctx, l.csvPath(TableDrivers), ReadDrivers)
		return err
	})
	g.Go(func() (err error) {
		t.Qualifying, reports[3], err = readFile(gctx, l.csvPath(TableQualifying), ReadQualifying)
		return err
	})
	g.Go(func() (err error) {
		t.Circuits, reports[4], err = readFile(gctx, l.csvPath(TableCircuits), ReadCircuits)
		return err
	})
	g.Go(func() (err error) {
		t.Fatalities, reports[5], err = l.loadFatalities(gctx)
		return err
	})
	g.Go(func() (err error) {
		t.Layout, err = ReadLayout(l.layoutFile)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.RecordErrorByComponent("ingest", "load")
		return nil, err
	}

	t.Reports = reports
	for _, r := range reports {
		l.report(ctx, r)
	}

	elapsed := time.Since(start)
	metrics.RecordIngestDuration(elapsed)
	l.logger.Info(ctx, "record store loaded",
		logger.Int("races", len(t.Races)),
		logger.Int("results", len(t.Results)),
		logger.Int("drivers", len(t.Drivers)),
		logger.Int("fatalities", len(t.Fatalities)),
		logger.Bool("layout", len(t.Layout) > 0),
		logger.Duration("elapsed", elapsed),
	)
	return records.New(t), nil
}

func (l *Loader) csvPath(table string) string {
	return filepath.Join(l.dataDir, table+".csv")
}

func (l *Loader) loadFatalities(ctx context.Context) ([]model.FatalityRecord, model.TableReport, error) {
	empty := model.TableReport{Table: TableFatalities}
	switch {
	case l.fatalitiesFile != "":
		return readFile(ctx, l.fatalitiesFile, func(r io.Reader) ([]model.FatalityRecord, model.TableReport, error) {
			return ReadFatalities(r, l.tableIndex)
		})
	case l.fatalitiesURL != "":
		if l.fetcher == nil {
			l.fetcher = NewFetcher(WithFetchLogger(l.logger))
		}
		page, err := l.fetcher.Fetch(ctx, l.fatalitiesURL)
		if err != nil {
			return nil, empty, err
		}
		return ReadFatalities(bytes.NewReader(page), l.tableIndex)
	default:
		l.logger.Warn(ctx, "fatality table disabled", logger.Error(ErrNoFatalities))
		return nil, empty, nil
	}
}

// report logs a table report and mirrors it into metrics.
func (l *Loader) report(ctx context.Context, r model.TableReport) {
	metrics.UpdateIngestRowsLoaded(r.Table, r.Loaded)
	reasons := make([]string, 0, len(r.Reasons))
	for reason := range r.Reasons {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		metrics.RecordIngestRowsSkipped(r.Table, reason, r.Reasons[reason])
	}

	fields := []logger.Field{
		logger.String("table", r.Table),
		logger.Int("read", r.Read),
		logger.Int("loaded", r.Loaded),
		logger.Int("skipped", r.Skipped),
	}
	if r.Skipped > 0 {
		reasonsJSON, _ := json.Marshal(r.Reasons)
		l.logger.Warn(ctx, "skipped malformed rows", append(fields, logger.String("reasons", string(reasonsJSON)))...)
		return
	}
	l.logger.Debug(ctx, "table loaded", fields...)
}

func readFile[T any](ctx context.Context, path string, read func(io.Reader) ([]T, model.TableReport, error)) ([]T, model.TableReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.TableReport{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, model.TableReport{}, fmt.Errorf("%w: %w", ErrReadTable, err)
	}
	defer func() { _ = f.Close() }()
	return read(f)
}
