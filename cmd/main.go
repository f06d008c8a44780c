package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/paddock/internal/adapters/http/api"
	"github.com/okian/paddock/internal/adapters/http/site"
	"github.com/okian/paddock/internal/adapters/http/swagger"
	"github.com/okian/paddock/internal/adapters/ingest"
	service "github.com/okian/paddock/internal/app"
	"github.com/okian/paddock/internal/config"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithJSON(cfg.LogJSON)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	lg := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		lg.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, lg)
	if err := svc.Start(ctx); err != nil {
		lg.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, cfg.FocusDriver),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		lg.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	lg.Info(ctx, "server stopped")
}

// newService wires the ingest loader and the aggregation service from cfg.
func newService(cfg *config.Config, lg logger.Logger) *service.Service {
	fetcher := ingest.NewFetcher(
		ingest.WithFetchTimeout(cfg.FetchTimeout()),
		ingest.WithFetchRetries(cfg.FetchRetries),
		ingest.WithFetchLogger(lg.Named("fetch")),
	)
	loader := ingest.NewLoader(cfg.DataDir,
		ingest.WithLayoutFile(cfg.LayoutFile),
		ingest.WithFatalitiesURL(cfg.FatalitiesURL),
		ingest.WithFatalitiesFile(cfg.FatalitiesFile),
		ingest.WithFatalityTableIndex(cfg.FatalityTableIndex),
		ingest.WithFetcher(fetcher),
		ingest.WithLoaderLogger(lg.Named("ingest")),
	)
	return service.New(
		service.WithLogger(lg.Named("service")),
		service.WithLoader(loader),
		service.WithFocusDriver(cfg.FocusDriver),
		service.WithComparisonDrivers(cfg.ComparisonDrivers, cfg.DefaultComparison),
		service.WithMonaco(cfg.MonacoPattern, cfg.MonacoFrom, cfg.MonacoTo),
		service.WithFatalityThreshold(cfg.FatalityThresholdYear),
	)
}

// newMux registers the landing page, the API docs and the business routes.
func newMux(ctx context.Context, svc *service.Service, focusDriver string) *http.ServeMux {
	mux := http.NewServeMux()
	site.Register(ctx, mux, focusDriver)
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater samples runtime metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.CollectSystemMetrics()
		}
	}
}
