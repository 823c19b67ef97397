// Package app assembles the scan server runtime: storage, the scan
// service, the background job pool and the HTTP listener, with a
// readiness flag that tracks the lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
	"github.com/sitevitals/sitevitals/pkg/config"
	"github.com/sitevitals/sitevitals/pkg/scan"
	"github.com/sitevitals/sitevitals/pkg/server/api"
	"github.com/sitevitals/sitevitals/pkg/server/httpx"
	"github.com/sitevitals/sitevitals/pkg/server/jobs"
	"github.com/sitevitals/sitevitals/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// App is the assembled server. Create with New, drive with Run.
type App struct {
	cfg     config.Config
	backend storage.Backend
	service *scan.Service
	manager *jobs.Manager
	ready   *atomic.Bool
	server  *http.Server
}

// New wires the server from configuration. The analyzer client and the
// storage backend are injected so tests can substitute fakes.
func New(cfg config.Config, backend storage.Backend, client analyzer.Client) (*App, error) {
	if backend == nil {
		return nil, errors.New("storage backend is required")
	}
	if client == nil {
		client = analyzer.NewHTTPClient(cfg.Analyzers.Endpoints())
	}

	a := &App{
		cfg:     cfg,
		backend: backend,
		ready:   &atomic.Bool{},
	}
	a.service = scan.NewService(client).WithStorage(backend)
	a.manager = jobs.NewManager(cfg.Server.Concurrency, cfg.Server.QueueSize, a.runJob).
		WithAbandonHandler(a.abandonJob)

	deps := &api.Deps{
		Storage: backend,
		Jobs:    a.manager,
		Ready:   a.ready,
	}
	a.server = &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Addr, strconv.Itoa(cfg.Server.Port)),
		Handler:      httpx.NewRouter(cfg.Server, deps),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}
	return a, nil
}

// Run starts the job pool and the HTTP listener and blocks until the
// context is canceled or the listener fails. Shutdown drains in-flight
// requests and jobs, bounded by shutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	logger := log.With().Str("component", "server.app").Logger()

	if err := a.backend.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	if err := a.manager.Start(ctx); err != nil {
		return fmt.Errorf("starting job manager: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", a.server.Addr).Msg("HTTP server listening")
		serveErr <- a.server.ListenAndServe()
	}()

	a.ready.Store(true)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutdown requested")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	// Flip readiness first so probes fail while connections drain.
	a.ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.manager.Stop(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Job manager did not drain before deadline")
	}
	if err := a.backend.Close(); err != nil {
		logger.Warn().Err(err).Msg("Closing storage backend")
	}

	logger.Info().Msg("Server stopped")
	return runErr
}

// runJob executes one queued scan. Failures are recorded on the scan
// record; they never propagate to the worker.
func (a *App) runJob(ctx context.Context, job jobs.Job) {
	logger := log.With().
		Str("component", "server.app").
		Str("scan_id", job.ScanID).
		Logger()

	result, err := a.service.Run(ctx, job.Params)
	if err != nil {
		logger.Error().Err(err).Msg("Scan job failed")
		a.markFailed(ctx, job.ScanID, err)
		return
	}
	logger.Info().
		Int("overall_score", result.Report.OverallScore).
		Int("issues", len(result.Report.TopIssues)).
		Msg("Scan job completed")
}

// abandonJob records a terminal status for a queued scan that never ran
// because the server shut down first.
func (a *App) abandonJob(job jobs.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.markFailed(ctx, job.ScanID, errors.New("server shut down before the scan started"))
}

func (a *App) markFailed(ctx context.Context, scanID string, cause error) {
	status := storage.StatusFailed
	msg := cause.Error()
	err := a.backend.Scans().Update(ctx, scanID, storage.ScanUpdates{
		Status:       &status,
		ErrorMessage: &msg,
	})
	if err != nil {
		log.Warn().
			Str("component", "server.app").
			Str("scan_id", scanID).
			Err(err).
			Msg("Could not record scan failure")
	}
}
