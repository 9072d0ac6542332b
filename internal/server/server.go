// Package server exposes the computed dashboard metrics over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/aps-wallet/agentperf/internal/analytics"
	"github.com/aps-wallet/agentperf/internal/ingest"
	"github.com/aps-wallet/agentperf/internal/network"
	"github.com/aps-wallet/agentperf/internal/state"
	"github.com/aps-wallet/agentperf/internal/warehouse"
)

// Config holds configuration for the dashboard server.
type Config struct {
	Port         int
	Watch        bool
	DatabasePath string
	Ingest       ingest.Options
	Params       analytics.Params
	Store        state.Store
	Logger       *slog.Logger
}

// snapshot is one fully computed view of the datasets. Snapshots are
// immutable once published; refresh builds a new one and swaps it in.
type snapshot struct {
	Metrics     *analytics.Metrics    `json:"metrics"`
	Counts      *ingest.Counts        `json:"counts"`
	Network     network.Stats         `json:"network"`
	Hubs        []network.Hub         `json:"hubs"`
	DailyVolume []analytics.DayVolume `json:"daily_volume"`
	ComputedAt  time.Time             `json:"computed_at"`
}

// Server serves the dashboard API and keeps its snapshot fresh.
type Server struct {
	cfg     Config
	logger  *slog.Logger
	current atomic.Pointer[snapshot]
}

// New creates a dashboard server.
func New(cfg Config) *Server {
	return &Server{cfg: cfg, logger: cfg.Logger}
}

// Serve computes the initial snapshot, then serves until the context
// is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.refresh(ctx); err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("starting dashboard server", "addr", fmt.Sprintf("http://localhost:%d", s.cfg.Port))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	s.routes(r)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down dashboard server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// refresh loads the datasets, recomputes everything, and publishes a
// new snapshot.
func (s *Server) refresh(ctx context.Context) error {
	wh, err := warehouse.Open(ctx, s.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = wh.Close() }()

	counts, err := ingest.Load(ctx, wh, s.cfg.Ingest, s.logger)
	if err != nil {
		return err
	}

	analyzer := analytics.New(wh, s.cfg.Params, s.logger)
	metrics, err := analyzer.Compute(ctx)
	if err != nil {
		return err
	}

	daily, err := analyzer.DailyVolume(ctx, 365)
	if err != nil {
		return err
	}

	graph, err := network.Build(ctx, wh)
	if err != nil {
		return err
	}

	snap := &snapshot{
		Metrics:     metrics,
		Counts:      counts,
		Network:     graph.Stats(),
		Hubs:        graph.TopHubs(0),
		DailyVolume: daily,
		ComputedAt:  time.Now().UTC(),
	}
	s.current.Store(snap)

	s.logger.Info("snapshot refreshed",
		"year", metrics.Year,
		"transactions", metrics.TotalTransactions,
		"deposits", counts.DepositRows)
	return nil
}

// watchFiles re-ingests when a source CSV changes.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	watched := map[string]bool{
		filepath.Clean(s.cfg.Ingest.OnboardingPath):   true,
		filepath.Clean(s.cfg.Ingest.TransactionsPath): true,
	}
	dirs := map[string]bool{}
	for path := range watched {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			s.logger.Error("failed to watch data directory", "dir", dir, "error", err)
			// Continue without watching this directory
		}
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(500*time.Millisecond, func() {
				s.logger.Info("dataset changed, refreshing", "file", event.Name)
				if err := s.refresh(ctx); err != nil {
					s.logger.Error("refresh failed", "error", err)
				}
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}
