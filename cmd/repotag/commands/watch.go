package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/repotag/internal/config"
	"git.home.luguber.info/inful/repotag/internal/logfields"
	"git.home.luguber.info/inful/repotag/internal/metrics"
	"git.home.luguber.info/inful/repotag/internal/structure"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	MetricsAddr string `help:"Serve Prometheus metrics on this address (overrides settings)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	s, err := root.LoadSettings()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return runWatch(ctx, s, w.MetricsAddr, g.logger())
}

// runWatch keeps the configuration current until ctx is cancelled.
func runWatch(ctx context.Context, s *config.Settings, metricsAddr string, logger *slog.Logger) error {
	debounce, err := s.DebounceDuration()
	if err != nil {
		return err
	}
	interval, err := s.IntervalDuration()
	if err != nil {
		return err
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var server *http.Server
	if metricsAddr == "" && s.Metrics.Enabled {
		metricsAddr = s.Metrics.Address
	}
	if metricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		mux := http.NewServeMux()
		mux.Handle(s.Metrics.Path, metrics.HTTPHandler(reg))
		server = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	mgr, err := newManager(s, newMatcher(s), recorder, logger)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.Info("Configuration loaded", logfields.Count(mgr.Config().Len()))

	// File watching is implied when no periodic reload is configured.
	if s.HotReload.Enabled || interval == 0 {
		if err := mgr.StartWatching(ctx, debounce); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer func() { _ = mgr.StopWatching() }()
	}

	var sched *structure.Scheduler
	if interval > 0 {
		sched, err = structure.NewScheduler(mgr, logger)
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		if _, err := sched.SchedulePeriodicReload(interval); err != nil {
			return err
		}
		sched.Start(ctx)
	}

	errChan := make(chan error, 1)
	if server != nil {
		go func() {
			logger.Info("Serving metrics", slog.String("address", metricsAddr), slog.String("path", s.Metrics.Path))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	logger.Info("Watching configuration, waiting for shutdown signal...")
	var runErr error
	select {
	case err := <-errChan:
		runErr = fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping watcher...")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if sched != nil {
		if err := sched.Stop(stopCtx); err != nil {
			logger.Warn("Scheduler shutdown failed", logfields.Error(err))
		}
	}
	if server != nil {
		if err := server.Shutdown(stopCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", logfields.Error(err))
		}
	}
	logger.Info("Watcher stopped")
	return runErr
}
