package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/pcdshub/happi-to-confluence/internal/config"
	"github.com/pcdshub/happi-to-confluence/internal/metrics"
)

// RunWatch runs once, then again every time a template or the hierarchy
// changes, until ctx is cancelled. Broken templates are logged and the
// watcher keeps waiting for a fix.
func RunWatch(ctx context.Context, opts RunOptions) error {
	opts.defaults()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := createLogger(opts.Stderr, cfg.Logging.Level, opts.Debug)
	collector := metrics.New()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range watchDirs(cfg) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	logger.Info("Starting Watcher", "dirs", watchDirs(cfg))

	if cfg.Metrics.Listen != "" {
		srv := serveMetrics(cfg.Metrics.Listen, collector, logger)
		defer srv.Close()
	}

	trigger := debounce(ctx, watcher, cfg.Watch.Debounce, logger)
	for {
		if _, err := runOnce(ctx, cfg, opts, collector, logger); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Error("Run failed", "err", err)
		}
		printSystemMessage(opts.Stdout, "Waiting for changes...")

		select {
		case <-ctx.Done():
			logger.Info("Stopping watcher")
			return nil
		case name, ok := <-trigger:
			if !ok {
				return nil
			}
			printSystemMessage(opts.Stdout, "Change detected in '%s'.", name)
		}
	}
}

func watchDirs(cfg *config.Config) []string {
	dirs := []string{cfg.TemplatesDir}
	if cfg.HierarchyFile != "" {
		if dir := filepath.Dir(cfg.HierarchyFile); dir != filepath.Clean(cfg.TemplatesDir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// debounce folds bursts of relevant file events into one notification
// carrying the last file name, sent once the burst has been quiet for wait.
func debounce(ctx context.Context, watcher *fsnotify.Watcher, wait time.Duration, logger *slog.Logger) <-chan string {
	out := make(chan string, 1)
	go func() {
		defer close(out)
		var (
			timer   *time.Timer
			timerC  <-chan time.Time
			pending string
		)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !relevant(event) {
					continue
				}
				pending = event.Name
				if timer == nil {
					timer = time.NewTimer(wait)
				} else {
					timer.Reset(wait)
				}
				timerC = timer.C
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error", "err", err)
			case <-timerC:
				timerC = nil
				select {
				case out <- pending:
				default:
					// A run is already queued.
				}
			}
		}
	}()
	return out
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	switch filepath.Ext(event.Name) {
	case ".template", ".yaml", ".yml":
		return true
	}
	return false
}

func serveMetrics(addr string, collector *metrics.Collector, logger *slog.Logger) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "err", err)
		}
	}()
	return srv
}
