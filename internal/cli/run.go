package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pcdshub/happi-to-confluence/internal/config"
	"github.com/pcdshub/happi-to-confluence/internal/metrics"
	"github.com/pcdshub/happi-to-confluence/internal/presentation/tui"
	"github.com/pcdshub/happi-to-confluence/internal/runtime"
)

// RunOptions contains all the configuration for the run and watch commands.
type RunOptions struct {
	ConfigPath string
	Debug      bool
	Production bool
	DryRun     bool
	// Limit overrides the target's entity limit when positive.
	Limit int

	Stdout io.Writer
	Stderr io.Writer
}

func (o *RunOptions) defaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// Execute performs one generation run and prints its summary.
func Execute(ctx context.Context, opts RunOptions) (*runtime.Report, error) {
	opts.defaults()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	logger := createLogger(opts.Stderr, cfg.Logging.Level, opts.Debug)

	return runOnce(ctx, cfg, opts, metrics.New(), logger)
}

func runOnce(ctx context.Context, cfg *config.Config, opts RunOptions, collector *metrics.Collector, logger *slog.Logger) (*runtime.Report, error) {
	app, err := createApp(cfg, opts, collector, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Failed to close connections", "err", err)
		}
	}()

	tui.PrintBanner(opts.Stdout, app.Target.Space, app.Target.RootTitle, opts.DryRun)

	report, runErr := app.Orchestrator.Run(ctx)
	if report == nil {
		return nil, runErr
	}

	collector.MarkRunFinished()
	finish(cfg, opts, app, report, logger)
	return report, runErr
}

// finish persists what a run produced. Failures here are logged only; the
// wiki is already up to date.
func finish(cfg *config.Config, opts RunOptions, app *App, report *runtime.Report, logger *slog.Logger) {
	if opts.DryRun {
		logger.Info("Dry run; not saving state", "path", app.StateFile.Path)
	} else if err := app.StateFile.Save(report.State); err != nil {
		logger.Error("Failed to save state", "err", err)
	}

	if cfg.Metrics.Textfile != "" {
		if err := app.Metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Error("Failed to write metrics", "err", err)
		}
	}

	render := tui.NewRenderer()
	out, err := render(tui.Summary(report))
	if err != nil {
		logger.Warn("Failed to render summary", "err", err)
		out = tui.Summary(report)
	}
	fmt.Fprint(opts.Stdout, out)
}
