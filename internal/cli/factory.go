package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pcdshub/happi-to-confluence/internal/compiler"
	"github.com/pcdshub/happi-to-confluence/internal/config"
	"github.com/pcdshub/happi-to-confluence/internal/diff"
	"github.com/pcdshub/happi-to-confluence/internal/hierarchy"
	"github.com/pcdshub/happi-to-confluence/internal/inventory"
	"github.com/pcdshub/happi-to-confluence/internal/metrics"
	"github.com/pcdshub/happi-to-confluence/internal/related"
	"github.com/pcdshub/happi-to-confluence/internal/runtime"
	"github.com/pcdshub/happi-to-confluence/pkg/adapters/confluence"
	"github.com/pcdshub/happi-to-confluence/pkg/adapters/file"
	"github.com/pcdshub/happi-to-confluence/pkg/adapters/memory"
	"github.com/pcdshub/happi-to-confluence/pkg/adapters/redis"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	"github.com/pcdshub/happi-to-confluence/pkg/ports"
)

// ErrMissingToken is returned when a live run has no Confluence token.
var ErrMissingToken = errors.New("confluence token is required (set CONFLUENCE_TOKEN) unless --dry-run is used")

// App is one fully wired run.
type App struct {
	Orchestrator *runtime.Orchestrator
	Layout       *hierarchy.Set
	Target       runtime.Target
	Wiki         ports.Wiki
	Metrics      *metrics.Collector
	StateFile    *file.StateFile

	closers []func() error
}

// Close releases connections held by the app.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// loadLayout parses the templates and binds them into the page trees.
func loadLayout(cfg *config.Config) (*hierarchy.Set, error) {
	parser := compiler.NewParser(compiler.WithGenerationLabel(cfg.Labels.Generated))
	templates, err := parser.LoadDir(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("no templates found in %s", cfg.TemplatesDir)
	}
	return hierarchy.LoadFile(cfg.HierarchyFile, templates)
}

// createApp wires every component of a run from configuration.
func createApp(cfg *config.Config, opts RunOptions, collector *metrics.Collector, logger *slog.Logger) (*App, error) {
	target := cfg.Target(opts.Production)
	rt := runtime.Target{Space: target.Space, RootTitle: target.RootTitle, Limit: target.Limit}
	if opts.Limit > 0 {
		rt.Limit = opts.Limit
	}

	layout, err := loadLayout(cfg)
	if err != nil {
		return nil, err
	}

	loader, err := inventory.NewLoader(inventory.WithRecordSelector(cfg.RecordSelector))
	if err != nil {
		return nil, err
	}

	app := &App{
		Layout:    layout,
		Target:    rt,
		Metrics:   collector,
		StateFile: file.NewStateFile(cfg.StateFile),
	}

	// 1. Wiki
	if opts.DryRun {
		wiki := memory.NewWiki()
		wiki.Seed(domain.Page{Title: rt.RootTitle, Space: rt.Space})
		app.Wiki = wiki
	} else {
		if cfg.Confluence.Token == "" {
			return nil, ErrMissingToken
		}
		app.Wiki = confluence.New(cfg.Confluence.URL, cfg.Confluence.Token,
			confluence.WithTimeout(cfg.Confluence.Timeout),
			confluence.WithLogger(logger),
		)
	}

	// 2. Class catalog
	var classes ports.ClassProvider
	if cfg.ClassCatalog != "" {
		catalog, err := file.LoadCatalog(cfg.ClassCatalog)
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded class catalog", "path", cfg.ClassCatalog, "classes", catalog.Len())
		classes = catalog
	}

	// 3. Related pages, memoized in redis when configured
	var cache ports.RelatedCache = memory.NewCache()
	if cfg.Redis.Addr != "" {
		rc := redis.New(cfg.Redis.Addr, redis.WithTTL(cfg.Redis.TTL))
		app.closers = append(app.closers, rc.Close)
		cache = rc
	}
	resolver := related.New(app.Wiki, cache,
		related.WithLimit(cfg.Related.Limit),
		related.WithPageTitleMarker(cfg.PageTitleMarker),
		related.WithGenerationLabel(cfg.Labels.Generated),
		related.WithLookupHook(collector.ObserveRelatedLookup),
		related.WithLogger(logger),
	)

	builder := runtime.NewContextBuilder(classes,
		runtime.WithRelatedResolver(resolver),
		runtime.WithDocstringTemplate(layout.Docstring),
		runtime.WithTitleAffixes(cfg.PageTitleMarker, cfg.UserPageSuffix),
		runtime.WithConfluenceURL(cfg.Confluence.URL),
		runtime.WithContextLogger(logger),
	)

	// 4. Synchronizer
	hooks := collector.Hooks()
	if opts.Debug {
		hooks = combineHooks(hooks, createDebugHooks(logger))
	}
	syncer := runtime.NewSynchronizer(app.Wiki, rt.Space,
		runtime.WithAuditor(diff.NewAuditor(osfs.New(cfg.SourcePath), diff.WithAuditLogger(logger))),
		runtime.WithSpool(file.NewSpool(cfg.SpoolPath)),
		runtime.WithLabels(cfg.Labels.Generated, cfg.Labels.NoOverwrite),
		runtime.WithLifecycleHooks(hooks),
		runtime.WithLogger(logger),
	)

	app.Orchestrator = runtime.NewOrchestrator(app.Wiki, rt,
		&inventory.File{Path: cfg.Inventory, Loader: loader},
		layout, builder, syncer,
		runtime.WithEntityHook(collector.ObserveEntity),
		runtime.WithOrchestratorLogger(logger),
	)
	return app, nil
}
