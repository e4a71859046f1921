package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pcdshub/happi-to-confluence/internal/hierarchy"
	"github.com/pcdshub/happi-to-confluence/internal/logging"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	"github.com/pcdshub/happi-to-confluence/pkg/ports"
)

// Inventory supplies the entities of a run.
type Inventory interface {
	Load(ctx context.Context) ([]domain.Entity, error)
}

// StaticInventory is an Inventory held in memory.
type StaticInventory []domain.Entity

// Load returns the entities.
func (s StaticInventory) Load(ctx context.Context) ([]domain.Entity, error) {
	return s, nil
}

// Target is where a run writes.
type Target struct {
	Space     string
	RootTitle string
	// Limit caps the number of processed entities when positive.
	Limit int
}

// Report summarises a run.
type Report struct {
	Root        *domain.Page
	State       *domain.RunState
	ViewState   *domain.RunState
	Results     []domain.NodeResult
	ViewResults []domain.NodeResult
	Entities    int
	Skipped     int
}

// Counts tallies all node outcomes, views included.
func (r *Report) Counts() map[domain.Outcome]int {
	counts := make(map[domain.Outcome]int)
	for _, res := range r.Results {
		counts[res.Outcome]++
	}
	for _, res := range r.ViewResults {
		counts[res.Outcome]++
	}
	return counts
}

// Failed reports whether any node failed.
func (r *Report) Failed() bool {
	return r.Counts()[domain.OutcomeFailed] > 0
}

// Orchestrator drives a full run: every entity, then the views.
type Orchestrator struct {
	wiki      ports.Wiki
	target    Target
	inventory Inventory
	layout    *hierarchy.Set
	builder   *ContextBuilder
	sync      *Synchronizer
	onEntity  func(identifier, variant string)
	logger    *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithEntityHook is called before each entity is synced.
func WithEntityHook(fn func(identifier, variant string)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.onEntity = fn
	}
}

// WithOrchestratorLogger sets the logger.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator wires a run together.
func NewOrchestrator(wiki ports.Wiki, target Target, inventory Inventory, layout *hierarchy.Set, builder *ContextBuilder, sync *Synchronizer, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		wiki:      wiki,
		target:    target,
		inventory: inventory,
		layout:    layout,
		builder:   builder,
		sync:      sync,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run syncs every entity and then the views. Node failures are reported in
// the Report; only setup failures and cancellation return an error.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	root, err := o.wiki.GetPageByTitle(ctx, o.target.Space, o.target.RootTitle)
	if err != nil {
		if errors.Is(err, domain.ErrPageNotFound) {
			return nil, fmt.Errorf("%w: %q in space %s", domain.ErrRootPageNotFound, o.target.RootTitle, o.target.Space)
		}
		return nil, fmt.Errorf("failed to get root page: %w", err)
	}
	o.logger.Info("Found root page", "title", root.Title, "page_id", root.ID, "space", o.target.Space)

	entities, err := o.inventory.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	report := &Report{
		Root:      root,
		State:     domain.NewRunState(),
		ViewState: domain.NewRunState(),
	}

	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if o.target.Limit > 0 && report.Entities >= o.target.Limit {
			o.logger.Info("Entity limit reached", "limit", o.target.Limit)
			break
		}
		if e.DeviceClass == "" {
			o.logger.Debug("Skipping entity without device class", "identifier", e.Name)
			report.Skipped++
			continue
		}

		rc := o.builder.Build(ctx, e, report.State)
		variant, tree := o.layout.Select(e.Name, rc.String(domain.KeyDeviceClass))
		o.logger.Info("Rendering entity", "identifier", e.Name, "device_class", e.DeviceClass, "variant", variant)
		if o.onEntity != nil {
			o.onEntity(e.Name, variant)
		}

		results := o.sync.Sync(ctx, tree, root, rc, report.State)
		report.Results = append(report.Results, results...)
		report.State.SetItem(e.Name, e.Raw)
		report.Entities++
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	for _, view := range o.layout.Views {
		rc := ViewContext(view.Template.Filename, report.State, report.ViewState)
		o.logger.Info("Rendering view", "template", view.Template.Filename)
		results := o.sync.Sync(ctx, hierarchy.Tree{view}, root, rc, report.ViewState)
		report.ViewResults = append(report.ViewResults, results...)
	}

	return report, nil
}
