package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pcdshub/happi-to-confluence/internal/diff"
	"github.com/pcdshub/happi-to-confluence/internal/hierarchy"
	"github.com/pcdshub/happi-to-confluence/internal/logging"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	"github.com/pcdshub/happi-to-confluence/pkg/ports"
)

// Auditor keeps before/after copies of pages that are about to change.
type Auditor interface {
	Record(title, existing, rendered string)
}

// Spooler keeps bodies that failed to reach the wiki.
type Spooler interface {
	Write(title, body string) (string, error)
}

// Synchronizer walks a page tree and makes the wiki match it.
type Synchronizer struct {
	wiki             ports.Wiki
	space            string
	generationLabel  string
	noOverwriteLabel string
	auditor          Auditor
	spool            Spooler
	hooks            domain.LifecycleHooks
	logger           *slog.Logger
}

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithAuditor records every changed page.
func WithAuditor(a Auditor) SyncOption {
	return func(s *Synchronizer) {
		s.auditor = a
	}
}

// WithSpool keeps bodies of failed writes.
func WithSpool(sp Spooler) SyncOption {
	return func(s *Synchronizer) {
		s.spool = sp
	}
}

// WithLabels overrides the generation and no-overwrite labels.
func WithLabels(generation, noOverwrite string) SyncOption {
	return func(s *Synchronizer) {
		s.generationLabel = generation
		s.noOverwriteLabel = noOverwrite
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) SyncOption {
	return func(s *Synchronizer) {
		s.hooks = hooks
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SyncOption {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// NewSynchronizer creates a synchronizer writing into space.
func NewSynchronizer(wiki ports.Wiki, space string, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		wiki:             wiki,
		space:            space,
		generationLabel:  domain.DefaultGenerationLabel,
		noOverwriteLabel: domain.DefaultNoOverwriteLabel,
		logger:           logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync renders tree below parent, depth-first and pre-order, and returns one
// result per visited node. Nodes that do not resolve to a page are not
// descended into; their siblings are still processed.
func (s *Synchronizer) Sync(ctx context.Context, tree hierarchy.Tree, parent *domain.Page, rc domain.RenderContext, state *domain.RunState) []domain.NodeResult {
	var results []domain.NodeResult
	s.sync(ctx, tree, parent, rc, state, &results)
	return results
}

func (s *Synchronizer) sync(ctx context.Context, nodes []*hierarchy.Node, parent *domain.Page, rc domain.RenderContext, state *domain.RunState, results *[]domain.NodeResult) {
	for _, node := range nodes {
		s.emitNodeEnter(ctx, rc, node)
		start := time.Now()

		res, page := s.syncNode(ctx, node, parent, rc)
		if page != nil {
			state.Record(rc.Identifier(), node.Template.Filename, &domain.PageInfo{
				Page:     *page,
				Template: node.Template.Filename,
			})
		}
		*results = append(*results, res)
		s.emitNodeLeave(ctx, rc, node, &res, time.Since(start))

		if page != nil {
			s.sync(ctx, node.Children, page, rc, state, results)
		}
	}
}

// syncNode resolves one node. A nil page means the subtree is skipped.
func (s *Synchronizer) syncNode(ctx context.Context, node *hierarchy.Node, parent *domain.Page, rc domain.RenderContext) (domain.NodeResult, *domain.Page) {
	filename := node.Template.Filename
	res := domain.NodeResult{Identifier: rc.Identifier(), Template: filename}
	log := s.logger.With("identifier", res.Identifier, "template", filename)

	log.Debug("Rendering")
	titles, body, err := node.Template.Render(rc)
	if err != nil {
		log.Error("Failed to render template", "error", err)
		return s.fail(res, err), nil
	}

	title, existing, labels, err := s.resolveTitle(ctx, titles)
	if err != nil {
		if errors.Is(err, domain.ErrNoAvailableTitle) {
			log.Error("No available titles", "titles", titles)
			res.Outcome = domain.OutcomeSkipped
			res.Err = err
			return res, nil
		}
		log.Error("Failed to look up page", "error", err)
		return s.fail(res, err), nil
	}
	res.Title = title
	log = log.With("title", title)

	allowOverwrite := node.Options.AllowsOverwrite() && !slices.Contains(labels, s.noOverwriteLabel)

	var page *domain.Page
	switch {
	case existing != nil && !allowOverwrite:
		log.Info("Keeping existing page; overwrite disabled", "page_id", existing.ID)
		res.Outcome = domain.OutcomeKept
		page = existing
	default:
		existingBody := ""
		if existing != nil {
			existingBody = existing.Body
		}
		cmp := diff.Compare(existingBody, body)
		if existing != nil && cmp.Equivalent {
			log.Info("Existing page is up to date", "page_id", existing.ID)
			res.Outcome = domain.OutcomeUpToDate
			page = existing
			break
		}

		if s.auditor != nil {
			s.auditor.Record(title, existingBody, body)
		}

		written, err := s.write(ctx, parent, existing, title, body)
		if err != nil {
			log.Error("Failed to write page", "error", err)
			s.spoolBody(log, title, body)
			return s.fail(res, err), nil
		}
		page = written
		if existing == nil {
			res.Outcome = domain.OutcomeCreated
			log.Info("Created page", "page_id", page.ID)
		} else {
			res.Outcome = domain.OutcomeUpdated
			log.Info("Updated page", "page_id", page.ID, "changes", len(cmp.Changes()))
		}
	}

	res.PageID = page.ID
	page.Labels = s.applyLabels(ctx, log, page, labels, node.Template.Labels)
	return res, page
}

// resolveTitle scans title candidates in order. A page we generated wins;
// the first free title wins; a foreign page moves the scan on.
func (s *Synchronizer) resolveTitle(ctx context.Context, titles []string) (string, *domain.Page, []string, error) {
	for _, title := range titles {
		page, err := s.wiki.GetPageByTitle(ctx, s.space, title)
		if errors.Is(err, domain.ErrPageNotFound) {
			return title, nil, nil, nil
		}
		if err != nil {
			return "", nil, nil, err
		}

		labels, err := s.wiki.GetLabels(ctx, page.ID)
		if err != nil {
			return "", nil, nil, err
		}
		if slices.Contains(labels, s.generationLabel) {
			s.logger.Debug("Found a page we previously generated", "title", title, "labels", labels)
			return title, page, labels, nil
		}
		s.logger.Debug("Title taken by a page we did not generate", "title", title, "page_id", page.ID)
	}
	return "", nil, nil, fmt.Errorf("%w: %v", domain.ErrNoAvailableTitle, titles)
}

func (s *Synchronizer) write(ctx context.Context, parent, existing *domain.Page, title, body string) (*domain.Page, error) {
	parentID := ""
	if parent != nil {
		parentID = parent.ID
	}
	// A page may be asked to become its own child; keep it where it is.
	if existing != nil && existing.ID == parentID {
		actual, err := s.wiki.GetParentID(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve parent of %s: %w", existing.ID, err)
		}
		parentID = actual
	}
	return s.wiki.CreateOrUpdate(ctx, parentID, s.space, title, body)
}

func (s *Synchronizer) applyLabels(ctx context.Context, log *slog.Logger, page *domain.Page, current, wanted []string) []string {
	labels := slices.Clone(current)
	for _, l := range page.Labels {
		if !slices.Contains(labels, l) {
			labels = append(labels, l)
		}
	}
	for _, label := range wanted {
		if err := s.wiki.SetLabel(ctx, page.ID, label); err != nil {
			log.Warn("Failed to set label", "label", label, "page_id", page.ID, "error", err)
			continue
		}
		if !slices.Contains(labels, label) {
			labels = append(labels, label)
		}
	}
	return labels
}

func (s *Synchronizer) spoolBody(log *slog.Logger, title, body string) {
	if s.spool == nil {
		return
	}
	path, err := s.spool.Write(title, body)
	if err != nil {
		log.Error("Failed to spool page body", "error", err)
		return
	}
	log.Info("Spooled page body", "path", path)
}

func (s *Synchronizer) fail(res domain.NodeResult, err error) domain.NodeResult {
	res.Outcome = domain.OutcomeFailed
	res.Err = err
	return res
}

func (s *Synchronizer) emitNodeEnter(ctx context.Context, rc domain.RenderContext, node *hierarchy.Node) {
	if s.hooks.OnNodeEnter == nil {
		return
	}
	s.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeEnter},
		Identifier: rc.Identifier(),
		Template:   node.Template.Filename,
	})
}

func (s *Synchronizer) emitNodeLeave(ctx context.Context, rc domain.RenderContext, node *hierarchy.Node, res *domain.NodeResult, d time.Duration) {
	if s.hooks.OnNodeLeave == nil {
		return
	}
	s.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeLeave},
		Identifier: rc.Identifier(),
		Template:   node.Template.Filename,
		Result:     res,
		Duration:   d,
	})
}
