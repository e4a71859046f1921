package runtime

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/pcdshub/happi-to-confluence/internal/compiler"
	"github.com/pcdshub/happi-to-confluence/internal/logging"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	"github.com/pcdshub/happi-to-confluence/pkg/ports"
)

// RelatedResolver finds related pages for an entity.
type RelatedResolver interface {
	Resolve(ctx context.Context, entityID, className string) []domain.RelatedPage
}

// ContextBuilder assembles the render context of an entity.
type ContextBuilder struct {
	classes       ports.ClassProvider
	related       RelatedResolver
	docstring     *compiler.Template
	titleMarker   string
	userSuffix    string
	confluenceURL string
	logger        *slog.Logger
}

// ContextOption configures a ContextBuilder.
type ContextOption func(*ContextBuilder)

// WithRelatedResolver enables related-page lookups.
func WithRelatedResolver(r RelatedResolver) ContextOption {
	return func(b *ContextBuilder) {
		b.related = r
	}
}

// WithDocstringTemplate sets the template that formats class docstrings.
func WithDocstringTemplate(t *compiler.Template) ContextOption {
	return func(b *ContextBuilder) {
		b.docstring = t
	}
}

// WithTitleAffixes overrides the generated-page marker and the user-page suffix.
func WithTitleAffixes(marker, userSuffix string) ContextOption {
	return func(b *ContextBuilder) {
		b.titleMarker = marker
		b.userSuffix = userSuffix
	}
}

// WithConfluenceURL sets the base URL offered to templates for links.
func WithConfluenceURL(url string) ContextOption {
	return func(b *ContextBuilder) {
		b.confluenceURL = url
	}
}

// WithContextLogger sets the logger.
func WithContextLogger(logger *slog.Logger) ContextOption {
	return func(b *ContextBuilder) {
		b.logger = logger
	}
}

// NewContextBuilder creates a builder resolving classes through classes.
func NewContextBuilder(classes ports.ClassProvider, opts ...ContextOption) *ContextBuilder {
	b := &ContextBuilder{
		classes:     classes,
		titleMarker: domain.DefaultPageTitleMarker,
		userSuffix:  domain.DefaultUserPageSuffix,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the render context of e. The context references state, so
// templates see pages recorded earlier in the run.
func (b *ContextBuilder) Build(ctx context.Context, e domain.Entity, state *domain.RunState) domain.RenderContext {
	className, doc, kwargs := b.resolveClass(ctx, e)

	item := e.Raw
	if item == nil {
		item = map[string]any{}
	}

	var related []domain.RelatedPage
	if b.related != nil {
		related = b.related.Resolve(ctx, e.Name, className)
	}

	return domain.RenderContext{
		domain.KeyIdentifier:        e.Name,
		domain.KeyDeviceName:        e.Name,
		domain.KeyHappiItem:         item,
		domain.KeyDeviceClass:       className,
		domain.KeyDeviceClassDoc:    b.renderDocstring(e, doc, kwargs, item),
		domain.KeyRelevantPVsByKind: GroupRecords(e.Records),
		domain.KeyPageTitleMarker:   b.titleMarker,
		domain.KeyUserPageSuffix:    b.userSuffix,
		domain.KeyRelatedPages:      nonNilPages(related),
		domain.KeyState:             state.Pages,
		domain.KeyItemState:         state.ItemState(e.Name),
		domain.KeyConfluenceURL:     b.confluenceURL,
	}
}

func (b *ContextBuilder) resolveClass(ctx context.Context, e domain.Entity) (string, string, map[string]any) {
	fallback := e.DeviceClass[strings.LastIndex(e.DeviceClass, ".")+1:]
	if b.classes == nil {
		return fallback, "None", map[string]any{}
	}

	info, err := b.classes.Lookup(ctx, e.DeviceClass)
	if err != nil {
		if !errors.Is(err, domain.ErrClassNotFound) {
			b.logger.Warn("Class lookup failed", "identifier", e.Name, "device_class", e.DeviceClass, "error", err)
		} else {
			b.logger.Debug("Unknown device class", "identifier", e.Name, "device_class", e.DeviceClass)
		}
		return fallback, "None", map[string]any{}
	}

	name := info.Name
	if name == "" {
		name = fallback
	}
	doc := info.Doc
	if strings.TrimSpace(doc) == "" {
		doc = "None"
	}

	kwargs, strict := BindArguments(info.Parameters, e.Args, e.Kwargs, e.Raw)
	if !strict {
		b.logger.Debug("Arguments do not bind to class signature; merged declared kwargs", "identifier", e.Name, "device_class", e.DeviceClass)
	}
	return name, doc, kwargs
}

func (b *ContextBuilder) renderDocstring(e domain.Entity, doc string, kwargs, item map[string]any) string {
	if b.docstring == nil {
		return doc
	}
	_, body, err := b.docstring.Render(domain.RenderContext{
		domain.KeyDocstringSections: ParseDocstring(doc),
		domain.KeyDocstringKwargs:   kwargs,
		domain.KeyHappiItem:         item,
	})
	if err != nil {
		b.logger.Error("Failed to render docstring", "identifier", e.Name, "template", b.docstring.Filename, "error", err)
		return doc
	}
	return body
}

// GroupRecords groups records by kind, sorted by name, with any "Kind."
// prefix dropped. The "hinted" and "normal" groups always exist when there
// is at least one record.
func GroupRecords(records []domain.Record) map[string][]domain.Record {
	if len(records) == 0 {
		return map[string][]domain.Record{}
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b domain.Record) int { return strings.Compare(a.Name, b.Name) })

	groups := map[string][]domain.Record{
		"hinted": {},
		"normal": {},
	}
	for _, r := range sorted {
		kind := strings.ReplaceAll(r.Kind, "Kind.", "")
		groups[kind] = append(groups[kind], r)
	}
	return groups
}

// ViewContext is the render context of an aggregate view page.
func ViewContext(filename string, all, view *domain.RunState) domain.RenderContext {
	return domain.RenderContext{
		domain.KeyIdentifier:   filename,
		domain.KeyAllItemState: all.Pages,
		domain.KeyAllItems:     all.Items,
		domain.KeyViewState:    view.Pages,
	}
}

func nonNilPages(pages []domain.RelatedPage) []domain.RelatedPage {
	if pages == nil {
		return []domain.RelatedPage{}
	}
	return pages
}
