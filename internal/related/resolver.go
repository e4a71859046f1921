// Package related finds existing wiki pages worth linking from a device page.
package related

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pcdshub/happi-to-confluence/internal/logging"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	"github.com/pcdshub/happi-to-confluence/pkg/ports"
)

// DefaultLimit caps the number of search hits considered per entity.
const DefaultLimit = 5

// Lookup results reported to the lookup hook.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

// Resolver searches the wiki for pages whose title mentions an entity or
// its class, drops generated and checkout pages, and memoizes the result.
type Resolver struct {
	wiki            ports.Wiki
	cache           ports.RelatedCache
	limit           int
	marker          string
	generationLabel string
	onLookup        func(result string)
	logger          *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLimit sets the maximum number of search hits.
func WithLimit(limit int) Option {
	return func(r *Resolver) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

// WithPageTitleMarker sets the marker that identifies generated titles.
func WithPageTitleMarker(marker string) Option {
	return func(r *Resolver) {
		r.marker = marker
	}
}

// WithGenerationLabel sets the label that identifies generated pages.
func WithGenerationLabel(label string) Option {
	return func(r *Resolver) {
		r.generationLabel = label
	}
}

// WithLookupHook registers a callback invoked once per Resolve call.
func WithLookupHook(fn func(result string)) Option {
	return func(r *Resolver) {
		r.onLookup = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver that memoizes lookups in cache.
func New(wiki ports.Wiki, cache ports.RelatedCache, opts ...Option) *Resolver {
	r := &Resolver{
		wiki:            wiki,
		cache:           cache,
		limit:           DefaultLimit,
		marker:          domain.DefaultPageTitleMarker,
		generationLabel: domain.DefaultGenerationLabel,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the related pages of an entity. Lookup failures yield an
// empty list that is not memoized, so the next call retries.
func (r *Resolver) Resolve(ctx context.Context, entityID, className string) []domain.RelatedPage {
	if pages, ok, err := r.cache.Get(ctx, entityID); err != nil {
		r.logger.Warn("Related-page cache read failed", "identifier", entityID, "error", err)
	} else if ok {
		r.report(LookupHit)
		return pages
	}

	pages, err := r.search(ctx, entityID, className)
	if err != nil {
		r.report(LookupError)
		r.logger.Error("Related-page lookup failed", "identifier", entityID, "error", err)
		return nil
	}
	r.report(LookupMiss)

	if err := r.cache.Set(ctx, entityID, pages); err != nil {
		r.logger.Warn("Related-page cache write failed", "identifier", entityID, "error", err)
	}
	r.logger.Debug("Found related pages", "identifier", entityID, "count", len(pages))
	return pages
}

func (r *Resolver) search(ctx context.Context, entityID, className string) ([]domain.RelatedPage, error) {
	hits, err := r.wiki.SearchTitles(ctx, []string{entityID, className}, r.limit)
	if err != nil {
		return nil, err
	}

	pages := make([]domain.RelatedPage, 0, len(hits))
	for _, hit := range hits {
		labels, err := r.wiki.GetLabels(ctx, hit.ID)
		if err != nil {
			return nil, err
		}
		page := domain.RelatedPage{ID: hit.ID, Title: hit.Title, Space: hit.Space, Labels: labels}
		if r.skip(page) {
			continue
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (r *Resolver) skip(page domain.RelatedPage) bool {
	switch {
	case r.marker != "" && strings.Contains(page.Title, r.marker):
		return true
	case strings.Contains(strings.ToLower(page.Title), "checkout"):
		return true
	case page.HasLabel(r.generationLabel):
		return true
	}
	return false
}

func (r *Resolver) report(result string) {
	if r.onLookup != nil {
		r.onLookup(result)
	}
}
