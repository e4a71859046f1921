package memory

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

// Wiki implements ports.Wiki in memory.
// It backs dry-runs and tests. Safe for concurrent use.
type Wiki struct {
	mu     sync.RWMutex
	pages  map[string]*domain.Page
	next   int
	writes int
}

// NewWiki creates an empty in-memory wiki.
func NewWiki() *Wiki {
	return &Wiki{
		pages: make(map[string]*domain.Page),
	}
}

// Seed stores pages as-is, assigning IDs to pages that lack one.
// Seeding does not count as a write.
func (w *Wiki) Seed(pages ...domain.Page) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, p := range pages {
		if p.ID == "" {
			p.ID = w.newID()
		}
		if p.Version == 0 {
			p.Version = 1
		}
		stored := p
		stored.Labels = slices.Clone(p.Labels)
		w.pages[p.ID] = &stored
	}
}

// Page returns a copy of the page with the given ID.
func (w *Wiki) Page(id string) (*domain.Page, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.pages[id]
	if !ok {
		return nil, false
	}
	return clonePage(p), true
}

// Pages returns copies of every stored page, ordered by ID.
func (w *Wiki) Pages() []*domain.Page {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*domain.Page, 0, len(w.pages))
	for _, p := range w.pages {
		out = append(out, clonePage(p))
	}
	slices.SortFunc(out, func(a, b *domain.Page) int { return compareIDs(a.ID, b.ID) })
	return out
}

// Writes returns the number of CreateOrUpdate calls that changed the wiki.
func (w *Wiki) Writes() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.writes
}

// GetPageByTitle returns the page with the exact title in space.
func (w *Wiki) GetPageByTitle(ctx context.Context, space, title string) (*domain.Page, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if p := w.findLocked(space, title); p != nil {
		return clonePage(p), nil
	}
	return nil, fmt.Errorf("%w: %s/%s", domain.ErrPageNotFound, space, title)
}

// GetLabels returns the labels of a page.
func (w *Wiki) GetLabels(ctx context.Context, pageID string) ([]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.pages[pageID]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", domain.ErrPageNotFound, pageID)
	}
	return slices.Clone(p.Labels), nil
}

// SetLabel attaches label to a page once.
func (w *Wiki) SetLabel(ctx context.Context, pageID, label string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.pages[pageID]
	if !ok {
		return fmt.Errorf("%w: id %s", domain.ErrPageNotFound, pageID)
	}
	if !slices.Contains(p.Labels, label) {
		p.Labels = append(p.Labels, label)
	}
	return nil
}

// CreateOrUpdate creates the page under parentID or replaces its body.
// An empty parentID creates a top-level page.
func (w *Wiki) CreateOrUpdate(ctx context.Context, parentID, space, title, body string) (*domain.Page, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if parentID != "" {
		if _, ok := w.pages[parentID]; !ok {
			return nil, fmt.Errorf("%w: parent %s", domain.ErrPageNotFound, parentID)
		}
	}

	w.writes++
	if p := w.findLocked(space, title); p != nil {
		p.Body = body
		p.ParentID = parentID
		p.Version++
		return clonePage(p), nil
	}

	p := &domain.Page{
		ID:       w.newID(),
		Title:    title,
		Space:    space,
		Body:     body,
		ParentID: parentID,
		Version:  1,
	}
	w.pages[p.ID] = p
	return clonePage(p), nil
}

// GetParentID returns the parent of a page.
func (w *Wiki) GetParentID(ctx context.Context, pageID string) (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.pages[pageID]
	if !ok {
		return "", fmt.Errorf("%w: id %s", domain.ErrPageNotFound, pageID)
	}
	return p.ParentID, nil
}

// SearchTitles matches terms as case-insensitive substrings of page titles.
// Results are ordered by page ID.
func (w *Wiki) SearchTitles(ctx context.Context, terms []string, limit int) ([]domain.SearchHit, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var matched []*domain.Page
	for _, p := range w.pages {
		title := strings.ToLower(p.Title)
		for _, term := range terms {
			if term != "" && strings.Contains(title, strings.ToLower(term)) {
				matched = append(matched, p)
				break
			}
		}
	}
	slices.SortFunc(matched, func(a, b *domain.Page) int { return compareIDs(a.ID, b.ID) })

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	hits := make([]domain.SearchHit, 0, len(matched))
	for _, p := range matched {
		hits = append(hits, domain.SearchHit{ID: p.ID, Title: p.Title, Space: p.Space})
	}
	return hits, nil
}

func (w *Wiki) findLocked(space, title string) *domain.Page {
	for _, p := range w.pages {
		if p.Space == space && p.Title == title {
			return p
		}
	}
	return nil
}

func (w *Wiki) newID() string {
	w.next++
	id := strconv.Itoa(w.next)
	for w.pages[id] != nil {
		w.next++
		id = strconv.Itoa(w.next)
	}
	return id
}

func clonePage(p *domain.Page) *domain.Page {
	c := *p
	c.Labels = slices.Clone(p.Labels)
	return &c
}

func compareIDs(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai - bi
	}
	return strings.Compare(a, b)
}
