package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

// Cache implements ports.RelatedCache in memory. Entries live for the
// lifetime of the process.
type Cache struct {
	mu   sync.RWMutex
	data map[string][]domain.RelatedPage
}

// NewCache creates an empty related-page memo.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]domain.RelatedPage),
	}
}

// Get returns a copy of the memoized pages.
func (c *Cache) Get(ctx context.Context, key string) ([]domain.RelatedPage, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pages, ok := c.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(pages), true, nil
}

// Set memoizes pages under key.
func (c *Cache) Set(ctx context.Context, key string, pages []domain.RelatedPage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := slices.Clone(pages)
	if stored == nil {
		stored = []domain.RelatedPage{}
	}
	c.data[key] = stored
	return nil
}
