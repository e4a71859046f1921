package ports

import (
	"context"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

// RelatedCache memoizes related-page lookups by key.
type RelatedCache interface {
	// Get returns the memoized pages and whether the key was present.
	// A present key with an empty list is a hit.
	Get(ctx context.Context, key string) ([]domain.RelatedPage, bool, error)

	// Set memoizes pages under key.
	Set(ctx context.Context, key string, pages []domain.RelatedPage) error
}
