package ports

import (
	"context"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

// ClassProvider resolves device-class metadata.
type ClassProvider interface {
	// Lookup returns the class registered under the dotted path.
	// Returns domain.ErrClassNotFound if the path is unknown.
	Lookup(ctx context.Context, classPath string) (*domain.ClassInfo, error)
}
