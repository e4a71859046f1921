package ports

import (
	"context"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

// Wiki is the remote page store the synchronizer writes to.
// Every method blocks; transport failures wrap domain.ErrTransport.
type Wiki interface {
	// GetPageByTitle returns the page with the exact title in the given space.
	// Returns domain.ErrPageNotFound if no such page exists.
	GetPageByTitle(ctx context.Context, space, title string) (*domain.Page, error)

	// GetLabels returns the label names attached to a page.
	GetLabels(ctx context.Context, pageID string) ([]string, error)

	// SetLabel attaches a label to a page. Setting an existing label is a no-op.
	SetLabel(ctx context.Context, pageID, label string) error

	// CreateOrUpdate writes body under title, creating the page below parentID
	// if it does not exist yet.
	CreateOrUpdate(ctx context.Context, parentID, space, title, body string) (*domain.Page, error)

	// GetParentID returns the ID of the page's direct parent.
	GetParentID(ctx context.Context, pageID string) (string, error)

	// SearchTitles returns pages whose titles match any of the terms.
	SearchTitles(ctx context.Context, terms []string, limit int) ([]domain.SearchHit, error)
}
