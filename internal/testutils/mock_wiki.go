package testutils

import (
	"context"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	"github.com/stretchr/testify/mock"
)

// MockWiki is a testify mock of ports.Wiki for failure-path tests.
type MockWiki struct {
	mock.Mock
}

func (m *MockWiki) GetPageByTitle(ctx context.Context, space, title string) (*domain.Page, error) {
	args := m.Called(ctx, space, title)
	page, _ := args.Get(0).(*domain.Page)
	return page, args.Error(1)
}

func (m *MockWiki) GetLabels(ctx context.Context, pageID string) ([]string, error) {
	args := m.Called(ctx, pageID)
	labels, _ := args.Get(0).([]string)
	return labels, args.Error(1)
}

func (m *MockWiki) SetLabel(ctx context.Context, pageID, label string) error {
	args := m.Called(ctx, pageID, label)
	return args.Error(0)
}

func (m *MockWiki) CreateOrUpdate(ctx context.Context, parentID, space, title, body string) (*domain.Page, error) {
	args := m.Called(ctx, parentID, space, title, body)
	page, _ := args.Get(0).(*domain.Page)
	return page, args.Error(1)
}

func (m *MockWiki) GetParentID(ctx context.Context, pageID string) (string, error) {
	args := m.Called(ctx, pageID)
	return args.String(0), args.Error(1)
}

func (m *MockWiki) SearchTitles(ctx context.Context, terms []string, limit int) ([]domain.SearchHit, error) {
	args := m.Called(ctx, terms, limit)
	hits, _ := args.Get(0).([]domain.SearchHit)
	return hits, args.Error(1)
}
