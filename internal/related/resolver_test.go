package related

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/pcdshub/happi-to-confluence/internal/testutils"
	"github.com/pcdshub/happi-to-confluence/pkg/adapters/memory"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seededWiki(t *testing.T) *memory.Wiki {
	t.Helper()
	wiki := memory.NewWiki()
	wiki.Seed(
		domain.Page{ID: "1", Title: "det1 manual", Space: "PCDS"},
		domain.Page{ID: "2", Title: "Detector (Typhos)", Space: "PCDS"},
		domain.Page{ID: "3", Title: "det1 CHECKOUT procedure", Space: "PCDS"},
		domain.Page{ID: "4", Title: "det1", Space: "PCDS", Labels: []string{domain.DefaultGenerationLabel}},
		domain.Page{ID: "5", Title: "Detector alignment", Space: "OPS", Labels: []string{"howto"}},
	)
	return wiki
}

func TestResolver_Filters(t *testing.T) {
	r := New(seededWiki(t), memory.NewCache())

	pages := r.Resolve(context.Background(), "det1", "Detector")
	assert.Equal(t, []domain.RelatedPage{
		{ID: "1", Title: "det1 manual", Space: "PCDS"},
		{ID: "5", Title: "Detector alignment", Space: "OPS", Labels: []string{"howto"}},
	}, pages)
}

func TestResolver_Limit(t *testing.T) {
	r := New(seededWiki(t), memory.NewCache(), WithLimit(1))

	pages := r.Resolve(context.Background(), "det1", "Detector")
	require.Len(t, pages, 1)
	assert.Equal(t, "1", pages[0].ID)
}

func TestResolver_Memoizes(t *testing.T) {
	wiki := &testutils.MockWiki{}
	wiki.On("SearchTitles", mock.Anything, []string{"det1", "Detector"}, DefaultLimit).
		Return([]domain.SearchHit{{ID: "9", Title: "det1 notes", Space: "PCDS"}}, nil).Once()
	wiki.On("GetLabels", mock.Anything, "9").Return([]string{}, nil).Once()

	var results []string
	r := New(wiki, memory.NewCache(), WithLookupHook(func(res string) { results = append(results, res) }))
	ctx := context.Background()

	first := r.Resolve(ctx, "det1", "Detector")
	second := r.Resolve(ctx, "det1", "Detector")

	assert.Equal(t, first, second)
	assert.Equal(t, []string{LookupMiss, LookupHit}, results)
	wiki.AssertExpectations(t)
}

func TestResolver_FailureIsNotMemoized(t *testing.T) {
	wiki := &testutils.MockWiki{}
	wiki.On("SearchTitles", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset")).Once()
	wiki.On("SearchTitles", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.SearchHit{}, nil).Once()

	var results []string
	r := New(wiki, memory.NewCache(), WithLookupHook(func(res string) { results = append(results, res) }))
	ctx := context.Background()

	assert.Empty(t, r.Resolve(ctx, "det1", "Detector"))
	assert.Empty(t, r.Resolve(ctx, "det1", "Detector"))
	assert.Equal(t, []string{LookupError, LookupMiss}, results)
	wiki.AssertExpectations(t)
}

func TestResolver_LabelFailure(t *testing.T) {
	wiki := &testutils.MockWiki{}
	wiki.On("SearchTitles", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.SearchHit{{ID: "9", Title: "det1 notes"}}, nil)
	wiki.On("GetLabels", mock.Anything, "9").Return(nil, domain.ErrTransport)

	assert.Nil(t, New(wiki, memory.NewCache()).Resolve(context.Background(), "det1", "Detector"))
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]domain.RelatedPage, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, []domain.RelatedPage) error {
	return errors.New("cache down")
}

func TestResolver_CacheFailureFallsThrough(t *testing.T) {
	r := New(seededWiki(t), failingCache{})

	pages := r.Resolve(context.Background(), "det1", "Detector")
	assert.Len(t, pages, 2)
}

func TestResolver_UsesGivenCache(t *testing.T) {
	cache := memory.NewCache()
	r := New(seededWiki(t), cache)

	pages := r.Resolve(context.Background(), "det1", "Detector")
	memo, ok, err := cache.Get(context.Background(), "det1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pages, memo)
}

func TestPackageDoesNotImportAdapters(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)

	fset := token.NewFileSet()
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		require.NoError(t, err)
		for _, imp := range f.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			require.NoError(t, err)
			assert.NotContains(t, path, "/pkg/adapters/", "%s imports an adapter", name)
		}
	}
}
