package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	"github.com/pcdshub/happi-to-confluence/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// WikiContract is a reusable test suite that verifies if an adapter complies with ports.Wiki.
// The wiki must start empty for the given space.
func WikiContract(t *testing.T, wiki ports.Wiki, space string) {
	t.Helper()
	ctx := context.Background()

	var root, child *domain.Page

	t.Run("GetPageByTitle_NotFound", func(t *testing.T) {
		_, err := wiki.GetPageByTitle(ctx, space, "Missing Page")
		assert.ErrorIs(t, err, domain.ErrPageNotFound)
		assert.False(t, errors.Is(err, domain.ErrTransport), "a miss is not a transport failure")
	})

	t.Run("CreateOrUpdate_Create", func(t *testing.T) {
		var err error
		root, err = wiki.CreateOrUpdate(ctx, "", space, "Root", "<p>root</p>")
		require.NoError(t, err)
		require.NotEmpty(t, root.ID)

		child, err = wiki.CreateOrUpdate(ctx, root.ID, space, "Detector (Typhos)", "<p>v1</p>")
		require.NoError(t, err)
		assert.NotEqual(t, root.ID, child.ID)

		got, err := wiki.GetPageByTitle(ctx, space, "Detector (Typhos)")
		require.NoError(t, err)
		assert.Equal(t, child.ID, got.ID)
		assert.Equal(t, "<p>v1</p>", got.Body)
	})

	t.Run("CreateOrUpdate_Update", func(t *testing.T) {
		require.NotNil(t, child)
		updated, err := wiki.CreateOrUpdate(ctx, root.ID, space, "Detector (Typhos)", "<p>v2</p>")
		require.NoError(t, err)
		assert.Equal(t, child.ID, updated.ID, "update must keep the page identity")

		got, err := wiki.GetPageByTitle(ctx, space, "Detector (Typhos)")
		require.NoError(t, err)
		assert.Equal(t, "<p>v2</p>", got.Body)
	})

	t.Run("GetParentID", func(t *testing.T) {
		require.NotNil(t, child)
		parent, err := wiki.GetParentID(ctx, child.ID)
		require.NoError(t, err)
		assert.Equal(t, root.ID, parent)
	})

	t.Run("Labels_Idempotent", func(t *testing.T) {
		require.NotNil(t, child)
		require.NoError(t, wiki.SetLabel(ctx, child.ID, domain.DefaultGenerationLabel))
		require.NoError(t, wiki.SetLabel(ctx, child.ID, domain.DefaultGenerationLabel))

		labels, err := wiki.GetLabels(ctx, child.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{domain.DefaultGenerationLabel}, labels)

		labels, err = wiki.GetLabels(ctx, root.ID)
		require.NoError(t, err)
		assert.Empty(t, labels)
	})

	t.Run("SearchTitles", func(t *testing.T) {
		_, err := wiki.CreateOrUpdate(ctx, root.ID, space, "det1 checkout", "")
		require.NoError(t, err)

		hits, err := wiki.SearchTitles(ctx, []string{"det1", "Detector"}, 5)
		require.NoError(t, err)

		titles := make([]string, 0, len(hits))
		for _, h := range hits {
			titles = append(titles, h.Title)
		}
		assert.ElementsMatch(t, []string{"Detector (Typhos)", "det1 checkout"}, titles)

		hits, err = wiki.SearchTitles(ctx, []string{"det1", "Detector"}, 1)
		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})
}
