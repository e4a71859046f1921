package confluence_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/pcdshub/happi-to-confluence/pkg/adapters/confluence"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	contract "github.com/pcdshub/happi-to-confluence/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Contract(t *testing.T) {
	_, srv := newFakeServer(t)
	contract.WikiContract(t, confluence.New(srv.URL, testToken), "PCDS")
}

func TestClient_Unauthorized(t *testing.T) {
	_, srv := newFakeServer(t)
	client := confluence.New(srv.URL, "wrong")

	_, err := client.GetPageByTitle(context.Background(), "PCDS", "Root")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.False(t, errors.Is(err, domain.ErrPageNotFound))

	var apiErr *confluence.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "bad token", apiErr.Message)
}

func TestClient_ServerErrorsAreTransport(t *testing.T) {
	fake, srv := newFakeServer(t)
	fake.failures = http.StatusBadGateway
	client := confluence.New(srv.URL, testToken)
	ctx := context.Background()

	_, err := client.GetLabels(ctx, "1")
	assert.ErrorIs(t, err, domain.ErrTransport)

	_, err = client.CreateOrUpdate(ctx, "", "PCDS", "det1", "body")
	assert.ErrorIs(t, err, domain.ErrTransport)

	_, err = client.SearchTitles(ctx, []string{"det1"}, 5)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestClient_UnreachableServer(t *testing.T) {
	_, srv := newFakeServer(t)
	srv.Close()

	_, err := confluence.New(srv.URL, testToken).GetPageByTitle(context.Background(), "PCDS", "Root")
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestClient_UpdateBumpsVersion(t *testing.T) {
	fake, srv := newFakeServer(t)
	fake.wiki.Seed(domain.Page{ID: "100", Title: "Root", Space: "PCDS"})
	client := confluence.New(srv.URL, testToken)
	ctx := context.Background()

	created, err := client.CreateOrUpdate(ctx, "100", "PCDS", "det1", "<p>a</p>")
	require.NoError(t, err)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, "100", created.ParentID)

	updated, err := client.CreateOrUpdate(ctx, "100", "PCDS", "det1", "<p>b</p>")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 2, updated.Version)

	stored, ok := fake.wiki.Page(created.ID)
	require.True(t, ok)
	assert.Equal(t, "<p>b</p>", stored.Body)
}

func TestClient_MissingPageIDIsNotFound(t *testing.T) {
	_, srv := newFakeServer(t)
	client := confluence.New(srv.URL, testToken)

	_, err := client.GetParentID(context.Background(), "999")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
	assert.False(t, errors.Is(err, domain.ErrTransport))
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "confluence: status 500", (&confluence.APIError{StatusCode: 500}).Error())
	assert.Equal(t, "confluence: status 409: stale", (&confluence.APIError{StatusCode: 409, Message: "stale"}).Error())
}

func TestClient_SearchEscapedTitle(t *testing.T) {
	fake, srv := newFakeServer(t)
	fake.wiki.Seed(domain.Page{ID: "7", Title: `Slit "A" \ Détecteur`, Space: "PCDS"})
	client := confluence.New(srv.URL, testToken)

	hits, err := client.SearchTitles(context.Background(), []string{`"A" \ Détecteur`}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "7", hits[0].ID)
}
