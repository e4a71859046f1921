package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pcdshub/happi-to-confluence/internal/logging"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

const (
	apiPath        = "/rest/api/content"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4096
)

// Client implements ports.Wiki over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the server at baseURL.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPageByTitle looks a page up by exact title within space.
func (c *Client) GetPageByTitle(ctx context.Context, space, title string) (*domain.Page, error) {
	q := url.Values{}
	q.Set("title", title)
	q.Set("spaceKey", space)
	q.Set("expand", "body.storage,version,ancestors,space")

	var list contentList
	if err := c.do(ctx, http.MethodGet, apiPath+"?"+q.Encode(), nil, &list); err != nil {
		return nil, fmt.Errorf("get page %q: %w", title, err)
	}
	if len(list.Results) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrPageNotFound, space, title)
	}
	return toPage(list.Results[0], space), nil
}

// GetLabels returns the label names of a page.
func (c *Client) GetLabels(ctx context.Context, pageID string) ([]string, error) {
	var list labelList
	if err := c.do(ctx, http.MethodGet, apiPath+"/"+url.PathEscape(pageID)+"/label", nil, &list); err != nil {
		return nil, fmt.Errorf("get labels of %s: %w", pageID, err)
	}
	names := make([]string, 0, len(list.Results))
	for _, l := range list.Results {
		names = append(names, l.Name)
	}
	return names, nil
}

// SetLabel adds a global label. The server ignores duplicates.
func (c *Client) SetLabel(ctx context.Context, pageID, name string) error {
	payload := []label{{Prefix: "global", Name: name}}
	if err := c.do(ctx, http.MethodPost, apiPath+"/"+url.PathEscape(pageID)+"/label", payload, nil); err != nil {
		return fmt.Errorf("set label %q on %s: %w", name, pageID, err)
	}
	return nil
}

// CreateOrUpdate creates the page below parentID, or bumps the version of
// the existing page with the same title.
func (c *Client) CreateOrUpdate(ctx context.Context, parentID, space, title, text string) (*domain.Page, error) {
	existing, err := c.GetPageByTitle(ctx, space, title)
	if err != nil && !errors.Is(err, domain.ErrPageNotFound) {
		return nil, err
	}

	req := content{
		Type:  "page",
		Title: title,
		Space: &spaceRef{Key: space},
		Body:  &body{Storage: storage{Value: text, Representation: "storage"}},
	}
	if parentID != "" {
		req.Ancestors = []ancestor{{ID: parentID}}
	}

	var resp content
	if existing == nil {
		c.logger.Debug("Creating page", "title", title, "parent_id", parentID)
		if err := c.do(ctx, http.MethodPost, apiPath, req, &resp); err != nil {
			return nil, fmt.Errorf("create page %q: %w", title, err)
		}
	} else {
		c.logger.Debug("Updating page", "title", title, "page_id", existing.ID, "version", existing.Version+1)
		req.ID = existing.ID
		req.Version = &version{Number: existing.Version + 1}
		if err := c.do(ctx, http.MethodPut, apiPath+"/"+url.PathEscape(existing.ID), req, &resp); err != nil {
			return nil, fmt.Errorf("update page %q: %w", title, err)
		}
	}

	page := toPage(resp, space)
	if page.Body == "" {
		page.Body = text
	}
	if page.ParentID == "" {
		page.ParentID = parentID
	}
	return page, nil
}

// GetParentID returns the nearest ancestor of a page.
func (c *Client) GetParentID(ctx context.Context, pageID string) (string, error) {
	var resp content
	if err := c.do(ctx, http.MethodGet, apiPath+"/"+url.PathEscape(pageID)+"?expand=ancestors", nil, &resp); err != nil {
		return "", fmt.Errorf("get parent of %s: %w", pageID, err)
	}
	if len(resp.Ancestors) == 0 {
		return "", nil
	}
	return resp.Ancestors[len(resp.Ancestors)-1].ID, nil
}

// SearchTitles runs a CQL title search, OR-ing the terms.
func (c *Client) SearchTitles(ctx context.Context, terms []string, limit int) ([]domain.SearchHit, error) {
	q := url.Values{}
	q.Set("cql", titleCQL(terms))
	q.Set("expand", "space")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var list contentList
	if err := c.do(ctx, http.MethodGet, apiPath+"/search?"+q.Encode(), nil, &list); err != nil {
		return nil, fmt.Errorf("search titles %v: %w", terms, err)
	}

	hits := make([]domain.SearchHit, 0, len(list.Results))
	for _, r := range list.Results {
		hit := domain.SearchHit{ID: r.ID, Title: r.Title}
		if r.Space != nil {
			hit.Space = r.Space.Key
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// cqlEscaper escapes a CQL string literal body. Only the quote and the
// backslash are special inside one.
var cqlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func titleCQL(terms []string) string {
	clauses := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		clauses = append(clauses, `title ~ "`+cqlEscaper.Replace(t)+`"`)
	}
	return "type = page AND (" + strings.Join(clauses, " OR ") + ")"
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var msg apiMessage
		if json.Unmarshal(raw, &msg) == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrTransport, err)
	}
	return nil
}

func toPage(r content, space string) *domain.Page {
	p := &domain.Page{
		ID:    r.ID,
		Title: r.Title,
		Space: space,
	}
	if r.Space != nil && r.Space.Key != "" {
		p.Space = r.Space.Key
	}
	if r.Version != nil {
		p.Version = r.Version.Number
	}
	if r.Body != nil {
		p.Body = r.Body.Storage.Value
	}
	if n := len(r.Ancestors); n > 0 {
		p.ParentID = r.Ancestors[n-1].ID
	}
	return p
}
