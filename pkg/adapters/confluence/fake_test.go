package confluence_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pcdshub/happi-to-confluence/pkg/adapters/memory"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

const testToken = "s3cret"

var cqlTitle = regexp.MustCompile(`title ~ "((?:[^"\\]|\\.)*)"`)

var cqlUnescaper = strings.NewReplacer(`\\`, `\`, `\"`, `"`)

// fakeServer serves the subset of the Confluence content API the client
// uses, backed by an in-memory wiki.
type fakeServer struct {
	wiki *memory.Wiki
	// failures forces the given status on every request when non-zero.
	failures int
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	f := &fakeServer{wiki: memory.NewWiki()}

	r := chi.NewRouter()
	r.Use(f.auth)
	r.Route("/rest/api/content", func(r chi.Router) {
		r.Get("/", f.list)
		r.Post("/", f.create)
		r.Get("/search", f.search)
		r.Get("/{id}", f.get)
		r.Put("/{id}", f.update)
		r.Get("/{id}/label", f.labels)
		r.Post("/{id}/label", f.addLabels)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeServer) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.failures != 0 {
			writeError(w, f.failures, "forced failure")
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeError(w, http.StatusUnauthorized, "bad token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeServer) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := f.wiki.GetPageByTitle(r.Context(), q.Get("spaceKey"), q.Get("title"))
	if errors.Is(err, domain.ErrPageNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{"results": []any{}, "size": 0})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": []any{toWire(page)}, "size": 1})
}

func (f *fakeServer) create(w http.ResponseWriter, r *http.Request) {
	var req wirePage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := f.wiki.GetPageByTitle(r.Context(), req.Space.Key, req.Title); err == nil {
		writeError(w, http.StatusBadRequest, "A page with this title already exists")
		return
	}
	page, err := f.wiki.CreateOrUpdate(r.Context(), req.parentID(), req.Space.Key, req.Title, req.Body.Storage.Value)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toWire(page))
}

func (f *fakeServer) update(w http.ResponseWriter, r *http.Request) {
	stored, ok := f.wiki.Page(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no content")
		return
	}
	var req wirePage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Version.Number != stored.Version+1 {
		writeError(w, http.StatusConflict, "version must be incremented")
		return
	}
	page, err := f.wiki.CreateOrUpdate(r.Context(), req.parentID(), stored.Space, stored.Title, req.Body.Storage.Value)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toWire(page))
}

func (f *fakeServer) get(w http.ResponseWriter, r *http.Request) {
	page, ok := f.wiki.Page(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no content")
		return
	}
	writeJSON(w, http.StatusOK, toWire(page))
}

func (f *fakeServer) labels(w http.ResponseWriter, r *http.Request) {
	names, err := f.wiki.GetLabels(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	results := make([]map[string]string, 0, len(names))
	for _, n := range names {
		results = append(results, map[string]string{"prefix": "global", "name": n})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (f *fakeServer) addLabels(w http.ResponseWriter, r *http.Request) {
	var req []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, l := range req {
		if err := f.wiki.SetLabel(r.Context(), chi.URLParam(r, "id"), l.Name); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
	}
	f.labels(w, r)
}

func (f *fakeServer) search(w http.ResponseWriter, r *http.Request) {
	var terms []string
	for _, m := range cqlTitle.FindAllStringSubmatch(r.URL.Query().Get("cql"), -1) {
		terms = append(terms, cqlUnescaper.Replace(m[1]))
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, _ := f.wiki.SearchTitles(r.Context(), terms, limit)
	results := make([]any, 0, len(hits))
	for _, h := range hits {
		results = append(results, map[string]any{
			"id":    h.ID,
			"type":  "page",
			"title": h.Title,
			"space": map[string]string{"key": h.Space},
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "size": len(results)})
}

type wirePage struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Space struct {
		Key string `json:"key"`
	} `json:"space"`
	Version struct {
		Number int `json:"number"`
	} `json:"version"`
	Ancestors []struct {
		ID string `json:"id"`
	} `json:"ancestors,omitempty"`
	Body struct {
		Storage struct {
			Value          string `json:"value"`
			Representation string `json:"representation"`
		} `json:"storage"`
	} `json:"body"`
}

func (p wirePage) parentID() string {
	if len(p.Ancestors) == 0 {
		return ""
	}
	return p.Ancestors[len(p.Ancestors)-1].ID
}

func toWire(p *domain.Page) map[string]any {
	ancestors := []any{}
	if p.ParentID != "" {
		ancestors = append(ancestors, map[string]string{"id": p.ParentID})
	}
	return map[string]any{
		"id":        p.ID,
		"type":      "page",
		"title":     p.Title,
		"space":     map[string]string{"key": p.Space},
		"version":   map[string]int{"number": p.Version},
		"ancestors": ancestors,
		"body": map[string]any{
			"storage": map[string]string{"value": p.Body, "representation": "storage"},
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"statusCode": status, "message": msg})
}
