package domain

import "slices"

// Page is a wiki page descriptor as returned by the wiki.
// It is never owned by this tool; the synchronizer only reads and references it.
type Page struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Space    string   `json:"space"`
	Body     string   `json:"-"`
	ParentID string   `json:"parent_id,omitempty"`
	Version  int      `json:"version,omitempty"`
	Labels   []string `json:"labels,omitempty"`
}

// HasLabel reports whether the page carries the given label.
func (p *Page) HasLabel(label string) bool {
	return p != nil && slices.Contains(p.Labels, label)
}

// PageInfo is what the run state records per generated template.
type PageInfo struct {
	Page
	Template string `json:"template"`
}

// SearchHit is one result of a title search.
type SearchHit struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Space string `json:"space"`
}

// RelatedPage is a search hit enriched with its labels, offered to templates
// as "see also" material.
type RelatedPage struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Space  string   `json:"space"`
	Labels []string `json:"labels,omitempty"`
}

// HasLabel reports whether the related page carries the given label.
func (p RelatedPage) HasLabel(label string) bool {
	return slices.Contains(p.Labels, label)
}
