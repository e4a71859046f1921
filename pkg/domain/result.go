package domain

// Outcome is what happened to a single page-tree node during a sync pass.
type Outcome string

const (
	// OutcomeCreated means a new page was written.
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated means an existing, owned page was rewritten.
	OutcomeUpdated Outcome = "updated"
	// OutcomeUpToDate means the existing page was content-equivalent.
	OutcomeUpToDate Outcome = "up-to-date"
	// OutcomeKept means overwriting was disallowed and the page was left alone.
	OutcomeKept Outcome = "kept"
	// OutcomeSkipped means no title candidate resolved to an owned or free page.
	OutcomeSkipped Outcome = "skipped-no-title"
	// OutcomeFailed means a remote or render failure stopped this node.
	OutcomeFailed Outcome = "failed"
)

// Resolved reports whether the node produced a page its children can hang from.
func (o Outcome) Resolved() bool {
	switch o {
	case OutcomeCreated, OutcomeUpdated, OutcomeUpToDate, OutcomeKept:
		return true
	default:
		return false
	}
}

// Wrote reports whether the outcome involved a write to the wiki.
func (o Outcome) Wrote() bool {
	return o == OutcomeCreated || o == OutcomeUpdated
}

// NodeResult records the outcome of one node for one identifier.
type NodeResult struct {
	Identifier string  `json:"identifier"`
	Template   string  `json:"template"`
	Title      string  `json:"title,omitempty"`
	PageID     string  `json:"page_id,omitempty"`
	Outcome    Outcome `json:"outcome"`
	Err        error   `json:"-"`
}

// Error returns the failure message, or an empty string.
func (r NodeResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
