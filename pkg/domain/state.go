package domain

// RunState accumulates page information during one run.
//
// Pages maps an entity identifier to a mapping from template filename to the
// page that node resolved to. Items keeps the raw inventory item of every
// entity that was rendered. A RunState is owned by the orchestrator, passed by
// reference to the synchronizer and never reset mid-run.
type RunState struct {
	Pages map[string]map[string]*PageInfo `json:"pages"`
	Items map[string]map[string]any       `json:"items,omitempty"`
}

// NewRunState creates an empty run state.
func NewRunState() *RunState {
	return &RunState{
		Pages: make(map[string]map[string]*PageInfo),
		Items: make(map[string]map[string]any),
	}
}

// ItemState returns the page mapping for an identifier, creating it if needed.
func (s *RunState) ItemState(identifier string) map[string]*PageInfo {
	pages, ok := s.Pages[identifier]
	if !ok {
		pages = make(map[string]*PageInfo)
		s.Pages[identifier] = pages
	}
	return pages
}

// Record stores the page a template resolved to for an identifier.
func (s *RunState) Record(identifier, template string, info *PageInfo) {
	s.ItemState(identifier)[template] = info
}

// Lookup returns the recorded page for an identifier and template, if any.
func (s *RunState) Lookup(identifier, template string) (*PageInfo, bool) {
	info, ok := s.Pages[identifier][template]
	return info, ok
}

// SetItem keeps the raw inventory item for an identifier.
func (s *RunState) SetItem(identifier string, item map[string]any) {
	s.Items[identifier] = item
}
