package domain

// RenderContext holds the values a template renders against.
// It is built fresh per entity or view and passed opaquely to templates.
type RenderContext map[string]any

// Identifier returns the identifier under which pages are recorded in the run state.
func (c RenderContext) Identifier() string {
	id, _ := c[KeyIdentifier].(string)
	return id
}

// String returns the value of key if it is a string.
func (c RenderContext) String(key string) string {
	s, _ := c[key].(string)
	return s
}
