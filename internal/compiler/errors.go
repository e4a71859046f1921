package compiler

import (
	"errors"
	"fmt"
)

// ErrNoTitle is returned for a template without any "# title:" line.
var ErrNoTitle = errors.New("template has no title lines")

// DirectiveError reports a malformed header line.
type DirectiveError struct {
	Filename  string
	Line      int
	Directive string
	Reason    string
}

func (e *DirectiveError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "unknown directive"
	}
	return fmt.Sprintf("%s:%d: %s %q", e.Filename, e.Line, reason, e.Directive)
}
