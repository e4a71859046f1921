// Package diff decides whether a rendered page body differs from the stored
// one in a way that matters, ignoring the markup reshuffling the wiki server
// applies on save.
package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ContextLines is the number of unchanged lines kept around each change.
const ContextLines = 3

// IgnoreMarkupTags lists the decorative tags the server is known to add,
// drop or reflow. A changed line is tolerated only if it opens or closes
// one of these.
var IgnoreMarkupTags = []string{"colgroup", "col", "tbody", "thead", "br"}

// LineKind is the context-diff marker of a line.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
	LineChanged
)

func (k LineKind) String() string {
	switch k {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	case LineChanged:
		return "!"
	default:
		return " "
	}
}

// Line is one classified line of the diff.
type Line struct {
	Kind      LineKind
	Text      string
	Tolerated bool
}

// Result is the outcome of a comparison.
type Result struct {
	// Equivalent is the verdict: no line of the diff is a real change.
	Equivalent bool
	// Identical is set for byte-equal bodies; Lines is empty then.
	Identical bool
	Lines     []Line
}

// Changes returns the lines that were not tolerated.
func (r Result) Changes() []Line {
	var out []Line
	for _, l := range r.Lines {
		if l.Kind != LineContext && !l.Tolerated {
			out = append(out, l)
		}
	}
	return out
}

// Compare classifies the difference between the stored and the newly
// rendered body.
func Compare(existing, rendered string) Result {
	if existing == rendered {
		return Result{Equivalent: true, Identical: true}
	}

	a, b := splitLines(existing), splitLines(rendered)
	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	res := Result{Equivalent: true}
	add := func(kind LineKind, text string, ok bool) {
		res.Lines = append(res.Lines, Line{Kind: kind, Text: text, Tolerated: ok})
		if !ok {
			res.Equivalent = false
		}
	}

	for _, group := range m.GetGroupedOpCodes(ContextLines) {
		for _, op := range group {
			switch op.Tag {
			case 'e':
				for _, l := range a[op.I1:op.I2] {
					add(LineContext, l, true)
				}
			case 'r':
				for _, l := range a[op.I1:op.I2] {
					add(LineChanged, l, IsIgnoredMarkup(l))
				}
				for _, l := range b[op.J1:op.J2] {
					add(LineChanged, l, IsIgnoredMarkup(l))
				}
			case 'd':
				for _, l := range a[op.I1:op.I2] {
					add(LineRemoved, l, strings.TrimSpace(l) == "")
				}
			case 'i':
				for _, l := range b[op.J1:op.J2] {
					add(LineAdded, l, strings.TrimSpace(l) == "")
				}
			}
		}
	}
	return res
}

// Equivalent reports whether the two bodies differ only in tolerated noise.
func Equivalent(existing, rendered string) bool {
	return Compare(existing, rendered).Equivalent
}

// IsIgnoredMarkup reports whether line begins with an opening or closing
// tag from IgnoreMarkupTags.
func IsIgnoredMarkup(line string) bool {
	s := strings.TrimLeft(line, " \t")
	s, ok := strings.CutPrefix(s, "<")
	if !ok {
		return false
	}
	s = strings.TrimPrefix(s, "/")

	for _, tag := range IgnoreMarkupTags {
		rest, ok := strings.CutPrefix(s, tag)
		if !ok {
			continue
		}
		if rest == "" || strings.ContainsRune(">/ \t", rune(rest[0])) {
			return true
		}
	}
	return false
}

// ContextDiff renders the classic context diff of the two bodies.
func ContextDiff(title, existing, rendered string) (string, error) {
	return difflib.GetContextDiffString(difflib.ContextDiff{
		A:        difflib.SplitLines(existing),
		B:        difflib.SplitLines(rendered),
		FromFile: title,
		ToFile:   "new-" + title,
		Context:  ContextLines,
	})
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
