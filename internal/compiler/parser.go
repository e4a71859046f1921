package compiler

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

const headerMarker = "# "

// Parser converts template files into Templates.
type Parser struct {
	generationLabel string
	funcs           template.FuncMap
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithGenerationLabel overrides the label every template implicitly carries.
func WithGenerationLabel(label string) ParserOption {
	return func(p *Parser) {
		p.generationLabel = label
	}
}

// WithFuncs adds template functions on top of Funcs.
func WithFuncs(funcs template.FuncMap) ParserOption {
	return func(p *Parser) {
		maps.Copy(p.funcs, funcs)
	}
}

// NewParser creates a new parser instance.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		generationLabel: domain.DefaultGenerationLabel,
		funcs:           maps.Clone(Funcs),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse splits data into header directives and body and compiles both.
func (p *Parser) Parse(filename string, data []byte) (*Template, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	t := &Template{Filename: filename}
	labels := map[string]struct{}{p.generationLabel: {}}

	bodyStart := len(lines)
	for i, line := range lines {
		if !strings.HasPrefix(line, headerMarker) {
			bodyStart = i
			break
		}

		header := strings.Trim(line, "# ")
		directive, value, ok := strings.Cut(header, ":")
		if !ok {
			return nil, &DirectiveError{Filename: filename, Line: i + 1, Directive: header, Reason: "missing ':' in header"}
		}
		directive = strings.TrimSpace(directive)
		value = strings.TrimSpace(value)

		switch directive {
		case "title":
			t.titleSources = append(t.titleSources, value)
		case "label":
			labels[value] = struct{}{}
		default:
			return nil, &DirectiveError{Filename: filename, Line: i + 1, Directive: directive}
		}
	}

	if len(t.titleSources) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoTitle)
	}

	t.Labels = slices.Sorted(maps.Keys(labels))
	t.bodySource = strings.Join(lines[bodyStart:], "\n")

	for i, src := range t.titleSources {
		tmpl, err := newTemplate(fmt.Sprintf("%s#title%d", filename, i+1), src, p.funcs)
		if err != nil {
			return nil, fmt.Errorf("%s: title %d: %w", filename, i+1, err)
		}
		t.titles = append(t.titles, tmpl)
	}

	body, err := newTemplate(filename, t.bodySource, p.funcs)
	if err != nil {
		return nil, fmt.Errorf("%s: body: %w", filename, err)
	}
	t.body = body

	return t, nil
}

// ParseFile reads and parses a template file. The template is named after
// the file's base name.
func (p *Parser) ParseFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return p.Parse(filepath.Base(path), data)
}

// LoadDir parses every "*.template" file in dir, keyed by base name.
func (p *Parser) LoadDir(dir string) (map[string]*Template, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.template"))
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	slices.Sort(paths)

	templates := make(map[string]*Template, len(paths))
	for _, path := range paths {
		t, err := p.ParseFile(path)
		if err != nil {
			return nil, err
		}
		templates[t.Filename] = t
	}
	return templates, nil
}
