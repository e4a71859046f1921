package compiler

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

// Template is a parsed template file. It is immutable after parsing and
// safe to render concurrently.
type Template struct {
	// Filename is the base name the run state records pages under.
	Filename string
	// Labels is sorted, deduplicated and always holds the generation label.
	Labels []string

	titleSources []string
	bodySource   string
	titles       []*template.Template
	body         *template.Template
}

// TitlePatterns returns the unrendered title candidates in declaration order.
func (t *Template) TitlePatterns() []string {
	return append([]string(nil), t.titleSources...)
}

// BodySource returns the unrendered body.
func (t *Template) BodySource() string {
	return t.bodySource
}

// Render renders every title candidate and the body against ctx.
// Rendered titles are trimmed of surrounding whitespace.
func (t *Template) Render(ctx domain.RenderContext) ([]string, string, error) {
	titles := make([]string, 0, len(t.titles))
	for i, tmpl := range t.titles {
		s, err := execute(tmpl, ctx)
		if err != nil {
			return nil, "", fmt.Errorf("%s: render title %d: %w", t.Filename, i+1, err)
		}
		titles = append(titles, strings.TrimSpace(s))
	}

	body, err := execute(t.body, ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%s: render body: %w", t.Filename, err)
	}
	return titles, body, nil
}

func (t *Template) String() string {
	return "<Template " + t.Filename + ">"
}

// RenderString renders a one-off template source against data.
func RenderString(src string, data any) (string, error) {
	tmpl, err := newTemplate("inline", src, Funcs)
	if err != nil {
		return "", err
	}
	return execute(tmpl, data)
}

func newTemplate(name, src string, funcs template.FuncMap) (*template.Template, error) {
	return template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(src)
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
