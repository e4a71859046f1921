package validator

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pcdshub/happi-to-confluence/internal/compiler"
	"github.com/pcdshub/happi-to-confluence/internal/hierarchy"
)

// Report lists what a validation pass found. Errors would abort a run;
// warnings would not.
type Report struct {
	Templates int
	Errors    []string
	Warnings  []string
	Layout    *hierarchy.Set
}

// Err folds the errors into one, or returns nil.
func (r *Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(r.Errors, "\n- "))
}

// Validate parses every template in templatesDir and the layout in
// hierarchyFile (the default layout when empty). Unlike a run it keeps going
// after the first broken template, so all header errors surface at once.
func Validate(parser *compiler.Parser, templatesDir, hierarchyFile string) *Report {
	report := &Report{}

	paths, err := filepath.Glob(filepath.Join(templatesDir, "*.template"))
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Cannot list templates: %v", err))
		return report
	}
	slices.Sort(paths)

	templates := make(map[string]*compiler.Template, len(paths))
	for _, path := range paths {
		t, err := parser.ParseFile(path)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		templates[t.Filename] = t
	}
	report.Templates = len(templates)
	if len(report.Errors) > 0 {
		return report
	}

	layout, err := hierarchy.LoadFile(hierarchyFile, templates)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}
	report.Layout = layout

	used := make(map[string]bool)
	if layout.Docstring != nil {
		used[layout.Docstring.Filename] = true
	}
	for _, name := range hierarchy.VariantNames() {
		tree, _ := layout.Variant(name)
		checkTitles(report, name, tree)
		tree.Walk(func(n *hierarchy.Node, depth int) bool {
			used[n.Template.Filename] = true
			return true
		})
	}

	for _, path := range paths {
		name := filepath.Base(path)
		if _, ok := templates[name]; ok && !used[name] {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Template '%s' is not used by any hierarchy", name))
		}
	}
	return report
}

// checkTitles warns when two nodes of a variant share a primary title
// pattern; the second would always find the first one's page.
func checkTitles(report *Report, variant string, tree hierarchy.Tree) {
	seen := make(map[string]string)
	tree.Walk(func(n *hierarchy.Node, depth int) bool {
		patterns := n.Template.TitlePatterns()
		if len(patterns) == 0 {
			return true
		}
		if other, ok := seen[patterns[0]]; ok && other != n.Template.Filename {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Templates '%s' and '%s' share the title '%s' in %s", other, n.Template.Filename, patterns[0], variant))
		}
		seen[patterns[0]] = n.Template.Filename
		return true
	})
}
