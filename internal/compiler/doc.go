// Package compiler turns "*.template" files into renderable page templates.
//
// A template file starts with a header of "# title: ..." and "# label: ..."
// lines. Title lines are alternative page-title patterns tried in order; label
// lines name the labels applied to the written page. The first line that is
// not a header line starts the page body. Titles and body are text/template
// sources rendered against a domain.RenderContext.
package compiler
