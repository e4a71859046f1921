package runtime

import (
	"strings"
)

// DocParam is one entry of a numpydoc parameter-style section.
type DocParam struct {
	Name string
	Type string
	Desc []string
}

// Sections that hold DocParam lists; every other section holds lines.
var paramSections = map[string]bool{
	"Parameters":       true,
	"Returns":          true,
	"Yields":           true,
	"Receives":         true,
	"Raises":           true,
	"Warns":            true,
	"Other Parameters": true,
	"Attributes":       true,
	"Methods":          true,
}

var lineSections = []string{
	"Summary", "Extended Summary", "See Also", "Notes",
	"Warnings", "References", "Examples",
}

// ParseDocstring splits a numpydoc-style docstring into its sections.
// Every standard section is present in the result, empty if absent from doc.
func ParseDocstring(doc string) map[string]any {
	sections := make(map[string]any, len(paramSections)+len(lineSections))
	for name := range paramSections {
		sections[name] = []DocParam{}
	}
	for _, name := range lineSections {
		sections[name] = []string{}
	}

	lines := dedent(strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n"))
	lines = trimBlank(lines)

	i := 0
	var summary []string
	for ; i < len(lines) && strings.TrimSpace(lines[i]) != "" && !isHeader(lines, i); i++ {
		summary = append(summary, strings.TrimSpace(lines[i]))
	}
	sections["Summary"] = nonNil(summary)

	start := i
	for i < len(lines) && !isHeader(lines, i) {
		i++
	}
	sections["Extended Summary"] = nonNil(trimBlank(lines[start:i]))

	for i < len(lines) {
		title := strings.TrimSpace(lines[i])
		i += 2
		start := i
		for i < len(lines) && !isHeader(lines, i) {
			i++
		}
		body := trimBlank(lines[start:i])
		if paramSections[title] {
			sections[title] = parseParams(body)
		} else {
			sections[title] = nonNil(body)
		}
	}
	return sections
}

func isHeader(lines []string, i int) bool {
	if i+1 >= len(lines) || strings.TrimSpace(lines[i]) == "" {
		return false
	}
	underline := strings.TrimSpace(lines[i+1])
	return len(underline) >= 3 && strings.Trim(underline, "-") == ""
}

func parseParams(lines []string) []DocParam {
	params := []DocParam{}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if n := len(params); n > 0 && len(params[n-1].Desc) > 0 {
				params[n-1].Desc = append(params[n-1].Desc, "")
			}
			continue
		}
		if indent(line) == 0 {
			name, typ, _ := strings.Cut(line, " : ")
			params = append(params, DocParam{Name: strings.TrimSpace(name), Type: strings.TrimSpace(typ)})
			continue
		}
		if n := len(params); n > 0 {
			params[n-1].Desc = append(params[n-1].Desc, strings.TrimSpace(line))
		}
	}
	for i := range params {
		params[i].Desc = nonNil(trimBlank(params[i].Desc))
	}
	return params
}

func indent(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// dedent removes the common leading whitespace of every line after the
// first, as docstrings carry their first line unindented.
func dedent(lines []string) []string {
	common := -1
	for _, l := range lines[min(1, len(lines)):] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if n := indent(l); common < 0 || n < common {
			common = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		l = strings.TrimRight(l, " \t")
		if i == 0 {
			out[i] = strings.TrimLeft(l, " \t")
			continue
		}
		if common > 0 && len(l) >= common {
			l = l[common:]
		}
		out[i] = l
	}
	return out
}

func trimBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func nonNil(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
