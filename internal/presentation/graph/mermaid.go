package graph

import (
	"fmt"
	"strings"

	"github.com/pcdshub/happi-to-confluence/internal/hierarchy"
)

// RootID is the Mermaid id of the documentation root page.
const RootID = "root"

// GraphOverlay contains run state to visualize on the graph.
type GraphOverlay struct {
	// Resolved lists template filenames that resolved to a page.
	Resolved []string
}

// GenerateMermaid produces a Mermaid flowchart of a page tree hanging off
// the documentation root. It applies semantic styling:
// - Root: ((Circle))
// - No-overwrite node: [/Parallelogram/]
// - Default: [Rectangle]
// Resolved nodes are highlighted when an overlay is provided.
func GenerateMermaid(rootTitle string, tree hierarchy.Tree, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", RootID, escapeLabel(rootTitle)))

	byTemplate := make(map[string][]string)
	var walk func(nodes []*hierarchy.Node, parentID string)
	walk = func(nodes []*hierarchy.Node, parentID string) {
		for _, n := range nodes {
			id := sanitizeMermaidID(parentID + "/" + n.Template.Filename)
			byTemplate[n.Template.Filename] = append(byTemplate[n.Template.Filename], id)

			opener, closer := "[", "]"
			if !n.Options.AllowsOverwrite() {
				opener, closer = "[/", "/]"
			}

			label := n.Template.Filename
			if titles := n.Template.TitlePatterns(); len(titles) > 0 {
				label += " <br/> " + titles[0]
			}
			sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, escapeLabel(label), closer))
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", parentID, id))

			walk(n.Children, id)
		}
	}
	walk(tree, RootID)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef resolved fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")

		seen := make(map[string]bool)
		for _, filename := range overlay.Resolved {
			for _, id := range byTemplate[filename] {
				if !seen[id] {
					seen[id] = true
					sb.WriteString(fmt.Sprintf("    class %s resolved;\n", id))
				}
			}
		}
	}

	return sb.String()
}

// escapeLabel keeps template actions from breaking Mermaid's quoted labels.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
