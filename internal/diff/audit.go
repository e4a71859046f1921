package diff

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pcdshub/happi-to-confluence/internal/logging"
	"github.com/pmezard/go-difflib/difflib"
)

// Audit directories below the source root.
const (
	ExistingDir = "existing"
	NewDir      = "new"
	DiffDir     = "diff"
)

// Auditor keeps a copy of both bodies and their diff for every page that
// is about to be rewritten. It never fails the caller; write errors are logged.
type Auditor struct {
	fs     billy.Filesystem
	logger *slog.Logger
}

// AuditorOption configures an Auditor.
type AuditorOption func(*Auditor)

// WithAuditLogger sets the logger for artifact write failures.
func WithAuditLogger(logger *slog.Logger) AuditorOption {
	return func(a *Auditor) {
		a.logger = logger
	}
}

// NewAuditor writes artifacts into fs (osfs.New(sourcePath) in production,
// memfs in tests).
func NewAuditor(fs billy.Filesystem, opts ...AuditorOption) *Auditor {
	a := &Auditor{fs: fs, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record writes existing/<title>.html, new/<title>.html,
// diff/<title>.html.diff and diff/<title>.html.
func (a *Auditor) Record(title, existing, rendered string) {
	if a == nil || a.fs == nil {
		return
	}
	for _, dir := range []string{ExistingDir, NewDir, DiffDir} {
		if err := a.fs.MkdirAll(dir, 0755); err != nil {
			a.logger.Warn("Failed to create audit directory", "dir", dir, "error", err)
		}
	}

	name := strings.ReplaceAll(title, "/", "_")
	a.write(path.Join(ExistingDir, name+".html"), existing+"\n")
	a.write(path.Join(NewDir, name+".html"), rendered+"\n")

	text, err := ContextDiff(title, existing, rendered)
	if err != nil {
		a.logger.Error("Failed to diff existing page", "title", title, "error", err)
	} else {
		a.write(path.Join(DiffDir, name+".html.diff"), text+"\n")
	}

	table, err := SideBySide(title, existing, rendered)
	if err != nil {
		a.logger.Error("Failed to render html diff", "title", title, "error", err)
		return
	}
	a.write(path.Join(DiffDir, name+".html"), table)
}

func (a *Auditor) write(name, data string) {
	if err := util.WriteFile(a.fs, name, []byte(data), 0644); err != nil {
		a.logger.Error("Failed to write audit artifact", "file", name, "error", err)
	}
}

type sideRow struct {
	Tag      string
	Old, New string
	OldNo    int
	NewNo    int
}

type sideGroup struct {
	Rows []sideRow
}

var sideBySideTmpl = template.Must(template.New("diff").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<style>
table.diff { font-family: monospace; border-collapse: collapse; }
td { padding: 0 4px; vertical-align: top; white-space: pre-wrap; }
td.no { color: #888; text-align: right; }
tr.r td.txt { background: #ffffaa; }
tr.d td.old { background: #ffaaaa; }
tr.i td.new { background: #aaffaa; }
tbody.sep { border-top: 1px solid #ccc; }
</style>
</head>
<body>
<table class="diff">
<thead><tr><th colspan="2">{{ .Title }}</th><th colspan="2">new-{{ .Title }}</th></tr></thead>
{{- range .Groups }}
<tbody class="sep">
{{- range .Rows }}
<tr class="{{ .Tag }}"><td class="no">{{ if .OldNo }}{{ .OldNo }}{{ end }}</td><td class="txt old">{{ .Old }}</td><td class="no">{{ if .NewNo }}{{ .NewNo }}{{ end }}</td><td class="txt new">{{ .New }}</td></tr>
{{- end }}
</tbody>
{{- else }}
<tbody><tr><td colspan="4">No differences found</td></tr></tbody>
{{- end }}
</table>
</body>
</html>
`))

// SideBySide renders an HTML table pairing old and new lines of each
// changed region.
func SideBySide(title, existing, rendered string) (string, error) {
	a, b := splitLines(existing), splitLines(rendered)
	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	var groups []sideGroup
	for _, ops := range m.GetGroupedOpCodes(ContextLines) {
		var g sideGroup
		for _, op := range ops {
			n := max(op.I2-op.I1, op.J2-op.J1)
			for k := 0; k < n; k++ {
				row := sideRow{Tag: string(op.Tag)}
				if i := op.I1 + k; i < op.I2 {
					row.Old, row.OldNo = a[i], i+1
				}
				if j := op.J1 + k; j < op.J2 {
					row.New, row.NewNo = b[j], j+1
				}
				g.Rows = append(g.Rows, row)
			}
		}
		groups = append(groups, g)
	}

	var buf bytes.Buffer
	err := sideBySideTmpl.Execute(&buf, struct {
		Title  string
		Groups []sideGroup
	}{title, groups})
	if err != nil {
		return "", fmt.Errorf("render side-by-side diff: %w", err)
	}
	return buf.String(), nil
}
