package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Templates mirrors the shipped template set in its smallest useful form.
var Templates = map[string]string{
	"class.template": "# title: {{ .device_class }}{{ .page_title_marker }}\n" +
		"# label: device-class\n" +
		"<h1>{{ .device_class }}</h1>\n{{ .device_class_doc }}",
	"device.template": "# title: {{ .identifier }}\n" +
		"# title: {{ .identifier }}{{ .page_title_marker }}\n" +
		"# label: device\n" +
		"<h1>{{ .device_name }}</h1>",
	"user.template": "# title: {{ .identifier }}{{ .user_page_suffix }}\n" +
		"<p>Notes for {{ .identifier }}</p>",
	"all_devices.template": "# title: All Devices\n" +
		"{{ range $id, $pages := .all_item_state }}<li>{{ $id }}</li>\n{{ end }}",
	"docstring.template": "# title: docstring\n" +
		"{{ range .sections.Summary }}<p>{{ . }}</p>{{ end }}",
}

// WriteTemplates writes files into a fresh temporary directory and returns it.
// It fails the test immediately on error.
func WriteTemplates(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644), "Failed to write %s", name)
	}
	return dir
}
