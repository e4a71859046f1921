package file

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Spool keeps page bodies that could not be written to the wiki, so a
// failed page can be pasted by hand or retried.
type Spool struct {
	Dir string
}

// NewSpool creates a spool rooted at dir. An empty dir defaults to "spool".
func NewSpool(dir string) *Spool {
	if dir == "" {
		dir = "spool"
	}
	return &Spool{Dir: dir}
}

// Write stores body as <dir>/<title>.html and returns the path.
func (s *Spool) Write(title, body string) (string, error) {
	path := filepath.Join(s.Dir, SafeName(title)+".html")
	if err := writeAtomic(path, []byte(body)); err != nil {
		return "", fmt.Errorf("failed to spool %q: %w", title, err)
	}
	return path, nil
}

// SafeName turns a page title into a single path element.
func SafeName(title string) string {
	name := strings.ReplaceAll(title, "/", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}
	return name
}
