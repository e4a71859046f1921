package file

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Catalog implements ports.ClassProvider from a YAML (or JSON) document:
//
//	classes:
//	  pcdsdevices.ipm.IPM:
//	    name: IPM
//	    doc: |
//	      Intensity position monitor.
//	    parameters:
//	      - {name: prefix, kind: positional}
//	      - {name: name, kind: keyword}
//	      - {name: timeout, kind: keyword, default: 1.0}
//
// A parameter has a default only when the "default" key is present, so an
// explicit null default is distinguishable from a required parameter.
type Catalog struct {
	classes map[string]*domain.ClassInfo
}

type catalogDoc struct {
	Classes map[string]catalogClass `yaml:"classes"`
}

type catalogClass struct {
	Name       string           `yaml:"name"`
	Doc        string           `yaml:"doc"`
	Parameters []map[string]any `yaml:"parameters"`
}

// NewCatalog creates a catalog from already-resolved classes.
func NewCatalog(classes ...domain.ClassInfo) *Catalog {
	c := &Catalog{classes: make(map[string]*domain.ClassInfo, len(classes))}
	for i := range classes {
		info := classes[i]
		c.classes[info.Path] = &info
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path yields an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return NewCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes catalog data.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse class catalog: %w", err)
	}

	c := NewCatalog()
	for path, cls := range doc.Classes {
		info := &domain.ClassInfo{Path: path, Name: cls.Name, Doc: cls.Doc}
		if info.Name == "" {
			info.Name = path[strings.LastIndex(path, ".")+1:]
		}
		for i, raw := range cls.Parameters {
			param, err := decodeParameter(raw)
			if err != nil {
				return nil, fmt.Errorf("class %s parameter %d: %w", path, i, err)
			}
			info.Parameters = append(info.Parameters, param)
		}
		c.classes[path] = info
	}
	return c, nil
}

func decodeParameter(raw map[string]any) (domain.Parameter, error) {
	name, _ := raw["name"].(string)
	if name == "" {
		return domain.Parameter{}, fmt.Errorf("missing name")
	}
	p := domain.Parameter{Name: name, Kind: domain.ParamPositional}
	if kind, ok := raw["kind"].(string); ok && kind != "" {
		switch k := domain.ParameterKind(kind); k {
		case domain.ParamPositional, domain.ParamKeywordOnly, domain.ParamVarPositional, domain.ParamVarKeyword:
			p.Kind = k
		default:
			return domain.Parameter{}, fmt.Errorf("unknown kind %q", kind)
		}
	}
	if def, ok := raw["default"]; ok {
		p.Default = def
		p.HasDefault = true
	}
	return p, nil
}

// Lookup returns the class registered under classPath.
func (c *Catalog) Lookup(ctx context.Context, classPath string) (*domain.ClassInfo, error) {
	info, ok := c.classes[classPath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrClassNotFound, classPath)
	}
	cp := *info
	cp.Parameters = append([]domain.Parameter(nil), info.Parameters...)
	return &cp, nil
}

// Len returns the number of known classes.
func (c *Catalog) Len() int {
	return len(c.classes)
}
