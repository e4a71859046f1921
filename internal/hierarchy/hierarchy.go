// Package hierarchy describes which templates become which pages, and how
// those pages nest below the documentation root.
package hierarchy

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pcdshub/happi-to-confluence/internal/compiler"
	"gopkg.in/yaml.v3"
)

// Variant names.
const (
	VariantPerDevice            = "per-device"
	VariantMatchingNameAndClass = "matching-name-and-class"
	VariantViews                = "views"
)

// ErrMissingTemplate is returned when a layout references a template that was not loaded.
var ErrMissingTemplate = errors.New("template referenced by hierarchy not found")

// DefaultLayout nests class, device and user-notes pages per device, and
// renders the aggregate device list at the documentation root.
const DefaultLayout = `docstring: docstring.template
variants:
  per-device:
    - template: class.template
      children:
        - template: device.template
          children:
            - template: user.template
              options:
                overwrite: false
  matching-name-and-class:
    - template: device.template
      children:
        - template: user.template
          options:
            overwrite: false
  views:
    - template: all_devices.template
`

// Options tunes how a node's page is written.
type Options struct {
	// Overwrite defaults to true when unset.
	Overwrite *bool `yaml:"overwrite,omitempty"`
}

// AllowsOverwrite reports whether an existing page may be rewritten.
func (o Options) AllowsOverwrite() bool {
	return o.Overwrite == nil || *o.Overwrite
}

// Node is one page in a tree: a template, its write options and its child pages.
type Node struct {
	Template *compiler.Template
	Options  Options
	Children []*Node
}

// Tree is an ordered list of sibling root nodes.
type Tree []*Node

// Walk visits nodes depth-first, pre-order. Returning false from fn skips
// the node's children.
func (t Tree) Walk(fn func(n *Node, depth int) bool) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(t, 0)
}

// Len returns the total number of nodes in the tree.
func (t Tree) Len() int {
	count := 0
	t.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Set is a loaded layout: the docstring template plus the three tree variants.
type Set struct {
	Docstring            *compiler.Template
	PerDevice            Tree
	MatchingNameAndClass Tree
	Views                Tree
}

// Select picks the variant for an entity. When the identifier equals the
// class name (case-insensitively), a class page would collide with the
// device page, so the flattened variant is used.
func (s *Set) Select(identifier, className string) (string, Tree) {
	if strings.EqualFold(identifier, className) {
		return VariantMatchingNameAndClass, s.MatchingNameAndClass
	}
	return VariantPerDevice, s.PerDevice
}

// Variant returns a tree by name.
func (s *Set) Variant(name string) (Tree, bool) {
	switch name {
	case VariantPerDevice:
		return s.PerDevice, true
	case VariantMatchingNameAndClass:
		return s.MatchingNameAndClass, true
	case VariantViews:
		return s.Views, true
	}
	return nil, false
}

// VariantNames lists the variants in display order.
func VariantNames() []string {
	return []string{VariantPerDevice, VariantMatchingNameAndClass, VariantViews}
}

type layoutDoc struct {
	Docstring string                `yaml:"docstring"`
	Variants  map[string][]nodeSpec `yaml:"variants"`
}

type nodeSpec struct {
	Template string     `yaml:"template"`
	Options  Options    `yaml:"options"`
	Children []nodeSpec `yaml:"children"`
}

// Load decodes a layout and binds its template names to parsed templates.
func Load(data []byte, templates map[string]*compiler.Template) (*Set, error) {
	var doc layoutDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse hierarchy: %w", err)
	}

	set := &Set{}
	if doc.Docstring != "" {
		t, ok := templates[doc.Docstring]
		if !ok {
			return nil, fmt.Errorf("%w: docstring %s", ErrMissingTemplate, doc.Docstring)
		}
		set.Docstring = t
	}

	for name, specs := range doc.Variants {
		tree, err := build(specs, templates, name)
		if err != nil {
			return nil, err
		}
		switch name {
		case VariantPerDevice:
			set.PerDevice = tree
		case VariantMatchingNameAndClass:
			set.MatchingNameAndClass = tree
		case VariantViews:
			set.Views = tree
		default:
			return nil, fmt.Errorf("unknown hierarchy variant %q", name)
		}
	}

	if len(set.PerDevice) == 0 {
		return nil, fmt.Errorf("hierarchy variant %q must not be empty", VariantPerDevice)
	}
	return set, nil
}

// LoadFile reads a layout file. An empty path loads DefaultLayout.
func LoadFile(path string, templates map[string]*compiler.Template) (*Set, error) {
	if path == "" {
		return Load([]byte(DefaultLayout), templates)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy: %w", err)
	}
	return Load(data, templates)
}

func build(specs []nodeSpec, templates map[string]*compiler.Template, path string) (Tree, error) {
	tree := make(Tree, 0, len(specs))
	for _, spec := range specs {
		t, ok := templates[spec.Template]
		if !ok {
			return nil, fmt.Errorf("%w: %s (in %s)", ErrMissingTemplate, spec.Template, path)
		}
		children, err := build(spec.Children, templates, path+"/"+spec.Template)
		if err != nil {
			return nil, err
		}
		tree = append(tree, &Node{Template: t, Options: spec.Options, Children: children})
	}
	return tree, nil
}
