package cli

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/pcdshub/happi-to-confluence/internal/compiler"
	"github.com/pcdshub/happi-to-confluence/internal/config"
	"github.com/pcdshub/happi-to-confluence/internal/hierarchy"
	"github.com/pcdshub/happi-to-confluence/internal/presentation/graph"
	"github.com/pcdshub/happi-to-confluence/internal/validator"
	"github.com/pcdshub/happi-to-confluence/pkg/adapters/file"
)

// Validate checks every template and the hierarchy named by the config.
func Validate(configPath string) (*validator.Report, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	parser := compiler.NewParser(compiler.WithGenerationLabel(cfg.Labels.Generated))
	return validator.Validate(parser, cfg.TemplatesDir, cfg.HierarchyFile), nil
}

// TreeOptions selects what the tree command draws.
type TreeOptions struct {
	ConfigPath string
	Production bool
	Variant    string
	// Item highlights the pages the last saved run resolved for this identifier.
	Item string
}

// Tree renders a hierarchy variant as a Mermaid graph.
func Tree(opts TreeOptions) (string, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return "", err
	}
	layout, err := loadLayout(cfg)
	if err != nil {
		return "", err
	}

	variant := opts.Variant
	if variant == "" {
		variant = hierarchy.VariantPerDevice
	}
	tree, ok := layout.Variant(variant)
	if !ok {
		return "", fmt.Errorf("unknown variant %q (want one of %v)", variant, hierarchy.VariantNames())
	}

	var overlay *graph.GraphOverlay
	if opts.Item != "" {
		state, err := file.NewStateFile(cfg.StateFile).Load()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return "", err
			}
			return "", fmt.Errorf("no saved state at %s; run first", cfg.StateFile)
		}
		overlay = &graph.GraphOverlay{
			Resolved: slices.Sorted(maps.Keys(state.ItemState(opts.Item))),
		}
	}

	return graph.GenerateMermaid(cfg.Target(opts.Production).RootTitle, tree, overlay), nil
}
