package runtime

import (
	"maps"

	"github.com/pcdshub/happi-to-confluence/internal/compiler"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

// BindArguments resolves the constructor arguments an inventory item would
// pass to its device class, for display on the class docstring.
//
// Argument values that are strings are rendered as templates against the raw
// item first. A strict bind maps positionals onto positional parameters and
// keywords onto named parameters. If that fails (too many positionals, an
// unknown keyword, a keyword repeating a positional, a missing required
// parameter), the positionals are dropped and the declared keywords are merged
// as-is. In both tiers parameter defaults fill gaps and declared keywords win
// every collision.
func BindArguments(params []domain.Parameter, args []any, kwargs map[string]any, item map[string]any) (map[string]any, bool) {
	out := make(map[string]any)
	for _, p := range params {
		if p.HasDefault {
			out[p.Name] = p.Default
		}
	}

	renderedArgs := make([]any, len(args))
	for i, v := range args {
		renderedArgs[i] = renderArg(v, item)
	}
	renderedKwargs := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		renderedKwargs[k] = renderArg(v, item)
	}

	bound, ok := strictBind(params, renderedArgs, renderedKwargs)
	if ok {
		maps.Copy(out, bound)
	}
	maps.Copy(out, renderedKwargs)
	return out, ok
}

func strictBind(params []domain.Parameter, args []any, kwargs map[string]any) (map[string]any, bool) {
	bound := make(map[string]any)
	byName := make(map[string]domain.Parameter, len(params))
	var varPositional, varKeyword string

	pos := 0
	for _, p := range params {
		byName[p.Name] = p
		switch p.Kind {
		case domain.ParamVarPositional:
			varPositional = p.Name
		case domain.ParamVarKeyword:
			varKeyword = p.Name
		case domain.ParamPositional, "":
			if pos < len(args) {
				bound[p.Name] = args[pos]
				pos++
			}
		}
	}

	if pos < len(args) {
		if varPositional == "" {
			return nil, false
		}
		bound[varPositional] = append([]any(nil), args[pos:]...)
	}

	for name, value := range kwargs {
		p, known := byName[name]
		if !known || p.Kind == domain.ParamVarPositional || p.Kind == domain.ParamVarKeyword {
			if varKeyword == "" {
				return nil, false
			}
			continue
		}
		if _, dup := bound[name]; dup {
			return nil, false
		}
		bound[name] = value
	}

	for _, p := range params {
		if p.Kind == domain.ParamVarPositional || p.Kind == domain.ParamVarKeyword || p.HasDefault {
			continue
		}
		if _, ok := bound[p.Name]; !ok {
			return nil, false
		}
	}
	return bound, true
}

func renderArg(v any, item map[string]any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	rendered, err := compiler.RenderArgument(s, item)
	if err != nil {
		return s
	}
	return rendered
}
