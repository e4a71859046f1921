package runtime

import (
	"testing"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestBindArguments(t *testing.T) {
	item := map[string]any{"name": "det1", "prefix": "DET:1"}
	detector := []domain.Parameter{
		{Name: "prefix", Kind: domain.ParamPositional},
		{Name: "name", Kind: domain.ParamKeywordOnly},
		{Name: "timeout", Kind: domain.ParamKeywordOnly, Default: 5, HasDefault: true},
	}

	tests := []struct {
		name       string
		params     []domain.Parameter
		args       []any
		kwargs     map[string]any
		want       map[string]any
		wantStrict bool
	}{
		{
			name:       "templated arguments bind strictly",
			params:     detector,
			args:       []any{"{{ .prefix }}"},
			kwargs:     map[string]any{"name": "{{ .name }}"},
			want:       map[string]any{"prefix": "DET:1", "name": "det1", "timeout": 5},
			wantStrict: true,
		},
		{
			name:       "happi-style argument templates bind strictly",
			params:     detector,
			args:       []any{"{{prefix}}"},
			kwargs:     map[string]any{"name": "{{name}}"},
			want:       map[string]any{"prefix": "DET:1", "name": "det1", "timeout": 5},
			wantStrict: true,
		},
		{
			name:       "declared kwargs override defaults",
			params:     detector,
			args:       []any{"X"},
			kwargs:     map[string]any{"name": "n", "timeout": 10},
			want:       map[string]any{"prefix": "X", "name": "n", "timeout": 10},
			wantStrict: true,
		},
		{
			name:   "too many positionals fall back to kwargs",
			params: []domain.Parameter{{Name: "a", Kind: domain.ParamPositional}},
			args:   []any{1, 2},
			kwargs: map[string]any{"b": 3},
			want:   map[string]any{"b": 3},
		},
		{
			name:       "extra positionals collected",
			params:     []domain.Parameter{{Name: "a"}, {Name: "args", Kind: domain.ParamVarPositional}},
			args:       []any{1, 2, 3},
			want:       map[string]any{"a": 1, "args": []any{2, 3}},
			wantStrict: true,
		},
		{
			name:       "unknown keyword accepted by var keyword",
			params:     []domain.Parameter{{Name: "kwargs", Kind: domain.ParamVarKeyword}},
			kwargs:     map[string]any{"x": 1},
			want:       map[string]any{"x": 1},
			wantStrict: true,
		},
		{
			name:   "unknown keyword falls back",
			params: []domain.Parameter{{Name: "a", Kind: domain.ParamKeywordOnly, Default: 0, HasDefault: true}},
			kwargs: map[string]any{"x": 1},
			want:   map[string]any{"a": 0, "x": 1},
		},
		{
			name:   "keyword repeating a positional falls back",
			params: []domain.Parameter{{Name: "a", Kind: domain.ParamPositional}},
			args:   []any{1},
			kwargs: map[string]any{"a": 2},
			want:   map[string]any{"a": 2},
		},
		{
			name:   "missing required parameter falls back",
			params: []domain.Parameter{{Name: "a", Kind: domain.ParamPositional}},
			want:   map[string]any{},
		},
		{
			name:       "broken template kept verbatim",
			params:     []domain.Parameter{{Name: "a"}},
			args:       []any{"{{ .prefix"},
			want:       map[string]any{"a": "{{ .prefix"},
			wantStrict: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strict := BindArguments(tt.params, tt.args, tt.kwargs, item)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantStrict, strict)
		})
	}
}
