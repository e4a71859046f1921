package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeActions(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"{{prefix}}", "{{.prefix}}"},
		{"{{ name }}", "{{ .name }}"},
		{"{{prefix}}:{{ suffix }}", "{{.prefix}}:{{ .suffix }}"},
		{"{{ name | upper }}", "{{ .name | upper }}"},
		{"{{- name -}}", "{{- .name -}}"},
		{"{{ location.hutch }}", "{{ .location.hutch }}"},
		{"{{ .prefix }}", "{{ .prefix }}"},
		{`{{ "x" }}`, `{{ "x" }}`},
		{"{{ if .a }}a{{ else }}b{{ end }}", "{{ if .a }}a{{ else }}b{{ end }}"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeActions(tt.src))
		})
	}
}

func TestRenderArgument(t *testing.T) {
	item := map[string]any{
		"name":     "at1k4",
		"prefix":   "AT1K4:L2SI",
		"location": map[string]any{"hutch": "tmo"},
	}

	tests := []struct {
		src  string
		want string
	}{
		{"{{prefix}}", "AT1K4:L2SI"},
		{"{{name}}", "at1k4"},
		{"{{ prefix }}:CALC", "AT1K4:L2SI:CALC"},
		{"{{ name | upper }}", "AT1K4"},
		{"{{ location.hutch }}", "tmo"},
		{"{{ .prefix }}", "AT1K4:L2SI"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := RenderArgument(tt.src, item)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
