package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name       string
		existing   string
		rendered   string
		equivalent bool
	}{
		{
			name:       "identical",
			existing:   "<p>a</p>\n<p>b</p>",
			rendered:   "<p>a</p>\n<p>b</p>",
			equivalent: true,
		},
		{
			name:       "only decorative tags replaced",
			existing:   "<table>\n<colgroup><col /></colgroup>\n<tbody>\n<tr><td>x</td></tr>\n</tbody>\n</table>",
			rendered:   "<table>\n<colgroup> <col/> </colgroup>\n<tbody >\n<tr><td>x</td></tr>\n</tbody>\n</table>",
			equivalent: true,
		},
		{
			name:       "closing tag variant",
			existing:   "<p>x</p>\n</thead>",
			rendered:   "<p>x</p>\n  </thead >",
			equivalent: true,
		},
		{
			name:       "blank line inserted",
			existing:   "<p>a</p>\n<p>b</p>",
			rendered:   "<p>a</p>\n\n<p>b</p>",
			equivalent: true,
		},
		{
			name:       "whitespace line removed",
			existing:   "<p>a</p>\n   \n<p>b</p>",
			rendered:   "<p>a</p>\n<p>b</p>",
			equivalent: true,
		},
		{
			name:       "content changed",
			existing:   "<p>a</p>\n<p>old</p>",
			rendered:   "<p>a</p>\n<p>new</p>",
			equivalent: false,
		},
		{
			name:       "content inserted",
			existing:   "<p>a</p>",
			rendered:   "<p>a</p>\n<p>extra</p>",
			equivalent: false,
		},
		{
			name:       "content removed",
			existing:   "<p>a</p>\n<p>gone</p>",
			rendered:   "<p>a</p>",
			equivalent: false,
		},
		{
			name:       "decorative old side but content new side",
			existing:   "<h1>x</h1>\n<br/>",
			rendered:   "<h1>x</h1>\n<p>text</p>",
			equivalent: false,
		},
		{
			name:       "tag name prefix is not enough",
			existing:   "<p>x</p>\n<column>a</column>",
			rendered:   "<p>x</p>\n<column>b</column>",
			equivalent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compare(tt.existing, tt.rendered)
			assert.Equal(t, tt.equivalent, res.Equivalent)
			assert.Equal(t, tt.existing == tt.rendered, res.Identical)
			if !tt.equivalent {
				assert.NotEmpty(t, res.Changes())
			}
		})
	}
}

func TestCompare_LineKinds(t *testing.T) {
	res := Compare("a\nb\n<br>\nd", "a\nb\n<br/>\nd\nc")

	var kinds []string
	for _, l := range res.Lines {
		kinds = append(kinds, l.Kind.String()+l.Text)
	}
	assert.Equal(t, []string{" a", " b", "!<br>", "!<br/>", " d", "+c"}, kinds)
	assert.Equal(t, []Line{{Kind: LineAdded, Text: "c"}}, res.Changes())
}

func TestIsIgnoredMarkup(t *testing.T) {
	tests := map[string]bool{
		"<br>":                true,
		"<br/>":               true,
		"</tbody>":            true,
		"  <col width=\"1\">": true,
		"<colgroup>":          true,
		"<thead\t>":           true,
		"<tbody":              true,
		"<p>":                 false,
		"<brx>":               false,
		"text <br>":           false,
		"":                    false,
	}
	for line, want := range tests {
		assert.Equal(t, want, IsIgnoredMarkup(line), line)
	}
}

func TestContextDiff(t *testing.T) {
	text, err := ContextDiff("det1", "a\nb\n", "a\nc\n")
	assert.NoError(t, err)
	assert.Contains(t, text, "*** det1")
	assert.Contains(t, text, "--- new-det1")
	assert.Contains(t, text, "! b")
	assert.Contains(t, text, "! c")
}
