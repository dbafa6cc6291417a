package template

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solatis/weavereplace/internal/types"
)

func TestParse(t *testing.T) {
	d := DefaultDelimiters()

	tests := []struct {
		name string
		src  string
		want []Node
	}{
		{
			name: "plain text",
			src:  "hello",
			want: []Node{Literal{Text: "hello"}},
		},
		{
			name: "variable trims path",
			src:  "{{ a.b }}",
			want: []Node{Variable{Path: "a.b", Raw: "{{ a.b }}"}},
		},
		{
			name: "function between text",
			src:  "x @@upper({{a}})@@ y",
			want: []Node{
				Literal{Text: "x "},
				Function{
					Name: "upper",
					Arg:  []Node{Variable{Path: "a", Raw: "{{a}}"}},
					Raw:  "@@upper({{a}})@@",
				},
				Literal{Text: " y"},
			},
		},
		{
			name: "nested function without end marker",
			src:  "@@upper(@@trim( hi ))@@",
			want: []Node{
				Function{
					Name: "upper",
					Arg: []Node{
						Function{Name: "trim", Arg: []Node{Literal{Text: "hi"}}, Raw: "@@trim( hi )"},
					},
					Raw: "@@upper(@@trim( hi ))@@",
				},
			},
		},
		{
			name: "nested function with end marker",
			src:  "@@upper(@@trim(a)@@)@@",
			want: []Node{
				Function{
					Name: "upper",
					Arg: []Node{
						Function{Name: "trim", Arg: []Node{Literal{Text: "a"}}, Raw: "@@trim(a)@@"},
					},
					Raw: "@@upper(@@trim(a)@@)@@",
				},
			},
		},
		{
			name: "options object",
			src:  `@@limit({{t}}, {"length": 3})@@`,
			want: []Node{
				Function{
					Name:    "limit",
					Arg:     []Node{Variable{Path: "t", Raw: "{{t}}"}},
					Options: types.Options{"length": 3.0},
					Raw:     `@@limit({{t}}, {"length": 3})@@`,
				},
			},
		},
		{
			name: "invalid options stay in argument",
			src:  "@@f(a, {bad})@@",
			want: []Node{
				Function{Name: "f", Arg: []Node{Literal{Text: "a, {bad}"}}, Raw: "@@f(a, {bad})@@"},
			},
		},
		{
			name: "balanced parentheses in argument",
			src:  "@@f(a (b) c)@@",
			want: []Node{
				Function{Name: "f", Arg: []Node{Literal{Text: "a (b) c"}}, Raw: "@@f(a (b) c)@@"},
			},
		},
		{
			name: "empty argument",
			src:  "@@now()@@",
			want: []Node{Function{Name: "now", Raw: "@@now()@@"}},
		},
		{
			name: "top-level function without end marker is text",
			src:  "@@upper(x)",
			want: []Node{Literal{Text: "@@upper(x)"}},
		},
		{
			name: "unbalanced parenthesis in top-level argument",
			src:  "@@upper(a)b)@@",
			want: []Node{
				Function{Name: "upper", Arg: []Node{Literal{Text: "a)b"}}, Raw: "@@upper(a)b)@@"},
			},
		},
		{
			name: "unbalanced argument with variable and options",
			src:  `x @@limit({{t}}) ok, {"length": 2})@@`,
			want: []Node{
				Literal{Text: "x "},
				Function{
					Name: "limit",
					Arg: []Node{
						Variable{Path: "t", Raw: "{{t}}"},
						Literal{Text: ") ok"},
					},
					Options: types.Options{"length": 2.0},
					Raw:     `@@limit({{t}}) ok, {"length": 2})@@`,
				},
			},
		},
		{
			name: "unbalanced argument does not swallow a later function",
			src:  "@@upper(x) and @@lower(Y)@@",
			want: []Node{
				Literal{Text: "@@upper(x) and "},
				Function{Name: "lower", Arg: []Node{Literal{Text: "Y"}}, Raw: "@@lower(Y)@@"},
			},
		},
		{
			name: "unterminated variable is text",
			src:  "{{unclosed",
			want: []Node{Literal{Text: "{{unclosed"}},
		},
		{
			name: "marker without name is text",
			src:  "a @@ b",
			want: []Node{Literal{Text: "a @@ b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.src, d)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.src, Source(got))
		})
	}
}

func TestDelimitersValidate(t *testing.T) {
	tests := []struct {
		name    string
		d       Delimiters
		wantErr bool
	}{
		{name: "defaults", d: DefaultDelimiters()},
		{
			name: "custom",
			d:    Delimiters{Variable: Pair{"[[", "]]"}, Function: Pair{"%%", "%%"}},
		},
		{
			name:    "empty end",
			d:       Delimiters{Variable: Pair{"{{", ""}, Function: Pair{"@@", "@@"}},
			wantErr: true,
		},
		{
			name:    "same start",
			d:       Delimiters{Variable: Pair{"@@", "}}"}, Function: Pair{"@@", "@@"}},
			wantErr: true,
		},
		{
			name:    "variable end is function start",
			d:       Delimiters{Variable: Pair{"{{", "@@"}, Function: Pair{"@@", "@@"}},
			wantErr: true,
		},
		{
			name:    "variable end contains function start",
			d:       Delimiters{Variable: Pair{"<", "#>"}, Function: Pair{"#", "#"}},
			wantErr: true,
		},
		{
			name:    "function end contains variable start",
			d:       Delimiters{Variable: Pair{"[", "]"}, Function: Pair{"%%", "[%"}},
			wantErr: true,
		},
		{
			name: "end markers may repeat their own start",
			d:    Delimiters{Variable: Pair{"$", "$"}, Function: Pair{"#", "#"}},
		},
		{
			name:    "nested start",
			d:       Delimiters{Variable: Pair{"{{", "}}"}, Function: Pair{"{", "}"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidDelimiters)
				return
			}
			assert.NoError(t, err)
		})
	}
}
