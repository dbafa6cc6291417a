// internal/template/parser.go
package template

import (
	"encoding/json"
	"strings"

	"github.com/solatis/weavereplace/internal/types"
)

/*
 * Recursive-descent parser for the placeholder grammar.
 *
 *   template := (literal | variable | function)*
 *   variable := VSTART path VEND
 *   function := FSTART name "(" arg ["," ws object ws] ")" FEND
 *   name     := [A-Za-z0-9_]+
 *   arg      := (literal | variable | function)*   balanced "(" ")" in literal text
 *
 * A function nested inside an argument may omit FEND. At the top level a
 * function without FEND is not a placeholder, and a function whose argument
 * has an unbalanced ")" extends to the first ")" FEND after its name. The options object is recognised
 * only when it decodes as a JSON object and is followed by the closing ")";
 * otherwise the comma is argument text. Anything that fails to parse as a
 * placeholder is kept as literal text, so parsing never fails.
 */

type parser struct {
	src string
	pos int
	d   Delimiters
}

// Parse splits src into literal, variable and function nodes.
func Parse(src string, d Delimiters) []Node {
	p := &parser{src: src, d: d}
	return p.sequence(false)
}

func (p *parser) sequence(inArg bool) []Node {
	var nodes []Node
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			nodes = append(nodes, Literal{Text: lit.String()})
			lit.Reset()
		}
	}

	depth := 0
	for p.pos < len(p.src) {
		rest := p.src[p.pos:]

		if strings.HasPrefix(rest, p.d.Function.Start) {
			if fn, ok := p.function(inArg); ok {
				flush()
				nodes = append(nodes, fn)
				continue
			}
		}
		if strings.HasPrefix(rest, p.d.Variable.Start) {
			if v, ok := p.variable(); ok {
				flush()
				nodes = append(nodes, v)
				continue
			}
		}

		if inArg {
			switch rest[0] {
			case '(':
				depth++
			case ')':
				if depth == 0 {
					flush()
					return nodes
				}
				depth--
			case ',':
				if depth == 0 {
					if _, _, ok := p.options(p.pos); ok {
						flush()
						return nodes
					}
				}
			}
		}

		lit.WriteByte(rest[0])
		p.pos++
	}

	flush()
	return nodes
}

func (p *parser) variable() (Variable, bool) {
	start := p.pos
	open := start + len(p.d.Variable.Start)
	end := strings.Index(p.src[open:], p.d.Variable.End)
	if end < 0 {
		return Variable{}, false
	}
	p.pos = open + end + len(p.d.Variable.End)
	return Variable{
		Path: strings.TrimSpace(p.src[open : open+end]),
		Raw:  p.src[start:p.pos],
	}, true
}

func (p *parser) function(nested bool) (Function, bool) {
	start := p.pos
	if fn, ok := p.balancedFunction(nested); ok {
		return fn, true
	}
	p.pos = start
	if nested {
		return Function{}, false
	}
	return p.lazyFunction()
}

func (p *parser) balancedFunction(nested bool) (Function, bool) {
	start := p.pos
	i := start + len(p.d.Function.Start)
	j := i
	for j < len(p.src) && isNameByte(p.src[j]) {
		j++
	}
	if j == i || j >= len(p.src) || p.src[j] != '(' {
		return Function{}, false
	}

	name := p.src[i:j]
	p.pos = j + 1
	arg := p.sequence(true)

	var opts types.Options
	if p.pos < len(p.src) && p.src[p.pos] == ',' {
		o, closing, ok := p.options(p.pos)
		if !ok {
			p.pos = start
			return Function{}, false
		}
		opts = o
		p.pos = closing
	}

	if p.pos >= len(p.src) || p.src[p.pos] != ')' {
		p.pos = start
		return Function{}, false
	}
	p.pos++

	switch {
	case strings.HasPrefix(p.src[p.pos:], p.d.Function.End):
		p.pos += len(p.d.Function.End)
	case !nested:
		p.pos = start
		return Function{}, false
	}

	return Function{
		Name:    name,
		Arg:     trimEdges(arg),
		Options: opts,
		Raw:     p.src[start:p.pos],
	}, true
}

// lazyFunction reads a top-level function whose argument holds unbalanced
// parentheses. The argument runs to the first ")" followed by FEND and must
// not contain another function start marker; a trailing `, {json}` in it is
// the options object.
func (p *parser) lazyFunction() (Function, bool) {
	start := p.pos
	i := start + len(p.d.Function.Start)
	j := i
	for j < len(p.src) && isNameByte(p.src[j]) {
		j++
	}
	if j == i || j >= len(p.src) || p.src[j] != '(' {
		return Function{}, false
	}

	closer := ")" + p.d.Function.End
	k := strings.Index(p.src[j+1:], closer)
	if k < 0 {
		return Function{}, false
	}
	inner := p.src[j+1 : j+1+k]
	if strings.Contains(inner, p.d.Function.Start) {
		return Function{}, false
	}

	argText, opts := splitOptions(inner)
	p.pos = j + 1 + k + len(closer)
	return Function{
		Name:    p.src[i:j],
		Arg:     trimEdges(Parse(argText, p.d)),
		Options: opts,
		Raw:     p.src[start:p.pos],
	}, true
}

// splitOptions separates the first trailing `, {json object}` from argument
// text.
func splitOptions(inner string) (string, types.Options) {
	for i := 0; i < len(inner); i++ {
		if inner[i] != ',' {
			continue
		}
		j := skipSpace(inner, i+1)
		if j >= len(inner) || inner[j] != '{' {
			continue
		}
		end, ok := objectEnd(inner, j)
		if !ok || skipSpace(inner, end) != len(inner) {
			continue
		}
		var opts map[string]any
		if err := json.Unmarshal([]byte(inner[j:end]), &opts); err != nil || opts == nil {
			continue
		}
		return inner[:i], types.Options(opts)
	}
	return inner, nil
}

// options reads `, {json}` followed by ")" starting at the comma at pos. It
// returns the decoded object and the index of the closing parenthesis.
func (p *parser) options(pos int) (types.Options, int, bool) {
	i := skipSpace(p.src, pos+1)
	if i >= len(p.src) || p.src[i] != '{' {
		return nil, 0, false
	}
	end, ok := objectEnd(p.src, i)
	if !ok {
		return nil, 0, false
	}
	closing := skipSpace(p.src, end)
	if closing >= len(p.src) || p.src[closing] != ')' {
		return nil, 0, false
	}

	var opts map[string]any
	if err := json.Unmarshal([]byte(p.src[i:end]), &opts); err != nil || opts == nil {
		return nil, 0, false
	}
	return types.Options(opts), closing, true
}

// objectEnd returns the index just past the brace that closes the object
// opened at start, honouring JSON string literals.
func objectEnd(s string, start int) (int, bool) {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func trimEdges(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nodes
	}
	if l, ok := nodes[0].(Literal); ok {
		l.Text = strings.TrimLeft(l.Text, " \t\n\r")
		if l.Text == "" {
			nodes = nodes[1:]
		} else {
			nodes[0] = l
		}
	}
	if len(nodes) == 0 {
		return nodes
	}
	last := len(nodes) - 1
	if l, ok := nodes[last].(Literal); ok {
		l.Text = strings.TrimRight(l.Text, " \t\n\r")
		if l.Text == "" {
			nodes = nodes[:last]
		} else {
			nodes[last] = l
		}
	}
	return nodes
}
