package template

import (
	"strings"

	"github.com/solatis/weavereplace/internal/types"
)

// Node is one element of a parsed template.
type Node interface {
	// Source returns the node's template text.
	Source() string
}

// Literal is plain text.
type Literal struct {
	Text string
}

// Variable is a variable placeholder. Path is trimmed of surrounding space.
type Variable struct {
	Path string
	Raw  string
}

// Function is a function placeholder. Arg is the parsed argument with leading
// and trailing space trimmed; Options is nil when no options object was given.
type Function struct {
	Name    string
	Arg     []Node
	Options types.Options
	Raw     string
}

func (l Literal) Source() string  { return l.Text }
func (v Variable) Source() string { return v.Raw }
func (f Function) Source() string { return f.Raw }

// Source concatenates the template text of nodes.
func Source(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(n.Source())
	}
	return b.String()
}

func hasPlaceholder(nodes []Node) bool {
	for _, n := range nodes {
		if _, ok := n.(Literal); !ok {
			return true
		}
	}
	return false
}

func hasFunction(nodes []Node) bool {
	for _, n := range nodes {
		if _, ok := n.(Function); ok {
			return true
		}
	}
	return false
}
