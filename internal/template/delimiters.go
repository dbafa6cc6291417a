package template

import (
	"fmt"
	"strings"

	"github.com/solatis/weavereplace/internal/types"
)

// Pair is a start/end marker pair.
type Pair struct {
	Start string `mapstructure:"start" json:"start" yaml:"start"`
	End   string `mapstructure:"end" json:"end" yaml:"end"`
}

// Delimiters configures the placeholder markers.
type Delimiters struct {
	Variable Pair `mapstructure:"variable" json:"variable" yaml:"variable"`
	Function Pair `mapstructure:"function" json:"function" yaml:"function"`
}

// DefaultDelimiters returns {{ }} for variables and @@ @@ for functions.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		Variable: Pair{Start: "{{", End: "}}"},
		Function: Pair{Start: "@@", End: "@@"},
	}
}

// Validate checks that all markers are non-empty, that neither start marker
// contains the other, and that no end marker equals or contains the other
// kind's start marker.
func (d Delimiters) Validate() error {
	markers := map[string]string{
		"variable start": d.Variable.Start,
		"variable end":   d.Variable.End,
		"function start": d.Function.Start,
		"function end":   d.Function.End,
	}
	for name, m := range markers {
		if m == "" {
			return fmt.Errorf("%w: %s marker is empty", types.ErrInvalidDelimiters, name)
		}
	}

	if d.Variable.Start == d.Function.Start {
		return fmt.Errorf("%w: variable and function start markers are both %q",
			types.ErrInvalidDelimiters, d.Variable.Start)
	}
	if strings.Contains(d.Variable.Start, d.Function.Start) || strings.Contains(d.Function.Start, d.Variable.Start) {
		return fmt.Errorf("%w: start markers %q and %q overlap",
			types.ErrInvalidDelimiters, d.Variable.Start, d.Function.Start)
	}
	if strings.Contains(d.Variable.End, d.Function.Start) {
		return fmt.Errorf("%w: variable end marker %q contains function start marker %q",
			types.ErrInvalidDelimiters, d.Variable.End, d.Function.Start)
	}
	if strings.Contains(d.Function.End, d.Variable.Start) {
		return fmt.Errorf("%w: function end marker %q contains variable start marker %q",
			types.ErrInvalidDelimiters, d.Function.End, d.Variable.Start)
	}
	return nil
}
