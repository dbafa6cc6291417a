// internal/rules/compile.go
package rules

import (
	"regexp"

	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
	"github.com/solatis/weavereplace/internal/wildcard"
)

/*
 * Condition normalisation.
 *
 * Compile prepares a rule set for evaluation without reordering it:
 *   1. Malformed conditions (non-string columnKey or operator) are dropped and
 *      reported through the skipped callback.
 *   2. "in" / "not_in" values that are not lists are wrapped in a one-element
 *      list.
 *   3. The column key is compiled into the numeric-index wildcard pattern used
 *      by MatchPaths.
 *
 * Order is preserved exactly: the rule set is a left fold and reordering would
 * change its meaning. Enum values are left wrapped; Evaluate unwraps them.
 */

// CompiledCondition is a validated condition ready for evaluation.
type CompiledCondition struct {
	Condition types.Condition
	Value     any
	Pattern   *regexp.Regexp
}

// Compile normalises set. skipped, when non-nil, is called with the index of
// every dropped condition.
func Compile(set types.RuleSet, skipped func(index int, c types.Condition)) []CompiledCondition {
	compiled := make([]CompiledCondition, 0, len(set))
	for i, c := range set {
		if !c.Valid() {
			if skipped != nil {
				skipped(i, c)
			}
			continue
		}

		value := c.Value
		if c.Operator == types.OpIn || c.Operator == types.OpNotIn {
			if _, isEnum := value.(types.Enum); isEnum || !values.IsList(value) {
				value = []any{value}
			}
		}

		compiled = append(compiled, CompiledCondition{
			Condition: c,
			Value:     value,
			Pattern:   wildcard.Pattern(c.ColumnKey),
		})
	}
	return compiled
}
