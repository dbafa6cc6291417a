// internal/rules/operators.go
package rules

import (
	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
)

/*
 * Operator comparison logic.
 *
 * Eight operators over loosely typed values:
 *   - "=", "!=": loose equality (numeric strings equal numbers, nil equals
 *     false and "", etc.)
 *   - ">", "<", ">=", "<=": ordered comparison via values.CompareLoose;
 *     incomparable operands never satisfy an ordered operator
 *   - "in", "not_in": loose membership; a non-list value is a one-element list
 *
 * Enum-like operands are unwrapped to their scalar before comparison. An
 * unrecognised operator evaluates to false.
 */

// Evaluate applies op to a candidate value and the condition value.
func Evaluate(candidate any, op string, value any) bool {
	candidate = unwrap(candidate)
	value = unwrap(value)

	switch op {
	case types.OpEq:
		return values.LooseEqual(candidate, value)
	case types.OpNeq:
		return !values.LooseEqual(candidate, value)
	case types.OpGt:
		return values.CompareLoose(candidate, value) == values.Greater
	case types.OpLt:
		return values.CompareLoose(candidate, value) == values.Less
	case types.OpGte:
		o := values.CompareLoose(candidate, value)
		return o == values.Greater || o == values.Equal
	case types.OpLte:
		o := values.CompareLoose(candidate, value)
		return o == values.Less || o == values.Equal
	case types.OpIn:
		return values.Contains(asList(value), candidate)
	case types.OpNotIn:
		return !values.Contains(asList(value), candidate)
	}
	return false
}

// IsOperator reports whether op is understood by Evaluate.
func IsOperator(op string) bool {
	switch op {
	case types.OpEq, types.OpNeq, types.OpGt, types.OpLt, types.OpGte, types.OpLte, types.OpIn, types.OpNotIn:
		return true
	}
	return false
}

func unwrap(v any) any {
	if e, ok := v.(types.Enum); ok {
		return e.EnumValue()
	}
	return v
}

func asList(v any) []any {
	if list, ok := values.Normalize(v).([]any); ok {
		return list
	}
	return []any{v}
}
