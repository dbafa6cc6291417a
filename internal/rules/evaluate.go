// internal/rules/evaluate.go
package rules

import (
	"github.com/solatis/weavereplace/internal/types"
)

/*
 * Rule set evaluation.
 *
 * A rule set is a strict left fold; there is no precedence between "and" and
 * "or":
 *
 *   [a and, b or, c and]  evaluates as  ((a OR b) AND c)
 *
 * The first valid condition seeds the result regardless of its type. Each
 * condition matches existentially: it holds when any candidate value for its
 * column key satisfies the operator, so "users.*.age > 18" holds when at least
 * one user is older than 18. An empty or fully malformed rule set does not
 * match.
 *
 * All conditions are evaluated; there is no short-circuit, because a later
 * "or" can still turn a false result true.
 */

// PathMatch explains one flattened key that satisfied a condition.
type PathMatch struct {
	Path  string          `json:"path"`
	Value any             `json:"value"`
	Rule  types.Condition `json:"rule"`
}

// Matches evaluates set against ctx.
func Matches(set types.RuleSet, ctx types.Context) bool {
	return defaultEngine.Matches(set, ctx)
}

// MatchPaths lists every flattened key that matched a condition's pattern and
// satisfied its operator, in condition order then natural key order.
func MatchPaths(set types.RuleSet, ctx types.Context) []PathMatch {
	return defaultEngine.MatchPaths(set, ctx)
}

func matches(compiled []CompiledCondition, ctx types.Context) bool {
	overall := false
	for i, cc := range compiled {
		matched := matchCondition(cc, ctx)
		if i == 0 {
			overall = matched
			continue
		}
		if cc.Condition.Combinator() == types.TypeOr {
			overall = overall || matched
		} else {
			overall = overall && matched
		}
	}
	return overall
}

func matchCondition(cc CompiledCondition, ctx types.Context) bool {
	for _, candidate := range Candidates(ctx, cc.Condition.ColumnKey) {
		if Evaluate(candidate, cc.Condition.Operator, cc.Value) {
			return true
		}
	}
	return false
}

func matchPaths(compiled []CompiledCondition, ctx types.Context) []PathMatch {
	var out []PathMatch
	keys := ctx.Keys()
	for _, cc := range compiled {
		for _, key := range keys {
			if !cc.Pattern.MatchString(key) {
				continue
			}
			if Evaluate(ctx[key], cc.Condition.Operator, cc.Value) {
				out = append(out, PathMatch{Path: key, Value: ctx[key], Rule: cc.Condition})
			}
		}
	}
	return out
}
