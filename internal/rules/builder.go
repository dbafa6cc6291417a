package rules

import (
	"github.com/solatis/weavereplace/internal/extract"
	"github.com/solatis/weavereplace/internal/types"
)

// Rule accumulates conditions fluently:
//
//	rules.NewRule().And("status", "=", "active").Or("role", "in", []any{"admin"})
//
// Nothing is validated while building; malformed conditions are skipped when
// the rule is evaluated.
type Rule struct {
	conditions types.RuleSet
	engine     *Engine
}

// NewRule returns an empty rule evaluated with the default engine.
func NewRule() *Rule {
	return &Rule{engine: defaultEngine}
}

// WithEngine evaluates the rule with e.
func (r *Rule) WithEngine(e *Engine) *Rule {
	if e != nil {
		r.engine = e
	}
	return r
}

// And appends an "and" condition.
func (r *Rule) And(columnKey, operator string, value any) *Rule {
	return r.add(columnKey, operator, value, types.TypeAnd)
}

// Or appends an "or" condition.
func (r *Rule) Or(columnKey, operator string, value any) *Rule {
	return r.add(columnKey, operator, value, types.TypeOr)
}

func (r *Rule) add(columnKey, operator string, value any, typ types.ConditionType) *Rule {
	r.conditions = append(r.conditions, types.Condition{
		ColumnKey: columnKey,
		Operator:  operator,
		Value:     value,
		Type:      typ,
	})
	return r
}

// Get returns a copy of the accumulated conditions in order.
func (r *Rule) Get() types.RuleSet {
	out := make(types.RuleSet, len(r.conditions))
	copy(out, r.conditions)
	return out
}

// EvaluateAgainst matches the rule against a context or a record.
// A types.Context or map[string]any is used as the flattened context as-is;
// an extract.Record is extracted with columns first. Other sources evaluate
// against an empty context.
func (r *Rule) EvaluateAgainst(source any, columns []types.ColumnDescriptor) bool {
	return r.engine.Matches(r.conditions, ContextOf(source, columns))
}

// ContextOf returns the flattened context for source.
func ContextOf(source any, columns []types.ColumnDescriptor) types.Context {
	switch s := source.(type) {
	case types.Context:
		return s
	case extract.MapRecord:
		return extract.Extract(s, columns)
	case map[string]any:
		return types.Context(s)
	case extract.Record:
		return extract.Extract(s, columns)
	}
	return types.Context{}
}
