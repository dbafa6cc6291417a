// internal/types/rules.go
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

/*
 * Domain types for rule evaluation.
 *
 * A RuleSet is an ordered list of Conditions folded left to right: the first
 * valid condition seeds the result, "and" conditions intersect and "or"
 * conditions union. There is no precedence grouping.
 *
 * Conditions originate from user-authored configuration (JSON, YAML, database
 * rows). Decoding is tolerant: a condition whose columnKey or operator is not a
 * string decodes without error but reports Valid() == false and is skipped at
 * match time.
 */

// ConditionType is the combinator tag of a condition.
type ConditionType string

const (
	TypeAnd ConditionType = "and"
	TypeOr  ConditionType = "or"
)

// Operators understood by the rule matcher.
const (
	OpEq    = "="
	OpNeq   = "!="
	OpGt    = ">"
	OpLt    = "<"
	OpGte   = ">="
	OpLte   = "<="
	OpIn    = "in"
	OpNotIn = "not_in"
)

// Condition represents a single `key operator value` test.
type Condition struct {
	ColumnKey string        `json:"columnKey"`
	Operator  string        `json:"operator"`
	Value     any           `json:"value"`
	Type      ConditionType `json:"type"`

	malformed bool
}

// RuleSet is an ordered sequence of conditions.
type RuleSet []Condition

// Valid reports whether the condition carries a string column key and operator.
func (c Condition) Valid() bool {
	return !c.malformed
}

// Combinator returns the normalised condition type. Only "and" (any case)
// and the empty zero value combine with AND; every other type combines with OR.
func (c Condition) Combinator() ConditionType {
	if c.Type == "" || strings.EqualFold(string(c.Type), string(TypeAnd)) {
		return TypeAnd
	}
	return TypeOr
}

// ConditionFromMap builds a condition from a decoded JSON/YAML object.
func ConditionFromMap(m map[string]any) Condition {
	var c Condition
	key, keyOK := m["columnKey"].(string)
	op, opOK := m["operator"].(string)
	c.ColumnKey = key
	c.Operator = op
	c.malformed = !keyOK || !opOK
	c.Value = m["value"]
	switch t := m["type"].(type) {
	case nil:
		c.Type = TypeAnd
	case string:
		c.Type = ConditionType(strings.ToLower(t))
		if c.Type == "" {
			// An explicit empty type is not "and".
			c.Type = TypeOr
		}
	default:
		c.Type = ConditionType(strings.ToLower(fmt.Sprint(t)))
	}
	return c
}

// RuleSetFromAny builds a rule set from a decoded JSON/YAML list.
// Entries that are not objects become malformed conditions.
func RuleSetFromAny(v any) RuleSet {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	set := make(RuleSet, 0, len(items))
	for _, item := range items {
		m, ok := toStringMap(item)
		if !ok {
			set = append(set, Condition{malformed: true})
			continue
		}
		set = append(set, ConditionFromMap(m))
	}
	return set
}

// UnmarshalJSON implements json.Unmarshaler with tolerant field decoding.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		*c = Condition{malformed: true}
		return nil
	}
	*c = ConditionFromMap(m)
	return nil
}

// toStringMap accepts the map shapes produced by encoding/json and yaml.v3.
func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}
