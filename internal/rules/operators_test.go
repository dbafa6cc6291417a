package rules

import (
	"testing"

	"github.com/solatis/weavereplace/internal/types"
)

type status string

func (s status) EnumValue() any { return string(s) }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		candidate any
		op        string
		value     any
		want      bool
	}{
		{"eq same string", "a", "=", "a", true},
		{"eq numeric string and number", "10", "=", 10, true},
		{"eq int and float", 3, "=", 3.0, true},
		{"eq different strings", "a", "=", "b", false},
		{"eq nil and empty string", nil, "=", "", true},
		{"eq nil and zero", nil, "=", 0, true},
		{"eq nil and nil", nil, "=", nil, true},
		{"neq different", "a", "!=", "b", true},
		{"neq loose equal", "1", "!=", 1, false},
		{"neq incomparable", map[string]any{"a": 1.0}, "!=", "a", true},
		{"gt numbers", 19, ">", 18, true},
		{"gt equal numbers", 18, ">", 18, false},
		{"gt numeric strings", "19", ">", "9", true},
		{"gt lexical strings", "b", ">", "a", true},
		{"gt nil", nil, ">", 18, false},
		{"gt incomparable", []any{1.0}, ">", 0, false},
		{"lt numbers", 1.5, "<", 2, true},
		{"gte equal", 18, ">=", "18", true},
		{"gte less", 17, ">=", 18, false},
		{"lte equal", "5", "<=", 5, true},
		{"lte greater", 6, "<=", 5, false},
		{"in list", "b", "in", []any{"a", "b"}, true},
		{"in loose", "2", "in", []any{1, 2}, true},
		{"in missing", "c", "in", []any{"a", "b"}, false},
		{"in scalar value", "a", "in", "a", true},
		{"in typed slice", "b", "in", []string{"a", "b"}, true},
		{"not_in missing", "c", "not_in", []any{"a", "b"}, true},
		{"not_in present", "a", "not_in", []any{"a"}, false},
		{"enum candidate", status("active"), "=", "active", true},
		{"enum value", "active", "=", status("active"), true},
		{"enum in list", status("active"), "in", []any{"active"}, true},
		{"unknown operator", "a", "like", "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.candidate, tt.op, tt.value); got != tt.want {
				t.Errorf("Evaluate(%v, %q, %v) = %v, want %v", tt.candidate, tt.op, tt.value, got, tt.want)
			}
		})
	}
}

func TestIsOperator(t *testing.T) {
	for _, op := range []string{types.OpEq, types.OpNeq, types.OpGt, types.OpLt, types.OpGte, types.OpLte, types.OpIn, types.OpNotIn} {
		if !IsOperator(op) {
			t.Errorf("IsOperator(%q) = false, want true", op)
		}
	}
	if IsOperator("contains") {
		t.Errorf("IsOperator(%q) = true, want false", "contains")
	}
}
