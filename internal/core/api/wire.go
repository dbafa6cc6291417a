package api

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/weavereplace/internal/rules"
	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
)

// toWire normalises v recursively into the shapes structpb accepts.
func toWire(v any) any {
	switch t := values.Normalize(v).(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toWire(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = toWire(item)
		}
		return out
	case nil, bool, float64, string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(toWire(fields).(map[string]any))
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return out, nil
}

func conditionToWire(c types.Condition) map[string]any {
	return map[string]any{
		"columnKey": c.ColumnKey,
		"operator":  c.Operator,
		"value":     c.Value,
		"type":      string(c.Combinator()),
	}
}

func pathMatchesToWire(matches []rules.PathMatch) []any {
	out := make([]any, len(matches))
	for i, m := range matches {
		out[i] = map[string]any{
			"path":  m.Path,
			"value": m.Value,
			"rule":  conditionToWire(m.Rule),
		}
	}
	return out
}
