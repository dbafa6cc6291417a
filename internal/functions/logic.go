package functions

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solatis/weavereplace/internal/registry"
	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
)

func logicFuncs(reg *registry.Registry, logger *zap.Logger) map[string]registry.Func {
	return map[string]registry.Func{
		"default": func(v any, opts types.Options) any {
			if values.IsEmpty(v) {
				if d, ok := opts["default"]; ok {
					return d
				}
				return ""
			}
			return v
		},
		"conditional": func(v any, opts types.Options) any {
			var holds bool
			switch optString(opts, "condition", "not_empty") {
			case "empty":
				holds = values.IsEmpty(v)
			case "equals":
				holds = values.LooseEqual(v, opts["equals"])
			case "greater_than":
				holds = values.ToFloat(v) > optFloat(opts, "than", 0)
			case "less_than":
				holds = values.ToFloat(v) < optFloat(opts, "than", 0)
			default:
				holds = values.Truthy(v)
			}

			if holds {
				if t, ok := opts["true"]; ok {
					return t
				}
				return v
			}
			if f, ok := opts["false"]; ok {
				return f
			}
			return ""
		},
		"is_empty": func(v any, _ types.Options) any {
			return values.IsEmpty(v)
		},
		"is_numeric": func(v any, _ types.Options) any {
			return values.IsNumeric(v)
		},
		"is_array": func(v any, _ types.Options) any {
			switch values.Normalize(v).(type) {
			case []any, map[string]any:
				return true
			}
			return false
		},
		"try": func(v any, opts types.Options) any {
			name, _ := opts["callback"].(string)
			if name == "" || !reg.Has(name) {
				return v
			}
			out, err := reg.Invoke(name, v, opts)
			if err == nil {
				return out
			}
			logger.Debug("try callback failed",
				zap.String("callback", name),
				zap.Error(err),
			)
			if c, ok := opts["catch"]; ok {
				return c
			}
			return "error"
		},
		"pipe": func(v any, opts types.Options) any {
			names, ok := asList(opts["functions"])
			if !ok {
				return v
			}
			result := v
			for _, name := range names {
				result = reg.Call(values.Stringify(name), result, opts)
			}
			return result
		},
		"func_pipe": func(v any, opts types.Options) any {
			names, ok := asList(opts["functions"])
			if !ok {
				return v
			}
			result := v
			for _, n := range names {
				name := values.Stringify(n)
				raw, ok := opts[name]
				if !ok {
					continue
				}
				fnOpts := types.Options{}
				if m, ok := values.Normalize(raw).(map[string]any); ok {
					fnOpts = types.Options(m)
				}
				result = reg.Call(name, result, registry.Inherit(opts, fnOpts))
			}
			return result
		},
		"dump": func(v any, opts types.Options) any {
			logger.Info("template dump",
				zap.String("label", optString(opts, "label", "DEBUG")),
				zap.Any("value", v),
			)
			return v
		},
		"uuid": func(any, types.Options) any {
			return uuid.NewString()
		},
	}
}
