// Package functions provides the built-in transform catalogue registered into
// a registry.Registry at start-up.
//
// Every builtin is tolerant: a value of the wrong shape degrades to a sensible
// default instead of panicking. Options arrive as decoded JSON, so numeric
// options are float64.
package functions

import (
	"go.uber.org/zap"

	"github.com/solatis/weavereplace/internal/registry"
	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
)

// RegisterBuiltins registers the full catalogue into reg. Builtins that
// dispatch to other functions (try, pipe, func_pipe) resolve them through reg.
func RegisterBuiltins(reg *registry.Registry, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg.RegisterAll(Builtins(reg, logger))
}

// Builtins returns the catalogue without registering it.
func Builtins(reg *registry.Registry, logger *zap.Logger) map[string]registry.Func {
	all := make(map[string]registry.Func)
	for _, group := range []map[string]registry.Func{
		stringFuncs(),
		listFuncs(),
		numberFuncs(),
		dateFuncs(),
		logicFuncs(reg, logger),
	} {
		for name, fn := range group {
			all[name] = fn
		}
	}
	return all
}

func optString(opts types.Options, key, def string) string {
	v, ok := opts[key]
	if !ok || v == nil {
		return def
	}
	return values.Stringify(v)
}

func optInt(opts types.Options, key string, def int) int {
	v, ok := opts[key]
	if !ok {
		return def
	}
	f, ok := values.ToNumber(v)
	if !ok {
		return def
	}
	return int(f)
}

func optFloat(opts types.Options, key string, def float64) float64 {
	v, ok := opts[key]
	if !ok {
		return def
	}
	f, ok := values.ToNumber(v)
	if !ok {
		return def
	}
	return f
}

// optFirst returns the first present option among keys.
func optFirst(opts types.Options, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := opts[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func asList(v any) ([]any, bool) {
	list, ok := values.Normalize(v).([]any)
	return list, ok
}
