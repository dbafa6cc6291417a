// Package registry holds the named value transforms that function placeholders
// dispatch to.
package registry

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/solatis/weavereplace/internal/types"
)

// Func transforms a resolved argument using the placeholder's options.
type Func func(value any, opts types.Options) any

// Limits on nested dispatch. A function that calls back into the registry
// (pipe, try, func_pipe) runs one level deeper; every dispatch below one
// top-level call draws from a shared budget. Past either limit the value is
// passed through unchanged.
const (
	MaxCallDepth = 32
	MaxCalls     = 10000
)

// frameKey carries the dispatch frame in the options handed to a function.
const frameKey = "\x00frame"

type frame struct {
	depth int
	calls *int
}

// Registry maps function names to transforms. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	funcs  map[string]Func
	logger *zap.Logger
}

// Default is the process-wide registry.
var Default = New(nil)

// New creates an empty registry. A nil logger disables logging.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		funcs:  make(map[string]Func),
		logger: logger,
	}
}

// SetLogger replaces the registry's logger.
func (r *Registry) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register adds or replaces a function.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
	r.logger.Debug("registered function", zap.String("name", name))
}

// RegisterAll adds or replaces several functions at once.
func (r *Registry) RegisterAll(funcs map[string]Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, fn := range funcs {
		r.funcs[name] = fn
		r.logger.Debug("registered function", zap.String("name", name))
	}
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Call invokes name with value and opts. Unknown names, panics and exhausted
// dispatch limits return value unchanged.
func (r *Registry) Call(name string, value any, opts types.Options) any {
	out, err := r.Invoke(name, value, opts)
	if err != nil {
		return value
	}
	return out
}

// Invoke is Call that reports a recovered panic or an exhausted dispatch
// limit as an error. Unknown names are not an error.
func (r *Registry) Invoke(name string, value any, opts types.Options) (out any, err error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	logger := r.logger
	r.mu.RUnlock()

	if !ok {
		logger.Debug("function not registered, passing value through",
			zap.String("name", name),
			zap.Error(types.ErrUnknownFunction),
		)
		return value, nil
	}

	parent, _ := opts[frameKey].(frame)
	if parent.calls == nil {
		parent.calls = new(int)
	}
	if parent.depth >= MaxCallDepth || *parent.calls >= MaxCalls {
		logger.Debug("function dispatch limit reached, passing value through",
			zap.String("name", name),
			zap.Int("depth", parent.depth),
			zap.Int("calls", *parent.calls),
			zap.Error(types.ErrCallLimit),
		)
		return value, types.ErrCallLimit
	}
	*parent.calls++

	callOpts := make(types.Options, len(opts)+1)
	maps.Copy(callOpts, opts)
	callOpts[frameKey] = frame{depth: parent.depth + 1, calls: parent.calls}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("function panicked, passing value through",
				zap.String("name", name),
				zap.Any("panic", rec),
			)
			out, err = value, fmt.Errorf("%w: %s: %v", types.ErrFunctionPanic, name, rec)
		}
	}()
	return fn(value, callOpts), nil
}

// Inherit copies the dispatch frame of parent into child, for functions that
// build fresh options before calling back into the registry.
func Inherit(parent, child types.Options) types.Options {
	f, ok := parent[frameKey]
	if !ok {
		return child
	}
	if child == nil {
		child = types.Options{}
	}
	child[frameKey] = f
	return child
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.funcs))
}

// All returns a copy of the registered functions.
func (r *Registry) All() map[string]Func {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.funcs)
}
