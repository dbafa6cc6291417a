// internal/template/resolver.go
package template

import (
	"strings"

	"go.uber.org/zap"

	"github.com/solatis/weavereplace/internal/flatten"
	"github.com/solatis/weavereplace/internal/registry"
	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
	"github.com/solatis/weavereplace/internal/wildcard"
)

/*
 * Template resolution over a flattened context.
 *
 * A string template resolves in five steps:
 *   1. A template that is exactly one function placeholder returns the
 *      function's native result.
 *   2. Function placeholders are evaluated innermost-first and replaced by
 *      their string form. When results introduce new placeholders the text is
 *      parsed again, for at most MaxPasses passes or until nothing changes.
 *   3. A template that is now exactly one variable placeholder returns the
 *      variable's native value.
 *   4. Remaining variables are replaced by their string form.
 *   5. If the template held any placeholder and the final text is a JSON array
 *      or object, the decoded structure is returned.
 *
 * Function arguments resolve by the same steps, so an argument that is a
 * single variable keeps its native type. Lists and maps are resolved element
 * by element; other non-string values are returned unchanged.
 *
 * Missing data never fails resolution: absent variables are nil and render as
 * "", unknown functions return their argument.
 */

// DefaultMaxPasses bounds function rewriting passes.
const DefaultMaxPasses = 10

// Resolver resolves templates against a flattened context.
type Resolver struct {
	registry   *registry.Registry
	delimiters Delimiters
	maxPasses  int
	logger     *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry sets the function registry. Defaults to registry.Default.
func WithRegistry(reg *registry.Registry) Option {
	return func(r *Resolver) { r.registry = reg }
}

// WithDelimiters sets the placeholder markers.
func WithDelimiters(d Delimiters) Option {
	return func(r *Resolver) { r.delimiters = d }
}

// WithMaxPasses sets the function rewriting pass limit.
func WithMaxPasses(n int) Option {
	return func(r *Resolver) { r.maxPasses = n }
}

// WithLogger sets the logger used for recovered conditions.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// New creates a Resolver. It fails only on invalid delimiters.
func New(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		registry:   registry.Default,
		delimiters: DefaultDelimiters(),
		maxPasses:  DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = registry.Default
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.maxPasses <= 0 {
		r.maxPasses = DefaultMaxPasses
	}
	if err := r.delimiters.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Delimiters returns the resolver's placeholder markers.
func (r *Resolver) Delimiters() Delimiters {
	return r.delimiters
}

// Resolve resolves tmpl against ctx.
func (r *Resolver) Resolve(tmpl any, ctx types.Context) any {
	if s, ok := tmpl.(string); ok {
		return r.resolveNodes(Parse(s, r.delimiters), ctx)
	}

	switch t := values.Normalize(tmpl).(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = r.Resolve(item, ctx)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = r.Resolve(item, ctx)
		}
		return out
	}
	return tmpl
}

// ResolveString resolves a string template and renders the result as text.
func (r *Resolver) ResolveString(tmpl string, ctx types.Context) string {
	return values.Stringify(r.Resolve(tmpl, ctx))
}

func (r *Resolver) resolveNodes(nodes []Node, ctx types.Context) any {
	if !hasPlaceholder(nodes) {
		return Source(nodes)
	}

	if len(nodes) == 1 {
		if fn, ok := nodes[0].(Function); ok {
			return r.call(fn, ctx)
		}
	}

	for pass := 0; hasFunction(nodes); pass++ {
		if pass == r.maxPasses {
			r.logger.Debug("function rewriting stopped at pass limit",
				zap.Int("max_passes", r.maxPasses),
				zap.String("template", Source(nodes)),
				zap.Error(types.ErrTemplateNonTermination),
			)
			break
		}

		before := Source(nodes)
		after := r.renderFunctions(nodes, ctx)
		if after == before {
			break
		}
		nodes = Parse(after, r.delimiters)
	}

	if len(nodes) == 1 {
		if v, ok := nodes[0].(Variable); ok {
			return Lookup(v.Path, ctx)
		}
	}

	var b strings.Builder
	for _, n := range nodes {
		if v, ok := n.(Variable); ok {
			b.WriteString(values.Stringify(Lookup(v.Path, ctx)))
			continue
		}
		b.WriteString(n.Source())
	}
	out := b.String()

	if decoded, ok := values.DecodeStructure(out); ok {
		return decoded
	}
	return out
}

// renderFunctions evaluates every function node and returns the text with
// each function replaced by its string form. Variables keep their source.
func (r *Resolver) renderFunctions(nodes []Node, ctx types.Context) string {
	var b strings.Builder
	for _, n := range nodes {
		if fn, ok := n.(Function); ok {
			b.WriteString(values.Stringify(r.call(fn, ctx)))
			continue
		}
		b.WriteString(n.Source())
	}
	return b.String()
}

func (r *Resolver) call(fn Function, ctx types.Context) any {
	var arg any
	switch {
	case len(fn.Arg) == 0:
		arg = ""
	case len(fn.Arg) == 1:
		if v, ok := fn.Arg[0].(Variable); ok {
			arg = Lookup(v.Path, ctx)
			break
		}
		arg = r.resolveNodes(fn.Arg, ctx)
	default:
		arg = r.resolveNodes(fn.Arg, ctx)
	}

	opts := types.Options{}
	for k, v := range fn.Options {
		opts[k] = v
	}
	return r.registry.Call(fn.Name, arg, opts)
}

// Lookup resolves a variable path: exact key first, then wildcard group
// resolution when the path holds "*", then nested lookup in the undotted
// context. Missing paths resolve to nil.
func Lookup(path string, ctx types.Context) any {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if v, ok := ctx[path]; ok {
		return v
	}
	if wildcard.HasWildcard(path) {
		return wildcard.Group(path, ctx)
	}
	if v, ok := flatten.Get(flatten.Undot(ctx), path); ok {
		return v
	}
	return nil
}

var defaultResolver, _ = New()

// Resolve resolves tmpl with the default delimiters and registry.Default.
func Resolve(tmpl any, ctx types.Context) any {
	return defaultResolver.Resolve(tmpl, ctx)
}
