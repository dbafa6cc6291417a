// Package weave bundles the extractor, template resolver and rules engine
// behind a single Processor, the entry point used by the CLI and the gRPC
// service.
package weave

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/solatis/weavereplace/internal/extract"
	"github.com/solatis/weavereplace/internal/functions"
	"github.com/solatis/weavereplace/internal/registry"
	"github.com/solatis/weavereplace/internal/rules"
	"github.com/solatis/weavereplace/internal/template"
	"github.com/solatis/weavereplace/internal/types"
)

// Processor runs extraction, template replacement and rule matching with a
// shared registry and logger.
type Processor struct {
	extractor *extract.Extractor
	resolver  *template.Resolver
	engine    *rules.Engine
	registry  *registry.Registry
	logger    *zap.Logger
}

type settings struct {
	registry   *registry.Registry
	delimiters *template.Delimiters
	maxPasses  int
	logger     *zap.Logger
}

// Option configures a Processor.
type Option func(*settings)

// WithRegistry uses reg instead of a private registry loaded with the builtins.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *settings) { s.registry = reg }
}

// WithDelimiters sets the placeholder markers.
func WithDelimiters(d template.Delimiters) Option {
	return func(s *settings) { s.delimiters = &d }
}

// WithMaxPasses bounds function rewriting.
func WithMaxPasses(n int) Option {
	return func(s *settings) { s.maxPasses = n }
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// New creates a Processor. Without WithRegistry it gets its own registry
// populated by functions.RegisterBuiltins.
func New(opts ...Option) (*Processor, error) {
	s := &settings{maxPasses: template.DefaultMaxPasses}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.registry == nil {
		s.registry = registry.New(s.logger)
		functions.RegisterBuiltins(s.registry, s.logger)
	}

	resolverOpts := []template.Option{
		template.WithRegistry(s.registry),
		template.WithMaxPasses(s.maxPasses),
		template.WithLogger(s.logger),
	}
	if s.delimiters != nil {
		resolverOpts = append(resolverOpts, template.WithDelimiters(*s.delimiters))
	}
	resolver, err := template.New(resolverOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create template resolver: %w", err)
	}

	return &Processor{
		extractor: extract.New(s.logger),
		resolver:  resolver,
		engine:    rules.NewEngine(s.logger),
		registry:  s.registry,
		logger:    s.logger,
	}, nil
}

// Registry returns the function table used for templates.
func (p *Processor) Registry() *registry.Registry { return p.registry }

// Resolver returns the template resolver.
func (p *Processor) Resolver() *template.Resolver { return p.resolver }

// Engine returns the rules engine.
func (p *Processor) Engine() *rules.Engine { return p.engine }

// ExtractContext flattens rec according to columns.
func (p *Processor) ExtractContext(rec extract.Record, columns []types.ColumnDescriptor) types.Context {
	return p.extractor.Extract(rec, columns)
}

// Context returns the flattened context for source: contexts and plain maps
// pass through, records are extracted with columns, anything else is empty.
func (p *Processor) Context(source any, columns []types.ColumnDescriptor) types.Context {
	switch s := source.(type) {
	case nil:
		return types.Context{}
	case types.Context:
		return s
	case extract.MapRecord:
		return p.extractor.Extract(s, columns)
	case map[string]any:
		return types.Context(s)
	case extract.Record:
		return p.extractor.Extract(s, columns)
	}
	return types.Context{}
}

// Replace resolves tmpl against ctx. Strings are resolved as templates, lists
// and maps element-wise, other values are returned unchanged.
func (p *Processor) Replace(tmpl any, ctx types.Context) any {
	return p.resolver.Resolve(tmpl, ctx)
}

// ReplaceString resolves tmpl and renders the result as text.
func (p *Processor) ReplaceString(tmpl string, ctx types.Context) string {
	return p.resolver.ResolveString(tmpl, ctx)
}

// Match evaluates rule against source. rule may be a types.RuleSet, a
// *rules.Rule or decoded JSON/YAML conditions; source may be a context or a
// record.
func (p *Processor) Match(rule any, source any, columns []types.ColumnDescriptor) bool {
	return p.engine.Matches(RuleSetOf(rule), p.Context(source, columns))
}

// MatchPaths reports which flattened keys satisfied each condition of rule.
func (p *Processor) MatchPaths(rule any, source any, columns []types.ColumnDescriptor) []rules.PathMatch {
	return p.engine.MatchPaths(RuleSetOf(rule), p.Context(source, columns))
}

// RuleSetOf converts the accepted rule shapes to a types.RuleSet.
func RuleSetOf(rule any) types.RuleSet {
	switch r := rule.(type) {
	case nil:
		return nil
	case types.RuleSet:
		return r
	case []types.Condition:
		return types.RuleSet(r)
	case *rules.Rule:
		if r == nil {
			return nil
		}
		return r.Get()
	}
	return types.RuleSetFromAny(rule)
}
