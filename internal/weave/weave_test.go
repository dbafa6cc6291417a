package weave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/solatis/weavereplace/internal/extract"
	"github.com/solatis/weavereplace/internal/registry"
	"github.com/solatis/weavereplace/internal/rules"
	"github.com/solatis/weavereplace/internal/template"
	"github.com/solatis/weavereplace/internal/types"
)

func orderColumns() []types.ColumnDescriptor {
	return []types.ColumnDescriptor{
		{ColumnName: "number", ColumnKey: "number", ColumnType: types.ColumnText},
		{ColumnName: "status", ColumnKey: "status", ColumnType: types.ColumnEnum},
		{ColumnName: "payload", ColumnKey: "payload", ColumnType: types.ColumnJSON},
		{
			ColumnName: "customer",
			ColumnKey:  "r_customer",
			ColumnType: types.ColumnRelationBelongsTo,
			Inner: []types.ColumnDescriptor{
				{ColumnName: "name", ColumnKey: "name", ColumnType: types.ColumnText},
			},
		},
		{
			ColumnName: "lines",
			ColumnKey:  "r_lines",
			ColumnType: types.ColumnRelationHasMany,
			Inner: []types.ColumnDescriptor{
				{ColumnName: "sku", ColumnKey: "sku", ColumnType: types.ColumnText},
				{ColumnName: "qty", ColumnKey: "qty", ColumnType: types.ColumnText},
			},
		},
	}
}

func orderRecord() extract.MapRecord {
	return extract.MapRecord{
		"number":   "SO-1",
		"status":   "paid",
		"payload":  `{"channel":"web"}`,
		"customer": map[string]any{"name": "ada lovelace"},
		"lines": []any{
			map[string]any{"sku": "A", "qty": 2},
			map[string]any{"sku": "B", "qty": 5},
		},
	}
}

func newProcessor(t *testing.T, opts ...Option) *Processor {
	t.Helper()
	p, err := New(opts...)
	require.NoError(t, err)
	return p
}

func TestProcessor_ExtractContext(t *testing.T) {
	p := newProcessor(t)

	ctx := p.ExtractContext(orderRecord(), orderColumns())

	assert.Equal(t, types.Context{
		"number":          "SO-1",
		"status":          "paid",
		"payload.channel": "web",
		"r_customer.name": "ada lovelace",
		"r_lines.0.sku":   "A",
		"r_lines.0.qty":   2,
		"r_lines.1.sku":   "B",
		"r_lines.1.qty":   5,
	}, ctx)
}

func TestProcessor_Replace(t *testing.T) {
	p := newProcessor(t)
	ctx := p.ExtractContext(orderRecord(), orderColumns())

	tests := []struct {
		name string
		tmpl any
		want any
	}{
		{name: "plain text", tmpl: "no placeholders", want: "no placeholders"},
		{name: "variable keeps type", tmpl: "{{r_lines.1.qty}}", want: 5},
		{name: "builtin in text", tmpl: "Order {{number}} for @@title({{r_customer.name}})@@", want: "Order SO-1 for Ada Lovelace"},
		{name: "wildcard through builtin", tmpl: "@@implode({{r_lines.*.sku}}, {\"separator\": \"/\"})@@", want: "A/B"},
		{name: "sum over wildcard", tmpl: "@@sum({{r_lines.*.qty}})@@", want: 7.0},
		{name: "map template", tmpl: map[string]any{"channel": "{{payload.channel}}"}, want: map[string]any{"channel": "web"}},
		{name: "missing variable", tmpl: "<{{nope}}>", want: "<>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Replace(tt.tmpl, ctx))
		})
	}

	assert.Equal(t, "7", p.ReplaceString("@@sum({{r_lines.*.qty}})@@", ctx))
}

func TestProcessor_Match(t *testing.T) {
	p := newProcessor(t)
	rec := orderRecord()
	columns := orderColumns()

	builder := rules.NewRule().And("status", "=", "paid").And("r_lines.*.qty", ">", 4)

	tests := []struct {
		name   string
		rule   any
		source any
		want   bool
	}{
		{name: "builder against record", rule: builder, source: rec, want: true},
		{name: "rule set against context", rule: builder.Get(), source: p.ExtractContext(rec, columns), want: true},
		{
			name: "decoded conditions",
			rule: []any{
				map[string]any{"columnKey": "status", "operator": "=", "value": "open"},
				map[string]any{"columnKey": "payload.channel", "operator": "in", "value": []any{"web", "pos"}, "type": "or"},
			},
			source: rec,
			want:   true,
		},
		{name: "failing condition", rule: rules.NewRule().And("r_lines.*.sku", "=", "C"), source: rec, want: false},
		{name: "nil rule", rule: nil, source: rec, want: false},
		{name: "unsupported source", rule: builder, source: 42, want: false},
		{name: "plain map source", rule: builder, source: map[string]any{"status": "paid", "r_lines.0.qty": 9}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Match(tt.rule, tt.source, columns))
		})
	}
}

func TestProcessor_MatchPaths(t *testing.T) {
	p := newProcessor(t)

	got := p.MatchPaths(rules.NewRule().And("r_lines.*.qty", ">=", 2), orderRecord(), orderColumns())

	require.Len(t, got, 2)
	assert.Equal(t, "r_lines.0.qty", got[0].Path)
	assert.Equal(t, "r_lines.1.qty", got[1].Path)
}

func TestProcessor_CustomDelimitersAndRegistry(t *testing.T) {
	reg := registry.New(nil)
	reg.Register("shout", func(v any, _ types.Options) any { return "!" + v.(string) + "!" })

	p := newProcessor(t,
		WithRegistry(reg),
		WithDelimiters(template.Delimiters{
			Variable: template.Pair{Start: "${", End: "}"},
			Function: template.Pair{Start: "#", End: "#"},
		}),
	)

	got := p.Replace("#shout(${name})# {{name}}", types.Context{"name": "hi"})

	assert.Equal(t, "!hi! {{name}}", got)
	assert.Same(t, reg, p.Registry())
	assert.False(t, p.Registry().Has("upper"))
}

func TestProcessor_ReplaceSelfReferencingFunctions(t *testing.T) {
	p := newProcessor(t)

	tests := []struct {
		name string
		tmpl string
		want any
	}{
		{"pipe into itself", `@@pipe(x, {"functions":["pipe"]})@@`, "x"},
		{"try calling itself", `@@try(x, {"callback":"try"})@@`, "error"},
		{"embedded in text", `<@@pipe(x, {"functions":["pipe","upper"]})@@>`, "<X>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Replace(tt.tmpl, types.Context{}))
		})
	}
}

func TestNew_InvalidDelimiters(t *testing.T) {
	_, err := New(WithDelimiters(template.Delimiters{
		Variable: template.Pair{Start: "{{", End: "}}"},
		Function: template.Pair{Start: "{{", End: "}}"},
	}))

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidDelimiters)
}

func TestProcessor_SharedLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := newProcessor(t, WithLogger(zap.New(core)))

	p.Replace("@@missing(x)@@", types.Context{})
	p.ExtractContext(extract.MapRecord{"payload": "{broken"}, orderColumns())

	assert.Equal(t, 1, logs.FilterField(zap.Error(types.ErrUnknownFunction)).Len())
	assert.Equal(t, 1, logs.FilterField(zap.Error(types.ErrMalformedJSON)).Len())
}

func TestRuleSetOf(t *testing.T) {
	set := types.RuleSet{{ColumnKey: "a", Operator: "=", Value: 1, Type: types.TypeAnd}}

	assert.Equal(t, set, RuleSetOf(set))
	assert.Equal(t, set, RuleSetOf([]types.Condition(set)))
	assert.Equal(t, set, RuleSetOf(rules.NewRule().And("a", "=", 1)))
	assert.Nil(t, RuleSetOf((*rules.Rule)(nil)))
	assert.Nil(t, RuleSetOf("not a rule"))
}
