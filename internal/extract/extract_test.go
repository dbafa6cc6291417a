package extract

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/solatis/weavereplace/internal/types"
)

type priority string

func (p priority) EnumValue() any { return string(p) }

func ticketColumns() []types.ColumnDescriptor {
	return []types.ColumnDescriptor{
		{ColumnName: "title", ColumnKey: "title", ColumnType: types.ColumnText},
		{ColumnName: "priority", ColumnKey: "priority", ColumnType: types.ColumnEnum},
		{ColumnName: "created_at", ColumnKey: "created", ColumnType: types.ColumnDatetime},
		{ColumnName: "meta", ColumnKey: "meta", ColumnType: types.ColumnJSON},
		{ColumnName: "missing_type", ColumnKey: "skip"},
		{
			ColumnName: "causer",
			ColumnKey:  "r_causer",
			ColumnType: types.ColumnRelationBelongsTo,
			Inner: []types.ColumnDescriptor{
				{ColumnName: "name", ColumnKey: "name", ColumnType: types.ColumnText},
				{
					ColumnName: "managers",
					ColumnKey:  "r_managers",
					ColumnType: types.ColumnRelationHasMany,
					Inner: []types.ColumnDescriptor{
						{ColumnName: "email", ColumnKey: "email", ColumnType: types.ColumnText},
						{ColumnName: "additional_emails", ColumnKey: "additional_emails", ColumnType: types.ColumnJSON},
					},
				},
			},
		},
	}
}

func TestExtract(t *testing.T) {
	rec := MapRecord{
		"title":      "Broken printer",
		"priority":   priority("high"),
		"created_at": "2024-05-01",
		"meta":       `{"a":{"b":1},"c":[1,2]}`,
		"causer": map[string]any{
			"name": "Ann",
			"managers": []any{
				map[string]any{"email": "m1@x", "additional_emails": `{"list":["a@x","b@x"]}`},
				map[string]any{"email": "m2@x"},
			},
		},
	}

	got := Extract(rec, ticketColumns())

	assert.Equal(t, types.Context{
		"title":                       "Broken printer",
		"priority":                    "high",
		"created":                     "2024-05-01",
		"meta.a.b":                    1.0,
		"meta.c":                      []any{1.0, 2.0},
		"r_causer.name":               "Ann",
		"r_causer.r_managers.0.email": "m1@x",
		"r_causer.r_managers.0.additional_emails.list": []any{"a@x", "b@x"},
		"r_causer.r_managers.1.email":                  "m2@x",
	}, got)
}

func TestExtractMissingRelations(t *testing.T) {
	rec := MapRecord{"title": "t"}

	got := Extract(rec, ticketColumns())

	assert.Equal(t, types.Context{
		"title":    "t",
		"priority": nil,
		"created":  nil,
	}, got)
}

func TestExtractDoesNotMutateRecord(t *testing.T) {
	meta := map[string]any{"a": map[string]any{"b": 1}}
	rec := MapRecord{"meta": meta}

	Extract(rec, ticketColumns())

	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1}}, meta)
}

func TestExtractMalformedJSON(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := New(zap.New(core))

	got := e.Extract(MapRecord{"meta": "{not json"}, []types.ColumnDescriptor{
		{ColumnName: "meta", ColumnKey: "meta", ColumnType: types.ColumnJSON},
	})

	assert.Empty(t, got)
	assert.Equal(t, 1, logs.Len())
}

func TestExtractNilRecord(t *testing.T) {
	assert.Equal(t, types.Context{}, Extract(nil, ticketColumns()))
}

func TestMapRecordManyKeepsPositions(t *testing.T) {
	rec := MapRecord{"items": []any{map[string]any{"v": 1}, "not a record", map[string]any{"v": 3}}}

	got := Extract(rec, []types.ColumnDescriptor{{
		ColumnName: "items",
		ColumnKey:  "items",
		ColumnType: types.ColumnRelationHasMany,
		Inner: []types.ColumnDescriptor{
			{ColumnName: "v", ColumnKey: "v", ColumnType: types.ColumnText},
		},
	}})

	assert.Equal(t, types.Context{"items.0.v": 1, "items.2.v": 3}, got)
}

// Property-based test: a to-many relation of length N yields N groups
func TestExtract_PropertyHasManyGroups(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	columns := []types.ColumnDescriptor{{
		ColumnName: "parent",
		ColumnKey:  "parent",
		ColumnType: types.ColumnRelationHasOne,
		Inner: []types.ColumnDescriptor{{
			ColumnName: "children",
			ColumnKey:  "rel",
			ColumnType: types.ColumnRelationHasMany,
			Inner: []types.ColumnDescriptor{
				{ColumnName: "a", ColumnKey: "a", ColumnType: types.ColumnText},
				{ColumnName: "b", ColumnKey: "b", ColumnType: types.ColumnText},
			},
		}},
	}}

	properties.Property("one key group per element", prop.ForAll(
		func(n int) bool {
			children := make([]any, n)
			for i := range children {
				children[i] = map[string]any{"a": i, "b": "x"}
			}
			ctx := Extract(MapRecord{"parent": map[string]any{"children": children}}, columns)

			if len(ctx) != 2*n {
				return false
			}
			for i := 0; i < n; i++ {
				if ctx[fmt.Sprintf("parent.rel.%d.a", i)] != i {
					return false
				}
				if _, ok := ctx[fmt.Sprintf("parent.rel.%d.b", i)]; !ok {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
