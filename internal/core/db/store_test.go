package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/weavereplace/internal/extract"
	"github.com/solatis/weavereplace/internal/types"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db := openMemory(t)
	require.NoError(t, MigrateUp(db))
	s, err := NewStore(db)
	require.NoError(t, err)
	return s
}

func ticketSchema() []types.ColumnDescriptor {
	return []types.ColumnDescriptor{
		{ColumnName: "title", ColumnKey: "title", ColumnType: types.ColumnText},
		{ColumnName: "meta", ColumnKey: "meta", ColumnType: types.ColumnJSON},
		{
			ColumnName: "causer",
			ColumnKey:  "r_causer",
			ColumnType: types.ColumnRelationBelongsTo,
			Label:      "Causer",
			Inner: []types.ColumnDescriptor{
				{ColumnName: "name", ColumnKey: "name", ColumnType: types.ColumnText},
				{
					ColumnName: "managers",
					ColumnKey:  "r_managers",
					ColumnType: types.ColumnRelationHasMany,
					Inner: []types.ColumnDescriptor{
						{ColumnName: "email", ColumnKey: "email", ColumnType: types.ColumnText},
					},
				},
			},
		},
	}
}

func TestNewStore_NilDB(t *testing.T) {
	_, err := NewStore(nil)
	assert.Error(t, err)
}

func TestStore_Schema(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id, err := s.PutSchema(ctx, "ticket", ticketSchema())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := s.GetSchema(ctx, "ticket")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, ticketSchema(), got.Columns)

	// Upsert keeps the id and replaces the columns
	again, err := s.PutSchema(ctx, "ticket", ticketSchema()[:1])
	require.NoError(t, err)
	assert.Equal(t, id, again)

	got, err = s.GetSchema(ctx, "ticket")
	require.NoError(t, err)
	assert.Len(t, got.Columns, 1)

	_, err = s.GetSchema(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.PutSchema(ctx, "", nil)
	assert.Error(t, err)
}

func TestStore_RuleSets(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	active := types.RuleSet{
		{ColumnKey: "status", Operator: "=", Value: "active", Type: types.TypeAnd},
		{ColumnKey: "role", Operator: "in", Value: []any{"admin", "owner"}, Type: types.TypeOr},
	}
	_, err := s.PutRuleSet(ctx, "active", active)
	require.NoError(t, err)
	_, err = s.PutRuleSet(ctx, "empty", nil)
	require.NoError(t, err)

	got, err := s.GetRuleSet(ctx, "active")
	require.NoError(t, err)
	assert.Equal(t, active, got.Conditions)

	all, err := s.ListRuleSets(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "active", all[0].Name)
	assert.Equal(t, "empty", all[1].Name)
	assert.Empty(t, all[1].Conditions)

	malformed := types.RuleSetFromAny([]any{"not a condition"})
	_, err = s.PutRuleSet(ctx, "bad", malformed)
	assert.ErrorIs(t, err, types.ErrMalformedCondition)

	_, err = s.GetRuleSet(ctx, "bad")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestStore_Templates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id, err := s.PutTemplate(ctx, "greeting", "Hello {{name}}")
	require.NoError(t, err)

	got, err := s.GetTemplate(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Hello {{name}}", got.Body)

	_, err = s.GetTemplate(ctx, "farewell")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestStore_LoadRecord(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	ticket, err := s.PutRecord(ctx, "ticket", map[string]any{"title": "Broken printer", "meta": `{"floor":3}`})
	require.NoError(t, err)
	causer, err := s.PutRecord(ctx, "user", map[string]any{"name": "Ann"})
	require.NoError(t, err)
	m1, err := s.PutRecord(ctx, "user", map[string]any{"email": "m1@x"})
	require.NoError(t, err)
	m2, err := s.PutRecord(ctx, "user", map[string]any{"email": "m2@x"})
	require.NoError(t, err)
	unrelated, err := s.PutRecord(ctx, "user", map[string]any{"email": "other@x"})
	require.NoError(t, err)

	require.NoError(t, s.Relate(ctx, ticket, "causer", 0, causer))
	// Inserted out of order; loaded by position
	require.NoError(t, s.Relate(ctx, causer, "managers", 1, m2))
	require.NoError(t, s.Relate(ctx, causer, "managers", 0, m1))
	// Not referenced by the schema, so never loaded
	require.NoError(t, s.Relate(ctx, ticket, "watchers", 0, unrelated))

	rec, err := s.LoadRecord(ctx, ticket, ticketSchema())
	require.NoError(t, err)
	assert.NotContains(t, rec, "watchers")

	ctxMap := extract.Extract(rec, ticketSchema())
	assert.Equal(t, types.Context{
		"title":                       "Broken printer",
		"meta.floor":                  3.0,
		"r_causer.name":               "Ann",
		"r_causer.r_managers.0.email": "m1@x",
		"r_causer.r_managers.1.email": "m2@x",
	}, ctxMap)

	_, err = s.LoadRecord(ctx, types.NewRecordID(), ticketSchema())
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.Error(t, s.Relate(ctx, ticket, "", 0, causer))
	assert.Error(t, s.Relate(ctx, ticket, "causer", -1, causer))
}
