package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/solatis/weavereplace/internal/extract"
	"github.com/solatis/weavereplace/internal/types"
)

// Schema is a named column descriptor set.
type Schema struct {
	ID      types.SchemaID
	Name    string
	Columns []types.ColumnDescriptor
}

// StoredRuleSet is a named rule set.
type StoredRuleSet struct {
	ID         types.RuleSetID
	Name       string
	Conditions types.RuleSet
}

// Template is a named template body.
type Template struct {
	ID   types.TemplateID
	Name string
	Body string
}

type schemaRow struct {
	ID        string `db:"schema_id"`
	Name      string `db:"name"`
	Columns   string `db:"columns"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type ruleSetRow struct {
	ID         string `db:"rule_set_id"`
	Name       string `db:"name"`
	Conditions string `db:"conditions"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

type templateRow struct {
	ID        string `db:"template_id"`
	Name      string `db:"name"`
	Body      string `db:"body"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type recordRow struct {
	ID        string `db:"record_id"`
	Entity    string `db:"entity"`
	Fields    string `db:"fields"`
	CreatedAt string `db:"created_at"`
}

type relationRow struct {
	ParentID string `db:"parent_id"`
	Relation string `db:"relation"`
	Position int    `db:"position"`
	ChildID  string `db:"child_id"`
}

// Store persists schemas, rule sets, templates and record graphs.
// Named objects are upserted by name; records are immutable once stored.
type Store struct {
	q *Queries
}

// NewStore loads the named queries for db. The schema must already be
// migrated (see MigrateUp).
func NewStore(db *sqlx.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	q, err := LoadQueries(db)
	if err != nil {
		return nil, err
	}
	return &Store{q: q}, nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// PutSchema creates or replaces the schema called name and returns its id.
func (s *Store) PutSchema(ctx context.Context, name string, columns []types.ColumnDescriptor) (types.SchemaID, error) {
	if name == "" {
		return "", fmt.Errorf("schema name cannot be empty")
	}
	payload, err := json.Marshal(columns)
	if err != nil {
		return "", fmt.Errorf("failed to encode schema %q: %w", name, err)
	}

	now := timestamp()
	if _, err := s.q.Exec(ctx, "put-schema", string(types.NewSchemaID()), name, string(payload), now, now); err != nil {
		return "", fmt.Errorf("failed to store schema %q: %w", name, err)
	}

	stored, err := s.GetSchema(ctx, name)
	if err != nil {
		return "", err
	}
	return stored.ID, nil
}

// GetSchema returns the schema called name, or an error wrapping
// types.ErrNotFound.
func (s *Store) GetSchema(ctx context.Context, name string) (*Schema, error) {
	var row schemaRow
	if err := s.q.Get(ctx, "get-schema", &row, name); err != nil {
		return nil, notFound(err, "schema", name)
	}

	var columns []types.ColumnDescriptor
	if err := json.Unmarshal([]byte(row.Columns), &columns); err != nil {
		return nil, fmt.Errorf("failed to decode schema %q: %w", name, err)
	}
	return &Schema{ID: types.SchemaID(row.ID), Name: row.Name, Columns: columns}, nil
}

// PutRuleSet creates or replaces the rule set called name. Conditions that
// are not well formed are rejected with types.ErrMalformedCondition.
func (s *Store) PutRuleSet(ctx context.Context, name string, set types.RuleSet) (types.RuleSetID, error) {
	if name == "" {
		return "", fmt.Errorf("rule set name cannot be empty")
	}
	for i, c := range set {
		if !c.Valid() {
			return "", fmt.Errorf("rule set %q condition %d: %w", name, i, types.ErrMalformedCondition)
		}
	}
	if set == nil {
		set = types.RuleSet{}
	}
	payload, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("failed to encode rule set %q: %w", name, err)
	}

	now := timestamp()
	if _, err := s.q.Exec(ctx, "put-rule-set", string(types.NewRuleSetID()), name, string(payload), now, now); err != nil {
		return "", fmt.Errorf("failed to store rule set %q: %w", name, err)
	}

	stored, err := s.GetRuleSet(ctx, name)
	if err != nil {
		return "", err
	}
	return stored.ID, nil
}

// GetRuleSet returns the rule set called name.
func (s *Store) GetRuleSet(ctx context.Context, name string) (*StoredRuleSet, error) {
	var row ruleSetRow
	if err := s.q.Get(ctx, "get-rule-set", &row, name); err != nil {
		return nil, notFound(err, "rule set", name)
	}
	return decodeRuleSet(row)
}

// ListRuleSets returns every stored rule set ordered by name.
func (s *Store) ListRuleSets(ctx context.Context) ([]StoredRuleSet, error) {
	var rows []ruleSetRow
	if err := s.q.Select(ctx, "list-rule-sets", &rows); err != nil {
		return nil, fmt.Errorf("failed to list rule sets: %w", err)
	}

	out := make([]StoredRuleSet, 0, len(rows))
	for _, row := range rows {
		rs, err := decodeRuleSet(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *rs)
	}
	return out, nil
}

func decodeRuleSet(row ruleSetRow) (*StoredRuleSet, error) {
	var set types.RuleSet
	if err := json.Unmarshal([]byte(row.Conditions), &set); err != nil {
		return nil, fmt.Errorf("failed to decode rule set %q: %w", row.Name, err)
	}
	return &StoredRuleSet{ID: types.RuleSetID(row.ID), Name: row.Name, Conditions: set}, nil
}

// PutTemplate creates or replaces the template called name.
func (s *Store) PutTemplate(ctx context.Context, name, body string) (types.TemplateID, error) {
	if name == "" {
		return "", fmt.Errorf("template name cannot be empty")
	}

	now := timestamp()
	if _, err := s.q.Exec(ctx, "put-template", string(types.NewTemplateID()), name, body, now, now); err != nil {
		return "", fmt.Errorf("failed to store template %q: %w", name, err)
	}

	stored, err := s.GetTemplate(ctx, name)
	if err != nil {
		return "", err
	}
	return stored.ID, nil
}

// GetTemplate returns the template called name.
func (s *Store) GetTemplate(ctx context.Context, name string) (*Template, error) {
	var row templateRow
	if err := s.q.Get(ctx, "get-template", &row, name); err != nil {
		return nil, notFound(err, "template", name)
	}
	return &Template{ID: types.TemplateID(row.ID), Name: row.Name, Body: row.Body}, nil
}

// PutRecord stores the scalar and JSON fields of one record of entity.
// Relations are stored separately with Relate.
func (s *Store) PutRecord(ctx context.Context, entity string, fields map[string]any) (types.RecordID, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s record: %w", entity, err)
	}

	id := types.NewRecordID()
	if _, err := s.q.Exec(ctx, "put-record", string(id), entity, string(payload), timestamp()); err != nil {
		return "", fmt.Errorf("failed to store %s record: %w", entity, err)
	}
	return id, nil
}

// Relate links child to parent under relation at position. To-one relations
// use position 0; to-many relations are loaded in position order.
func (s *Store) Relate(ctx context.Context, parent types.RecordID, relation string, position int, child types.RecordID) error {
	if relation == "" {
		return fmt.Errorf("relation name cannot be empty")
	}
	if position < 0 {
		return fmt.Errorf("relation position must not be negative, got %d", position)
	}
	if _, err := s.q.Exec(ctx, "relate-records", string(parent), relation, position, string(child)); err != nil {
		return fmt.Errorf("failed to relate %s.%s[%d]: %w", parent, relation, position, err)
	}
	return nil
}

// LoadRecord loads record id together with exactly the relations named by
// columns, recursively, and returns it as an extract.MapRecord.
func (s *Store) LoadRecord(ctx context.Context, id types.RecordID, columns []types.ColumnDescriptor) (extract.MapRecord, error) {
	var row recordRow
	if err := s.q.Get(ctx, "get-record", &row, string(id)); err != nil {
		return nil, notFound(err, "record", string(id))
	}

	rec := extract.MapRecord{}
	if err := json.Unmarshal([]byte(row.Fields), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", id, err)
	}

	for _, col := range columns {
		if !col.Complete() || !col.ColumnType.IsRelation() {
			continue
		}

		var links []relationRow
		if err := s.q.Select(ctx, "list-relations", &links, string(id), col.ColumnName); err != nil {
			return nil, fmt.Errorf("failed to load relation %s of %s: %w", col.ColumnName, id, err)
		}

		if col.ColumnType == types.ColumnRelationHasMany {
			related := make([]any, 0, len(links))
			for _, link := range links {
				child, err := s.LoadRecord(ctx, types.RecordID(link.ChildID), col.Inner)
				if err != nil {
					return nil, err
				}
				related = append(related, child)
			}
			rec[col.ColumnName] = related
			continue
		}

		if len(links) == 0 {
			continue
		}
		child, err := s.LoadRecord(ctx, types.RecordID(links[0].ChildID), col.Inner)
		if err != nil {
			return nil, err
		}
		rec[col.ColumnName] = child
	}

	return rec, nil
}

func notFound(err error, kind, name string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", kind, name, types.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %q: %w", kind, name, err)
}
