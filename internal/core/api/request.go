package api

import (
	"context"
	"encoding/json"

	"github.com/solatis/weavereplace/internal/extract"
	"github.com/solatis/weavereplace/internal/types"
)

// Request fields shared by the Weave methods.
const (
	fieldTemplate     = "template"
	fieldTemplateName = "template_name"
	fieldContext      = "context"
	fieldContexts     = "contexts"
	fieldRecord       = "record"
	fieldRecordID     = "record_id"
	fieldSchema       = "schema"
	fieldColumns      = "columns"
	fieldRules        = "rules"
	fieldRuleSet      = "rule_set"
)

// contextFor builds the flattened context a request refers to: an inline
// "context", an inline "record" with "columns" or "schema", or a stored
// "record_id" with "columns" or "schema". A request naming none of them gets an empty
// context.
func (s *WeaveService) contextFor(ctx context.Context, req map[string]any) (types.Context, error) {
	if raw, ok := req[fieldContext]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, invalidf("%s must be an object", fieldContext)
		}
		return types.Context(m), nil
	}

	if _, ok := req[fieldRecord]; ok {
		return s.extractInline(ctx, req)
	}

	if _, ok := req[fieldRecordID]; ok {
		return s.extractStored(ctx, req)
	}

	return types.Context{}, nil
}

func (s *WeaveService) extractInline(ctx context.Context, req map[string]any) (types.Context, error) {
	rec, ok := req[fieldRecord].(map[string]any)
	if !ok {
		return nil, invalidf("%s must be an object", fieldRecord)
	}
	columns, err := s.columnsFor(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.processor.ExtractContext(extract.MapRecord(rec), columns), nil
}

func (s *WeaveService) extractStored(ctx context.Context, req map[string]any) (types.Context, error) {
	raw, _ := req[fieldRecordID].(string)
	id, err := types.ParseRecordID(raw)
	if err != nil {
		return nil, invalidf("%s %q is not a valid id", fieldRecordID, raw)
	}
	columns, err := s.columnsFor(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, errNoStore
	}

	rec, err := s.store.LoadRecord(ctx, id, columns)
	if err != nil {
		return nil, err
	}
	return s.processor.ExtractContext(rec, columns), nil
}

// columnsFor returns inline "columns" or the stored "schema".
func (s *WeaveService) columnsFor(ctx context.Context, req map[string]any) ([]types.ColumnDescriptor, error) {
	if raw, ok := req[fieldColumns]; ok {
		columns, err := decodeColumns(raw)
		if err != nil {
			return nil, invalidf("%s: %v", fieldColumns, err)
		}
		return columns, nil
	}

	name, ok := req[fieldSchema].(string)
	if !ok || name == "" {
		return nil, invalidf("one of %s or %s is required", fieldColumns, fieldSchema)
	}
	if s.store == nil {
		return nil, errNoStore
	}
	schema, err := s.store.GetSchema(ctx, name)
	if err != nil {
		return nil, err
	}
	return schema.Columns, nil
}

// templateFor returns the inline "template" (any JSON value) or the body of
// the stored "template_name".
func (s *WeaveService) templateFor(ctx context.Context, req map[string]any) (any, error) {
	if tmpl, ok := req[fieldTemplate]; ok {
		return tmpl, nil
	}

	name, ok := req[fieldTemplateName].(string)
	if !ok || name == "" {
		return nil, invalidf("one of %s or %s is required", fieldTemplate, fieldTemplateName)
	}
	if s.store == nil {
		return nil, errNoStore
	}
	stored, err := s.store.GetTemplate(ctx, name)
	if err != nil {
		return nil, err
	}
	return stored.Body, nil
}

// rulesFor returns the inline "rules" list or the stored "rule_set".
func (s *WeaveService) rulesFor(ctx context.Context, req map[string]any) (types.RuleSet, error) {
	if raw, ok := req[fieldRules]; ok {
		if _, isList := raw.([]any); !isList {
			return nil, invalidf("%s must be a list", fieldRules)
		}
		return types.RuleSetFromAny(raw), nil
	}

	name, ok := req[fieldRuleSet].(string)
	if !ok || name == "" {
		return nil, invalidf("one of %s or %s is required", fieldRules, fieldRuleSet)
	}
	if s.store == nil {
		return nil, errNoStore
	}
	stored, err := s.store.GetRuleSet(ctx, name)
	if err != nil {
		return nil, err
	}
	return stored.Conditions, nil
}

// decodeColumns converts decoded JSON into column descriptors.
func decodeColumns(raw any) ([]types.ColumnDescriptor, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var columns []types.ColumnDescriptor
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, err
	}
	return columns, nil
}
