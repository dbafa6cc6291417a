package types

// ColumnType names how the extractor reads a column.
type ColumnType string

const (
	ColumnEnum              ColumnType = "enum"
	ColumnText              ColumnType = "text"
	ColumnDatetime          ColumnType = "datetime"
	ColumnJSON              ColumnType = "json"
	ColumnRelationBelongsTo ColumnType = "relation_belongsTo"
	ColumnRelationHasOne    ColumnType = "relation_hasOne"
	ColumnRelationHasMany   ColumnType = "relation_hasMany"
)

// IsRelation reports whether t is one of the relation column types.
func (t ColumnType) IsRelation() bool {
	switch t {
	case ColumnRelationBelongsTo, ColumnRelationHasOne, ColumnRelationHasMany:
		return true
	}
	return false
}

// ColumnDescriptor describes one column of a record schema.
// Inner is only meaningful for relation types and describes the related record.
type ColumnDescriptor struct {
	ColumnName string             `json:"columnName" yaml:"columnName"`
	ColumnKey  string             `json:"columnKey" yaml:"columnKey"`
	ColumnType ColumnType         `json:"columnType" yaml:"columnType"`
	Label      string             `json:"label,omitempty" yaml:"label,omitempty"`
	Inner      []ColumnDescriptor `json:"inner,omitempty" yaml:"inner,omitempty"`
}

// Complete reports whether the descriptor carries type, name and key.
// Incomplete descriptors are skipped during extraction.
func (c ColumnDescriptor) Complete() bool {
	return c.ColumnType != "" && c.ColumnName != "" && c.ColumnKey != ""
}

// IsZero reports whether the descriptor is entirely empty.
func (c ColumnDescriptor) IsZero() bool {
	return c.ColumnName == "" && c.ColumnKey == "" && c.ColumnType == "" && c.Label == "" && c.Inner == nil
}
