package extract

import (
	"strings"

	"github.com/solatis/weavereplace/internal/flatten"
	"github.com/solatis/weavereplace/internal/types"
)

// LabelSeparator joins parent and child labels in FilterableOptions.
const LabelSeparator = " › "

// Option pairs a human label with a selectable path.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// FilterableOptions lists the leaf columns reachable from columns, for
// presenting selectable paths. Labels are joined with LabelSeparator, keys with
// ".", and a ".*" segment is appended below every relation_hasMany node.
// Output order follows descriptor order.
func FilterableOptions(columns []types.ColumnDescriptor) []Option {
	return FilterableOptionsSep(columns, LabelSeparator)
}

// FilterableOptionsSep is FilterableOptions with a custom label separator.
func FilterableOptionsSep(columns []types.ColumnDescriptor, sep string) []Option {
	var out []Option
	filterable(columns, "", "", sep, &out)
	return out
}

func filterable(columns []types.ColumnDescriptor, prefixLabel, prefixKey, sep string, out *[]Option) {
	for _, col := range columns {
		if col.IsZero() {
			continue
		}

		name := col.Label
		if name == "" {
			name = col.ColumnKey
		}
		label := strings.TrimSpace(prefixLabel + name)
		key := strings.TrimSpace(prefixKey + col.ColumnKey)

		if col.Inner != nil {
			if col.ColumnType == types.ColumnRelationHasMany {
				key += ".*"
			}
			filterable(col.Inner, label+sep, key+".", sep, out)
			continue
		}

		*out = append(*out, Option{
			Label: label,
			Value: strings.TrimRight(key, "."),
		})
	}
}

// SelectOptions lists every keyed descriptor, parents before their inner
// columns. The label falls back to the full key.
func SelectOptions(columns []types.ColumnDescriptor) []Option {
	var out []Option
	selectOptions(columns, "", &out)
	return out
}

func selectOptions(columns []types.ColumnDescriptor, prefix string, out *[]Option) {
	for _, col := range columns {
		if col.ColumnKey == "" {
			continue
		}

		fullKey := flatten.Join(prefix, col.ColumnKey)
		label := col.Label
		if label == "" {
			label = fullKey
		}
		*out = append(*out, Option{Value: fullKey, Label: label})

		if col.Inner != nil {
			selectOptions(col.Inner, fullKey, out)
		}
	}
}
