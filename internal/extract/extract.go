// Package extract flattens a record and its relations into a types.Context.
package extract

import (
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"github.com/solatis/weavereplace/internal/flatten"
	"github.com/solatis/weavereplace/internal/types"
)

// Extractor walks a record guided by column descriptors.
type Extractor struct {
	logger *zap.Logger
}

// New creates an Extractor. A nil logger disables logging.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

var defaultExtractor = New(nil)

// Extract flattens rec with the default extractor.
func Extract(rec Record, columns []types.ColumnDescriptor) types.Context {
	return defaultExtractor.Extract(rec, columns)
}

// Extract flattens rec into a fresh context. Keys are the descriptors' column
// keys joined with their relation prefixes; to-many elements add their index.
// Descriptors without type, name or key are skipped. The record is not modified.
func (e *Extractor) Extract(rec Record, columns []types.ColumnDescriptor) types.Context {
	out := types.Context{}
	if rec == nil {
		return out
	}
	e.process(rec, columns, "", out)
	return out
}

func (e *Extractor) process(rec Record, columns []types.ColumnDescriptor, prefix string, out types.Context) {
	for _, col := range columns {
		if !col.Complete() {
			continue
		}

		fullKey := flatten.Join(prefix, col.ColumnKey)

		switch col.ColumnType {
		case types.ColumnEnum:
			v := rec.Field(col.ColumnName)
			if enum, ok := v.(types.Enum); ok {
				v = enum.EnumValue()
			}
			out[fullKey] = v

		case types.ColumnText, types.ColumnDatetime:
			out[fullKey] = rec.Field(col.ColumnName)

		case types.ColumnJSON:
			decoded := e.decodeJSON(rec.Field(col.ColumnName), fullKey)
			out.Merge(flatten.Dot(decoded, fullKey))

		case types.ColumnRelationBelongsTo, types.ColumnRelationHasOne:
			if related := rec.One(col.ColumnName); related != nil {
				e.process(related, col.Inner, fullKey, out)
			}

		case types.ColumnRelationHasMany:
			for i, related := range rec.Many(col.ColumnName) {
				if related == nil {
					continue
				}
				e.process(related, col.Inner, fullKey+"."+strconv.Itoa(i), out)
			}
		}
	}
}

// decodeJSON returns already-decoded values as-is and parses strings.
// A string that fails to parse yields nil, which flattens to nothing.
func (e *Extractor) decodeJSON(raw any, key string) any {
	var data []byte
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		return raw
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		e.logger.Debug("json column did not parse, using empty structure",
			zap.String("key", key),
			zap.Error(types.ErrMalformedJSON),
			zap.NamedError("cause", err),
		)
		return nil
	}
	return decoded
}
