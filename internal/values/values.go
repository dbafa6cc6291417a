// Package values implements the loose value model shared by the template
// resolver, the rule matcher and the built-in function catalogue.
package values

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/solatis/weavereplace/internal/types"
)

// Normalize maps accepted input kinds onto the encoding/json value model.
// Integer and float kinds become float64, json.Number becomes float64 (or its
// string form when unparseable), time.Time becomes an RFC 3339 string, enums are
// unwrapped, and typed slices and string-keyed maps become []any / map[string]any.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, bool, float64, string, []any, map[string]any:
		return v
	case types.Enum:
		return Normalize(t.EnumValue())
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.Format(time.RFC3339)
	case []byte:
		return string(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	}
	return v
}

// IsList reports whether v is a list after normalisation.
func IsList(v any) bool {
	_, ok := Normalize(v).([]any)
	return ok
}

// Stringify renders a value for substitution into template text.
// nil renders as "", lists and maps as JSON.
func Stringify(v any) string {
	switch t := Normalize(v).(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return FormatNumber(t)
	case []any, map[string]any:
		return EncodeJSON(t)
	default:
		return EncodeJSON(t)
	}
}

// FormatNumber renders a float without exponent or trailing zeros.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// EncodeJSON encodes v without HTML escaping. Encoding failures render as "".
func EncodeJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// DecodeStructure decodes s when it is a JSON array or object.
func DecodeStructure(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, false
	}
	if trimmed[0] != '[' && trimmed[0] != '{' {
		return nil, false
	}
	var out any
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, false
	}
	return out, true
}

// Truthy applies loose truthiness: nil, false, 0, "", "0" and empty
// lists/maps are false.
func Truthy(v any) bool {
	switch t := Normalize(v).(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0"
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

// IsEmpty is the negation of Truthy.
func IsEmpty(v any) bool {
	return !Truthy(v)
}
