package extract

// Record gives the extractor read access to a source record.
// Implementations decide how relations are loaded; the extractor only reads.
type Record interface {
	// Field returns the current value of a field, or nil when absent.
	Field(name string) any
	// One returns the related record of a to-one relation, or nil when absent.
	One(relation string) Record
	// Many returns the related records of a to-many relation in order.
	// Nil entries are skipped but keep their position.
	Many(relation string) []Record
}

// MapRecord adapts a decoded map graph to Record. Nested maps are read as
// to-one relations and lists of maps as to-many relations.
type MapRecord map[string]any

// Field implements Record.
func (r MapRecord) Field(name string) any {
	return r[name]
}

// One implements Record.
func (r MapRecord) One(relation string) Record {
	return asRecord(r[relation])
}

// Many implements Record.
func (r MapRecord) Many(relation string) []Record {
	switch items := r[relation].(type) {
	case []Record:
		return items
	case []MapRecord:
		out := make([]Record, len(items))
		for i, item := range items {
			if item != nil {
				out[i] = item
			}
		}
		return out
	case []map[string]any:
		out := make([]Record, len(items))
		for i, item := range items {
			out[i] = asRecord(item)
		}
		return out
	case []any:
		out := make([]Record, len(items))
		for i, item := range items {
			out[i] = asRecord(item)
		}
		return out
	}
	return nil
}

func asRecord(v any) Record {
	switch t := v.(type) {
	case nil:
		return nil
	case MapRecord:
		if t == nil {
			return nil
		}
		return t
	case Record:
		return t
	case map[string]any:
		if t == nil {
			return nil
		}
		return MapRecord(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				m[ks] = val
			}
		}
		return MapRecord(m)
	}
	return nil
}
