package functions

import (
	"sort"
	"strings"

	"github.com/solatis/weavereplace/internal/registry"
	"github.com/solatis/weavereplace/internal/rules"
	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
)

func listFuncs() map[string]registry.Func {
	return map[string]registry.Func{
		"count": func(v any, _ types.Options) any {
			switch t := values.Normalize(v).(type) {
			case []any:
				return len(t)
			case map[string]any:
				return len(t)
			}
			return 1
		},
		"first": func(v any, _ types.Options) any {
			list, ok := asList(v)
			if !ok {
				return v
			}
			if len(list) == 0 {
				return nil
			}
			return list[0]
		},
		"last": func(v any, _ types.Options) any {
			list, ok := asList(v)
			if !ok {
				return v
			}
			if len(list) == 0 {
				return nil
			}
			return list[len(list)-1]
		},
		"unique": func(v any, _ types.Options) any {
			list, ok := asList(v)
			if !ok {
				return []any{v}
			}
			seen := make(map[string]bool, len(list))
			out := []any{}
			for _, item := range list {
				key := values.Stringify(item)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, item)
			}
			return out
		},
		"sort": func(v any, opts types.Options) any {
			list, ok := asList(v)
			if !ok {
				return []any{v}
			}
			sorted := append([]any{}, list...)
			desc := optString(opts, "direction", "asc") == "desc"
			sort.SliceStable(sorted, func(i, j int) bool {
				if desc {
					return values.CompareLoose(sorted[i], sorted[j]) == values.Greater
				}
				return values.CompareLoose(sorted[i], sorted[j]) == values.Less
			})
			return sorted
		},
		"filter": func(v any, opts types.Options) any {
			list, ok := asList(v)
			if !ok {
				return []any{}
			}
			return filterList(list, optString(opts, "key", ""), optString(opts, "operator", "="), opts["value"])
		},
		"filter_pluck": func(v any, opts types.Options) any {
			list, ok := asList(v)
			if !ok {
				return []any{}
			}
			filtered := filterList(list, optString(opts, "filter_key", ""), optString(opts, "operator", "="), opts["value"])
			key, ok := optFirst(opts, "pluck_key", "key", "column", "field")
			if !ok {
				return filtered
			}
			return column(filtered, values.Stringify(key))
		},
		"pluck": func(v any, opts types.Options) any {
			list, ok := asList(v)
			if !ok {
				return []any{}
			}
			key, ok := optFirst(opts, "key", "column", "field")
			if !ok {
				return list
			}
			return column(list, values.Stringify(key))
		},
		"map": func(v any, opts types.Options) any {
			list, ok := asList(v)
			if !ok {
				return v
			}
			key, ok := optFirst(opts, "key", "field")
			if !ok {
				return list
			}
			return column(list, values.Stringify(key))
		},
		"chunk": func(v any, opts types.Options) any {
			list, ok := asList(v)
			if !ok {
				return []any{v}
			}
			size := optInt(opts, "size", 2)
			if size < 1 {
				size = 1
			}
			out := []any{}
			for i := 0; i < len(list); i += size {
				out = append(out, append([]any{}, list[i:min(i+size, len(list))]...))
			}
			return out
		},
		"implode": func(v any, opts types.Options) any {
			list, ok := asList(v)
			if !ok {
				return values.Stringify(v)
			}
			parts := make([]string, len(list))
			for i, item := range list {
				parts[i] = values.Stringify(item)
			}
			return strings.Join(parts, optString(opts, "separator", ","))
		},
	}
}

// filterList keeps the items whose value (or value at key, for map items)
// satisfies op. Non-map items have no value at key. Beyond the rule
// operators it understands contains, starts_with, ends_with, empty and
// not_empty; unknown operators keep everything.
func filterList(list []any, key, op string, target any) []any {
	out := []any{}
	for _, item := range list {
		itemValue := item
		if key != "" {
			itemValue = nil
			if m, ok := values.Normalize(item).(map[string]any); ok {
				itemValue = m[key]
			}
		}
		if filterMatch(itemValue, op, target) {
			out = append(out, item)
		}
	}
	return out
}

func filterMatch(itemValue any, op string, target any) bool {
	switch op {
	case "contains":
		return strings.Contains(values.Stringify(itemValue), values.Stringify(target))
	case "starts_with":
		return strings.HasPrefix(values.Stringify(itemValue), values.Stringify(target))
	case "ends_with":
		return strings.HasSuffix(values.Stringify(itemValue), values.Stringify(target))
	case "empty":
		return values.IsEmpty(itemValue)
	case "not_empty":
		return values.Truthy(itemValue)
	}
	if rules.IsOperator(op) {
		return rules.Evaluate(itemValue, op, target)
	}
	return true
}

// column extracts key from every map item, skipping items without it.
func column(list []any, key string) []any {
	out := []any{}
	for _, item := range list {
		m, ok := values.Normalize(item).(map[string]any)
		if !ok {
			continue
		}
		if v, ok := m[key]; ok {
			out = append(out, v)
		}
	}
	return out
}
