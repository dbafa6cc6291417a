// Package flatten converts between nested values and dotted-path maps.
//
// Dot flattens nested maps into dotted keys but stores list-shaped values whole,
// so a list such as additional_emails stays addressable both as one value and,
// through wildcard resolution, element by element. Undot rebuilds the nested
// structure from a flattened map; Get indexes into a nested value by path.
package flatten

import (
	"strconv"
	"strings"

	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
)

// Join appends key to prefix with a dot separator.
func Join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// Dot flattens value under prefix.
//
// Top-level maps and lists are expanded entry by entry. Below the top level,
// non-empty maps that are not list-shaped are recursed into; lists, list-shaped
// maps, empty maps and scalars are stored at their dotted key. A top-level
// scalar is stored at prefix itself.
func Dot(value any, prefix string) types.Context {
	out := types.Context{}

	switch v := values.Normalize(value).(type) {
	case nil:
	case map[string]any:
		for k, child := range v {
			dotInto(out, child, Join(prefix, k))
		}
	case []any:
		for i, child := range v {
			dotInto(out, child, Join(prefix, strconv.Itoa(i)))
		}
	default:
		if prefix != "" {
			out[prefix] = value
		}
	}

	return out
}

func dotInto(out types.Context, value any, key string) {
	normalized := values.Normalize(value)
	if m, ok := normalized.(map[string]any); ok && len(m) > 0 && !IsListShaped(m) {
		for k, child := range m {
			dotInto(out, child, key+"."+k)
		}
		return
	}
	switch normalized.(type) {
	case []any, map[string]any:
		out[key] = normalized
	default:
		out[key] = value
	}
}

// IsListShaped reports whether v is an ordered, contiguous, zero-based sequence:
// a list, or a non-empty map whose keys are exactly "0".."n-1".
func IsListShaped(v any) bool {
	switch t := v.(type) {
	case []any:
		return true
	case map[string]any:
		if len(t) == 0 {
			return false
		}
		for i := 0; i < len(t); i++ {
			if _, ok := t[strconv.Itoa(i)]; !ok {
				return false
			}
		}
		return true
	}
	return false
}

// Undot rebuilds a nested structure from dotted keys.
// Keys are applied in natural order, so a deeper key replaces a scalar stored at
// one of its prefixes. Maps built here whose keys are exactly "0".."n-1" become
// lists. Stored values are never modified.
func Undot(flat map[string]any) any {
	root := node{}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	types.SortPaths(keys)

	for _, key := range keys {
		root.set(strings.Split(key, "."), flat[key])
	}

	return root.finalize()
}

// node is an intermediate map created by Undot, as opposed to a stored value.
type node map[string]any

func (n node) set(segments []string, value any) {
	current := n
	for _, seg := range segments[:len(segments)-1] {
		child, ok := current[seg].(node)
		if !ok {
			child = node{}
			switch existing := values.Normalize(current[seg]).(type) {
			case []any:
				for i, elem := range existing {
					child[strconv.Itoa(i)] = elem
				}
			case map[string]any:
				for k, elem := range existing {
					child[k] = elem
				}
			}
			current[seg] = child
		}
		current = child
	}
	current[segments[len(segments)-1]] = value
}

func (n node) finalize() any {
	m := make(map[string]any, len(n))
	for k, child := range n {
		if c, ok := child.(node); ok {
			m[k] = c.finalize()
			continue
		}
		m[k] = child
	}
	if !IsListShaped(m) {
		return m
	}
	list := make([]any, len(m))
	for i := range list {
		list[i] = m[strconv.Itoa(i)]
	}
	return list
}

// Get indexes into a nested value with a dotted path.
// Map segments are looked up by key, list segments by integer index.
func Get(root any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	current := root
	for _, seg := range strings.Split(path, ".") {
		next, ok := Step(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Step descends one segment into a map or list.
func Step(current any, seg string) (any, bool) {
	switch c := values.Normalize(current).(type) {
	case map[string]any:
		v, ok := c[seg]
		return v, ok
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(c) {
			return nil, false
		}
		return c[i], true
	}
	return nil, false
}
