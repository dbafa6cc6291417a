// Package wildcard resolves dotted paths containing "*" segments against a
// flattened context.
//
// Two variants exist. Group serves template variables: "*" matches any single
// segment, matches are grouped per concrete substitution and each group yields
// the value of the target property. Indexed serves rule conditions: "*" matches
// numeric list indices only and every matching key yields a candidate.
package wildcard

import (
	"regexp"
	"strings"

	"github.com/solatis/weavereplace/internal/flatten"
	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
)

// Segment is the wildcard path segment.
const Segment = "*"

// HasWildcard reports whether path contains a "*" segment.
func HasWildcard(path string) bool {
	for _, seg := range strings.Split(path, ".") {
		if seg == Segment {
			return true
		}
	}
	return false
}

type group struct {
	direct any
	subs   map[string]any
}

func (g *group) value() any {
	if len(g.subs) == 0 {
		return g.direct
	}
	return flatten.Undot(g.subs)
}

// Group gathers the values addressed by a wildcard path across all groups.
//
// The path splits into a prefix running up to and including the last "*" and a
// target of the remaining segments. Context keys matching the prefix are grouped
// by their concrete prefix; each group is undotted and its target collected.
// Scalar and map targets are appended, list targets are spliced in, absent
// targets are skipped. With an empty target the group value itself is
// collected. Groups appear in the natural order of their first key.
//
// When no key matches the prefix, the path is walked over the undotted context
// instead, expanding "*" over list elements.
//
// The result is never nil.
func Group(path string, ctx types.Context) []any {
	segments := strings.Split(path, ".")
	last := -1
	for i, seg := range segments {
		if seg == Segment {
			last = i
		}
	}
	if last < 0 {
		if v, ok := ctx[path]; ok {
			return []any{v}
		}
		return []any{}
	}

	prefix := segments[:last+1]
	target := strings.Join(segments[last+1:], ".")

	var order []string
	groups := make(map[string]*group)

	for _, key := range ctx.Keys() {
		keySegs := strings.Split(key, ".")
		if !matchPrefix(prefix, keySegs) {
			continue
		}

		groupKey := strings.Join(keySegs[:len(prefix)], ".")
		g, ok := groups[groupKey]
		if !ok {
			g = &group{subs: make(map[string]any)}
			groups[groupKey] = g
			order = append(order, groupKey)
		}

		rest := keySegs[len(prefix):]
		if len(rest) == 0 {
			g.direct = ctx[key]
			continue
		}
		g.subs[strings.Join(rest, ".")] = ctx[key]
	}

	if len(order) == 0 {
		return walk(flatten.Undot(ctx), segments)
	}

	out := []any{}
	for _, groupKey := range order {
		v := groups[groupKey].value()

		if target == "" {
			out = append(out, v)
			continue
		}

		found, ok := flatten.Get(v, target)
		if !ok || found == nil {
			continue
		}
		if list, isList := values.Normalize(found).([]any); isList {
			out = append(out, list...)
			continue
		}
		out = append(out, found)
	}
	return out
}

func matchPrefix(prefix, keySegs []string) bool {
	if len(keySegs) < len(prefix) {
		return false
	}
	for i, seg := range prefix {
		if seg == Segment {
			if keySegs[i] == "" {
				return false
			}
			continue
		}
		if keySegs[i] != seg {
			return false
		}
	}
	return true
}

// walk descends segments through a nested value. "*" iterates list elements
// and, for maps, values in natural key order. A list reached by a named final
// segment is spliced into the result.
func walk(root any, segments []string) []any {
	out := []any{}
	var descend func(current any, rest []string, viaWildcard bool)
	descend = func(current any, rest []string, viaWildcard bool) {
		if len(rest) == 0 {
			if current == nil {
				return
			}
			if list, ok := values.Normalize(current).([]any); ok && !viaWildcard {
				out = append(out, list...)
				return
			}
			out = append(out, current)
			return
		}

		seg := rest[0]
		if seg != Segment {
			next, ok := flatten.Step(current, seg)
			if !ok {
				return
			}
			descend(next, rest[1:], false)
			return
		}

		for _, elem := range elements(current) {
			descend(elem, rest[1:], true)
		}
	}
	descend(root, segments, false)
	return out
}

func elements(v any) []any {
	switch t := values.Normalize(v).(type) {
	case []any:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		types.SortPaths(keys)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = t[k]
		}
		return out
	}
	return nil
}

// Pattern compiles a rule column key into an anchored regular expression in
// which every "*" matches one or more digits.
func Pattern(columnKey string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(columnKey)
	return regexp.MustCompile("^" + strings.ReplaceAll(quoted, `\*`, `\d+`) + "$")
}

// MatchKeys returns the context keys matching columnKey in natural order.
func MatchKeys(ctx types.Context, columnKey string) []string {
	re := Pattern(columnKey)
	var keys []string
	for _, key := range ctx.Keys() {
		if re.MatchString(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Indexed returns the candidate values for a rule column key.
//
// Every context key matching the key, with "*" restricted to numeric indices,
// contributes its value. Without such a key the path is walked over the undotted
// context: "*" iterates every element of the current level and named segments
// index directly. Absent and nil values yield no candidate.
func Indexed(ctx types.Context, columnKey string) []any {
	keys := MatchKeys(ctx, columnKey)
	if len(keys) > 0 {
		out := make([]any, len(keys))
		for i, key := range keys {
			out[i] = ctx[key]
		}
		return out
	}

	var out []any
	var descend func(current any, rest []string)
	descend = func(current any, rest []string) {
		if len(rest) == 0 {
			if current != nil {
				out = append(out, current)
			}
			return
		}
		if rest[0] == Segment {
			for _, elem := range elements(current) {
				descend(elem, rest[1:])
			}
			return
		}
		next, ok := flatten.Step(current, rest[0])
		if !ok {
			return
		}
		descend(next, rest[1:])
	}
	descend(flatten.Undot(ctx), strings.Split(columnKey, "."))
	return out
}
