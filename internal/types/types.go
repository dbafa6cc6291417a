// Package types provides domain models shared across weavereplace components.
//
// Zero-dependency design: types.go, columns.go, rules.go and errors.go use only the
// standard library so that the core packages (extract, template, rules) stay
// embeddable. ID utilities in ids.go import uuid and are only used by storage.
//
// Values flowing through the engine follow the encoding/json model (nil, bool,
// float64, string, []any, map[string]any). Go integer kinds, json.Number,
// time.Time and Enum are accepted on input and normalised by internal/values.
package types

import (
	"sort"
	"strconv"
	"strings"
)

// Context is a flattened, dotted-path keyed view of a record.
// Keys are unique; later writes for the same key overwrite earlier ones.
type Context map[string]any

// Enum is implemented by enum-like field values that wrap a scalar.
// The extractor and rule matcher unwrap it to EnumValue().
type Enum interface {
	EnumValue() any
}

// Options carries the named options of a function placeholder.
type Options map[string]any

// Merge copies all entries of other into c, overwriting identical keys.
func (c Context) Merge(other Context) {
	for k, v := range other {
		c[k] = v
	}
}

// Keys returns the context keys in natural order: segment by segment, numeric
// segments compared as integers. This order stands in for insertion order
// wherever encounter order matters (wildcard grouping, match diagnostics).
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	SortPaths(keys)
	return keys
}

// SortPaths sorts dotted paths in natural order.
func SortPaths(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return ComparePaths(paths[i], paths[j]) < 0
	})
}

// ComparePaths compares two dotted paths segment by segment (-1/0/1).
func ComparePaths(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

func compareSegment(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	// numeric segments sort before names
	if aerr == nil {
		return -1
	}
	if berr == nil {
		return 1
	}
	return strings.Compare(a, b)
}
