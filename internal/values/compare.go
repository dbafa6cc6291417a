// internal/values/compare.go
package values

import "strings"

/*
 * Loose three-way comparison.
 *
 * CompareLoose defines exactly which cross-type pairings are ordered:
 *
 *   nil    vs nil            Equal
 *   nil    vs bool/number    truthiness (nil is false)
 *   nil    vs string         "" compared with the string
 *   nil    vs list           Equal when the list is empty, else Less
 *   bool   vs anything       truthiness of both sides
 *   number vs number         numeric
 *   number vs string         numeric when the string is numeric, otherwise the
 *                            number's string form compared lexically
 *   string vs string         numeric when both numeric, otherwise lexical
 *   list   vs list           by length, then element-wise equality
 *                            (same length but unequal is Incomparable)
 *   map    vs map            Equal when same keys with loosely equal values,
 *                            otherwise Incomparable
 *
 * Every other pairing is Incomparable: "=" is false, "!=" is true and all
 * ordered operators are false.
 */

// Ordering is the result of a loose comparison.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
	Incomparable
)

// CompareLoose compares a and b under the loose rules above.
func CompareLoose(a, b any) Ordering {
	a = Normalize(a)
	b = Normalize(b)

	if a == nil || b == nil {
		return compareNil(a, b)
	}

	if ab, ok := a.(bool); ok {
		return compareBool(ab, Truthy(b))
	}
	if bb, ok := b.(bool); ok {
		return compareBool(Truthy(a), bb)
	}

	switch av := a.(type) {
	case float64:
		switch bv := b.(type) {
		case float64:
			return compareFloat(av, bv)
		case string:
			if bn, ok := ToNumber(bv); ok {
				return compareFloat(av, bn)
			}
			return compareString(FormatNumber(av), bv)
		}
	case string:
		switch bv := b.(type) {
		case float64:
			if an, ok := ToNumber(av); ok {
				return compareFloat(an, bv)
			}
			return compareString(av, FormatNumber(bv))
		case string:
			an, aok := ToNumber(av)
			bn, bok := ToNumber(bv)
			if aok && bok {
				return compareFloat(an, bn)
			}
			return compareString(av, bv)
		}
	case []any:
		if bv, ok := b.([]any); ok {
			return compareList(av, bv)
		}
	case map[string]any:
		if bv, ok := b.(map[string]any); ok {
			return compareMap(av, bv)
		}
	}
	return Incomparable
}

// LooseEqual reports whether a and b compare Equal.
func LooseEqual(a, b any) bool {
	return CompareLoose(a, b) == Equal
}

// Contains reports whether any element of list is loosely equal to v.
func Contains(list []any, v any) bool {
	for _, elem := range list {
		if LooseEqual(v, elem) {
			return true
		}
	}
	return false
}

func compareNil(a, b any) Ordering {
	if a == nil && b == nil {
		return Equal
	}
	if a == nil {
		return invert(nilAgainst(b))
	}
	return nilAgainst(a)
}

// nilAgainst compares v with nil, from v's point of view.
func nilAgainst(v any) Ordering {
	switch t := v.(type) {
	case bool, float64:
		return compareBool(Truthy(t), false)
	case string:
		return compareString(t, "")
	case []any:
		if len(t) == 0 {
			return Equal
		}
		return Greater
	case map[string]any:
		if len(t) == 0 {
			return Equal
		}
		return Greater
	}
	return Incomparable
}

func invert(o Ordering) Ordering {
	switch o {
	case Less:
		return Greater
	case Greater:
		return Less
	}
	return o
}

func compareBool(a, b bool) Ordering {
	switch {
	case a == b:
		return Equal
	case !a:
		return Less
	default:
		return Greater
	}
}

func compareFloat(a, b float64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	case a == b:
		return Equal
	}
	// NaN
	return Incomparable
}

func compareString(a, b string) Ordering {
	switch strings.Compare(a, b) {
	case -1:
		return Less
	case 1:
		return Greater
	}
	return Equal
}

func compareList(a, b []any) Ordering {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return Less
		}
		return Greater
	}
	for i := range a {
		if !LooseEqual(a[i], b[i]) {
			return Incomparable
		}
	}
	return Equal
}

func compareMap(a, b map[string]any) Ordering {
	if len(a) != len(b) {
		return Incomparable
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !LooseEqual(av, bv) {
			return Incomparable
		}
	}
	return Equal
}
