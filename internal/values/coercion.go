// internal/values/coercion.go
package values

import (
	"regexp"
	"strconv"
	"strings"
)

/*
 * Numeric coercion for loose comparison.
 *
 * A string is numeric when, after trimming surrounding whitespace, it is a
 * decimal literal with optional sign, fraction and exponent ("42", " -1.5 ",
 * "1e3", ".5"). Hexadecimal, "NaN", "Inf" and digit separators are rejected.
 *
 * Booleans are never numeric. nil is never numeric; callers handle nil via
 * truthiness before reaching numeric comparison.
 */

var numericString = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?$`)

// IsNumericString reports whether s is a decimal numeric literal.
func IsNumericString(s string) bool {
	return numericString.MatchString(strings.TrimSpace(s))
}

// ToNumber converts numbers and numeric strings to float64.
func ToNumber(v any) (float64, bool) {
	switch t := Normalize(v).(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if !numericString.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ToFloat is ToNumber with a zero fallback, used by arithmetic builtins.
func ToFloat(v any) float64 {
	f, _ := ToNumber(v)
	return f
}

// IsNumeric reports whether v is a number or a numeric string.
func IsNumeric(v any) bool {
	_, ok := ToNumber(v)
	return ok
}
