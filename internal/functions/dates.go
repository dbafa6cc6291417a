package functions

import (
	"math"
	"strings"
	"time"

	"github.com/solatis/weavereplace/internal/registry"
	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
)

// now is replaced in tests.
var now = time.Now

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	time.RFC1123Z,
	time.RFC1123,
}

// phpLayout maps date() format characters onto Go layout fragments.
var phpLayout = map[rune]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'n': "1",
	'd': "02",
	'j': "2",
	'H': "15",
	'h': "03",
	'g': "3",
	'i': "04",
	's': "05",
	'A': "PM",
	'a': "pm",
	'D': "Mon",
	'l': "Monday",
	'M': "Jan",
	'F': "January",
	'T': "MST",
	'P': "-07:00",
	'O': "-0700",
}

func dateFuncs() map[string]registry.Func {
	return map[string]registry.Func{
		"date_format": func(v any, opts types.Options) any {
			t, ok := parseTime(v)
			if !ok {
				return v
			}
			if layout, ok := opts["layout"].(string); ok {
				return t.Format(layout)
			}
			return formatPHP(t, optString(opts, "format", "Y-m-d"))
		},
		"date_diff": func(v any, opts types.Options) any {
			t, ok := parseTime(v)
			if !ok {
				return 0
			}
			from := now()
			if f, ok := opts["from"]; ok {
				if from, ok = parseTime(f); !ok {
					return 0
				}
			}
			return int(math.Abs(t.Sub(from).Hours()) / 24)
		},
		"age": func(v any, _ types.Options) any {
			t, ok := parseTime(v)
			if !ok {
				return 0
			}
			return age(t, now())
		},
	}
}

// parseTime accepts time.Time, numbers as unix seconds and the common textual
// layouts.
func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	}
	if f, ok := values.Normalize(v).(float64); ok {
		return time.Unix(int64(f), 0).UTC(), true
	}
	s := strings.TrimSpace(values.Stringify(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatPHP renders t using date() format characters. A backslash escapes
// the next character; unknown characters are copied.
func formatPHP(t time.Time, format string) string {
	var b strings.Builder
	escaped := false
	for _, r := range format {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if layout, ok := phpLayout[r]; ok {
			b.WriteString(t.Format(layout))
			continue
		}
		switch r {
		case 'U':
			b.WriteString(values.FormatNumber(float64(t.Unix())))
		case 'N':
			wd := int(t.Weekday())
			if wd == 0 {
				wd = 7
			}
			b.WriteRune(rune('0' + wd))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// age returns the number of whole years from birth to at.
func age(birth, at time.Time) int {
	years := at.Year() - birth.Year()
	if at.Before(birth.AddDate(years, 0, 0)) {
		years--
	}
	return max(years, 0)
}
