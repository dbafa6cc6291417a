package functions

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/solatis/weavereplace/internal/registry"
	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

func numberFuncs() map[string]registry.Func {
	return map[string]registry.Func{
		"sum": func(v any, _ types.Options) any {
			list, ok := asList(v)
			if !ok {
				return values.ToFloat(v)
			}
			return sum(list)
		},
		"avg": func(v any, _ types.Options) any {
			list, ok := asList(v)
			if !ok {
				return values.ToFloat(v)
			}
			if len(list) == 0 {
				return 0.0
			}
			return sum(list) / float64(len(list))
		},
		"min": func(v any, _ types.Options) any {
			return extreme(v, values.Less)
		},
		"max": func(v any, _ types.Options) any {
			return extreme(v, values.Greater)
		},
		"round": func(v any, opts types.Options) any {
			return round(values.ToFloat(v), optInt(opts, "precision", 0))
		},
		"number_format": func(v any, opts types.Options) any {
			return formatNumber(values.ToFloat(v),
				optInt(opts, "decimals", 0),
				optString(opts, "decimal_separator", ","),
				optString(opts, "thousands_separator", "."),
			)
		},
		"currency": func(v any, opts types.Options) any {
			formatted := formatNumber(values.ToFloat(v), 2, ",", ".")
			symbol := optString(opts, "currency", "₺")
			if optString(opts, "position", "after") == "before" {
				return symbol + formatted
			}
			return formatted + " " + symbol
		},
		"percentage": func(v any, opts types.Options) any {
			total := optFloat(opts, "total", 100)
			if total == 0 {
				return "0%"
			}
			pct := values.ToFloat(v) / total * 100
			return humanize.FtoaWithDigits(pct, optInt(opts, "precision", 1)) + "%"
		},
		"file_size": func(v any, _ types.Options) any {
			size := math.Trunc(values.ToFloat(v))
			i := 0
			for size > 1024 && i < len(sizeUnits)-1 {
				size /= 1024
				i++
			}
			return humanize.FtoaWithDigits(size, 2) + " " + sizeUnits[i]
		},
	}
}

func sum(list []any) float64 {
	total := 0.0
	for _, item := range list {
		total += values.ToFloat(item)
	}
	return total
}

func extreme(v any, want values.Ordering) any {
	list, ok := asList(v)
	if !ok {
		return v
	}
	if len(list) == 0 {
		return nil
	}
	best := list[0]
	for _, item := range list[1:] {
		if values.CompareLoose(item, best) == want {
			best = item
		}
	}
	return best
}

func round(f float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(f*p) / p
}

// formatNumber renders f with fixed decimals and the given separators.
// Separators are single characters; longer ones are cut to their first rune.
func formatNumber(f float64, decimals int, decimalSep, thousandsSep string) string {
	decimals = min(max(decimals, 0), 9)

	dec := firstRune(decimalSep, ".")
	thousands := firstRune(thousandsSep, "")

	var format strings.Builder
	format.WriteString("#")
	format.WriteString(thousands)
	format.WriteString("###")
	format.WriteString(dec)
	format.WriteString(strings.Repeat("#", decimals))
	return humanize.FormatFloat(format.String(), f)
}

func firstRune(s, def string) string {
	for _, r := range s {
		if r == '#' || r == '0' || r == '+' {
			return def
		}
		return string(r)
	}
	return def
}
