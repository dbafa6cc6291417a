package functions

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"html"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/solatis/weavereplace/internal/registry"
	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
)

var (
	tagPattern      = regexp.MustCompile(`<[^>]*>`)
	newlinePattern  = regexp.MustCompile(`(\r\n|\n\r|\n|\r)`)
	nonDigitPattern = regexp.MustCompile(`[^0-9]`)

	turkishFold = strings.NewReplacer(
		"ç", "c", "ğ", "g", "ı", "i", "ö", "o", "ş", "s", "ü", "u",
		"Ç", "c", "Ğ", "g", "I", "i", "İ", "i", "Ö", "o", "Ş", "s", "Ü", "u",
	)
)

func stringFuncs() map[string]registry.Func {
	return map[string]registry.Func{
		"upper": func(v any, _ types.Options) any {
			return strings.ToUpper(values.Stringify(v))
		},
		"lower": func(v any, _ types.Options) any {
			return strings.ToLower(values.Stringify(v))
		},
		"title": func(v any, _ types.Options) any {
			return cases.Title(language.Und, cases.NoLower).String(values.Stringify(v))
		},
		"trim": func(v any, _ types.Options) any {
			return strings.TrimSpace(values.Stringify(v))
		},
		"substr": func(v any, opts types.Options) any {
			r := []rune(values.Stringify(v))
			start := optInt(opts, "start", 0)
			if start < 0 {
				start = max(len(r)+start, 0)
			}
			if start >= len(r) {
				return ""
			}
			end := len(r)
			if _, ok := opts["length"]; ok && opts["length"] != nil {
				length := optInt(opts, "length", 0)
				if length < 0 {
					end = max(len(r)+length, start)
				} else {
					end = min(start+length, len(r))
				}
			}
			return string(r[start:end])
		},
		"limit": func(v any, opts types.Options) any {
			r := []rune(values.Stringify(v))
			n := max(optInt(opts, "limit", 10), 0)
			if n >= len(r) {
				return string(r)
			}
			return string(r[:n])
		},
		"replace": func(v any, opts types.Options) any {
			s := values.Stringify(v)
			search, ok := opts["search"]
			if !ok {
				return s
			}
			return strings.ReplaceAll(s, values.Stringify(search), optString(opts, "replace", ""))
		},
		"slug": func(v any, opts types.Options) any {
			return slugify(values.Stringify(v), optString(opts, "separator", "-"))
		},
		"turkish_upper": func(v any, _ types.Options) any {
			return cases.Upper(language.Turkish).String(values.Stringify(v))
		},
		"turkish_slug": func(v any, opts types.Options) any {
			return slugify(turkishFold.Replace(values.Stringify(v)), optString(opts, "separator", "-"))
		},
		"starts_with": func(v any, opts types.Options) any {
			return strings.HasPrefix(values.Stringify(v), optString(opts, "needle", ""))
		},
		"ends_with": func(v any, opts types.Options) any {
			return strings.HasSuffix(values.Stringify(v), optString(opts, "needle", ""))
		},
		"contains": func(v any, opts types.Options) any {
			return strings.Contains(values.Stringify(v), optString(opts, "needle", ""))
		},
		"template": func(v any, opts types.Options) any {
			return strings.ReplaceAll(optString(opts, "template", "{value}"), "{value}", values.Stringify(v))
		},
		"email_domain": func(v any, _ types.Options) any {
			s := values.Stringify(v)
			addr, err := mail.ParseAddress(s)
			if err != nil || addr.Address != s {
				return ""
			}
			return s[strings.LastIndex(s, "@")+1:]
		},
		"phone_format": func(v any, opts types.Options) any {
			digits := nonDigitPattern.ReplaceAllString(values.Stringify(v), "")
			if optString(opts, "format", "international") == "international" {
				code := optString(opts, "country_code", "90")
				if !strings.HasPrefix(digits, code) {
					digits = code + digits
				}
			}
			return "+" + digits
		},
		"escape": func(v any, _ types.Options) any {
			return html.EscapeString(values.Stringify(v))
		},
		"strip_tags": func(v any, _ types.Options) any {
			return tagPattern.ReplaceAllString(values.Stringify(v), "")
		},
		"nl2br": func(v any, _ types.Options) any {
			return newlinePattern.ReplaceAllString(values.Stringify(v), "<br />$1")
		},
		"url_encode": func(v any, _ types.Options) any {
			return url.QueryEscape(values.Stringify(v))
		},
		"base64_encode": func(v any, _ types.Options) any {
			return base64.StdEncoding.EncodeToString([]byte(values.Stringify(v)))
		},
		"md5": func(v any, _ types.Options) any {
			sum := md5.Sum([]byte(values.Stringify(v)))
			return hex.EncodeToString(sum[:])
		},
		"sha1": func(v any, _ types.Options) any {
			sum := sha1.Sum([]byte(values.Stringify(v)))
			return hex.EncodeToString(sum[:])
		},
		"json_encode": func(v any, _ types.Options) any {
			return values.EncodeJSON(v)
		},
		"to_array": func(v any, _ types.Options) any {
			s, ok := v.(string)
			if !ok {
				return v
			}
			var out any
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return nil
			}
			return out
		},
	}
}

// slugify folds accents, lowercases and joins alphanumeric runs with sep.
func slugify(s, sep string) string {
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(strip, s)
	if err != nil {
		folded = s
	}
	folded = strings.ReplaceAll(folded, "@", sep+"at"+sep)

	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pending && b.Len() > 0 {
				b.WriteString(sep)
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
