// internal/rules/fieldpath.go
package rules

import (
	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/wildcard"
)

/*
 * Candidate resolution for a condition's column key.
 *
 * Keys may contain "*" segments standing for numeric list indices
 * ("users.*.age"). Every flattened key matching the pattern is a candidate;
 * without a match the key is walked over the nested form of the context.
 *
 * An absent key yields a single nil candidate so that absence is still
 * evaluated: "= null" and "!=" can match a missing field while ordered
 * operators cannot.
 */

// Candidates returns the values a condition on columnKey is tested against.
// The result always has at least one element.
func Candidates(ctx types.Context, columnKey string) []any {
	found := wildcard.Indexed(ctx, columnKey)
	if len(found) == 0 {
		return []any{nil}
	}
	return found
}
