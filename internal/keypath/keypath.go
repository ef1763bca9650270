// Package keypath splits dot-separated keys into path segments.
//
// Splitting is purely syntactic: a literal dot inside a segment cannot be
// escaped, so "a.b" always addresses key "b" inside object "a". Empty
// segments ("a..b", ".a") are kept and address the empty-string key.
// Segments are used byte for byte; no Unicode normalization is applied.
package keypath

import (
	"strings"

	"github.com/roach88/datastore/internal/dberr"
)

// Separator divides key segments.
const Separator = "."

// Resolve splits key into its ordered segments.
// Returns an EMPTY_KEY error for a key with no non-empty segment
// ("", ".", "..").
func Resolve(key string) ([]string, error) {
	if strings.Trim(key, Separator) == "" {
		return nil, dberr.EmptyKey()
	}
	return strings.Split(key, Separator), nil
}

// Join is the inverse of Resolve.
func Join(segments ...string) string {
	return strings.Join(segments, Separator)
}
