package ir

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AmbiguousKeys reports the dot paths of object keys that are distinct
// byte strings but equal under Unicode NFC, such as "caf" followed by a
// precomposed U+00E9 or by "e" plus U+0301. Such keys look identical to a
// reader yet address different values. Paths are returned in canonical key
// order; arrays are not descended into.
func AmbiguousKeys(obj IRObject) []string {
	var out []string
	collectAmbiguousKeys(obj, nil, &out)
	return out
}

func collectAmbiguousKeys(obj IRObject, prefix []string, out *[]string) {
	forms := make(map[string]int, len(obj))
	for k := range obj {
		forms[norm.NFC.String(k)]++
	}

	for _, k := range obj.SortedKeys() {
		path := append(prefix[:len(prefix):len(prefix)], k)
		if forms[norm.NFC.String(k)] > 1 {
			*out = append(*out, strings.Join(path, "."))
		}
		if child, ok := obj[k].(IRObject); ok {
			collectAmbiguousKeys(child, path, out)
		}
	}
}
