package sessionstore

import (
	"fmt"
	"strings"
)

// sanitizeKey implements spec.md §4.2's key-sanitization rules: an empty
// value becomes "_empty", a non-string value is stringified, and "." is
// replaced with "_" (document-store path segments cannot contain dots).
// Sanitizing an already-sanitized key is a no-op (spec.md §8 invariant 10).
func sanitizeKey(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprintf("%v", v)
	}
	if s == "" {
		return "_empty"
	}
	return strings.ReplaceAll(s, ".", "_")
}
