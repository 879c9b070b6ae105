package sessionstore

import "testing"

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"empty string", "", "_empty"},
		{"dotted segment", "a.b.c", "a_b_c"},
		{"plain string", "user-42", "user-42"},
		{"non-string", 42, "42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeKey(tc.in); got != tc.want {
				t.Errorf("sanitizeKey(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// TestSanitizeKey_Idempotent is spec.md §8 invariant 10: sanitizing an
// already-sanitized key must be a no-op.
func TestSanitizeKey_Idempotent(t *testing.T) {
	inputs := []string{"", "a.b.c", "user-42", "...", "already_sanitized"}
	for _, in := range inputs {
		once := sanitizeKey(in)
		twice := sanitizeKey(once)
		if once != twice {
			t.Errorf("sanitizeKey not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}
