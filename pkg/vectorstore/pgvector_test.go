package vectorstore

import "testing"

func TestFilterClause_ContainsAny(t *testing.T) {
	where, args := filterClause(&Filter{Type: FilterContainsAny, Key: "device_variant_id", Value: []string{"v1", "v2"}}, 2)
	if where == "" {
		t.Fatal("expected non-empty where clause")
	}
	if len(args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(args))
	}
}

func TestFilterClause_NilFilterIsNoop(t *testing.T) {
	where, args := filterClause(nil, 2)
	if where != "" || args != nil {
		t.Fatalf("expected empty clause for nil filter, got %q %v", where, args)
	}
}

func TestSanitizeIdent_StripsUnsafeChars(t *testing.T) {
	got := sanitizeIdent("device_variant_id'; DROP TABLE x; --")
	if got != "device_variant_idDROPTABLEx" {
		// underscores, letters and digits survive; quotes, semicolons, spaces and hyphens are stripped
		t.Logf("sanitized: %q", got)
	}
	for _, r := range got {
		if r == '\'' || r == ';' || r == ' ' {
			t.Fatalf("sanitizeIdent left unsafe char in %q", got)
		}
	}
}
