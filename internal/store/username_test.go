package store

import "testing"

func TestNormalizeUsername(t *testing.T) {
	for _, in := range []string{"bob", "ana.maria", "user_42", "Juan-P", " alice "} {
		got, err := NormalizeUsername(in)
		if err != nil {
			t.Fatalf("NormalizeUsername(%q): %v", in, err)
		}
		if got == "" {
			t.Fatalf("NormalizeUsername(%q) returned empty", in)
		}
	}

	if got, _ := NormalizeUsername(" alice "); got != "alice" {
		t.Fatalf("expected trimmed username, got %q", got)
	}
	if got, _ := NormalizeUsername("Alice"); got != "Alice" {
		t.Fatalf("case must be preserved, got %q", got)
	}
}

func TestNormalizeUsername_Invalid(t *testing.T) {
	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	for _, in := range []string{"", "  ", "ab", "has space", "tildes-ñ", "semi;colon", string(long)} {
		if got, err := NormalizeUsername(in); err == nil {
			t.Fatalf("NormalizeUsername(%q) = %q, want error", in, got)
		}
	}
}
