package search

import "testing"

func TestMatches_AccentInsensitive(t *testing.T) {
	cases := []struct {
		query string
		name  string
		want  bool
	}{
		{"cafeteria", "Cafetería Central", true},
		{"cafetería", "cafeteria central", true},
		{"CAFE", "Cafetería", true},
		{"empanada", "Empanadas Doña María", true},
		{"dona", "Empanadas Doña María", false}, // ñ 不折叠，只有元音重音等价
		{"maria", "Empanadas Doña María", true},
		{"sushi", "Cafetería Central", false},
		{"", "cualquier cosa", true},
	}
	for _, c := range cases {
		if got := Matches(c.query, c.name); got != c.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", c.query, c.name, got, c.want)
		}
	}
}

func TestAccentPattern_EscapesMeta(t *testing.T) {
	re, err := AccentPattern("jugo (1l) + azucar?")
	if err != nil {
		t.Fatalf("AccentPattern: %v", err)
	}
	if !re.MatchString("Jugo (1L) + Azúcar?") {
		t.Fatalf("expected literal match after escaping")
	}
	if re.MatchString("jugo 1l  azucar") {
		t.Fatalf("meta characters must be treated literally")
	}
}
