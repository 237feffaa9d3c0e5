package analyzer

import (
	"testing"
)

func TestWordSet_Lowercases(t *testing.T) {
	set := WordSet("OwlVest offers Investment services")
	for _, want := range []string{"owlvest", "offers", "investment", "services"} {
		if _, ok := set[want]; !ok {
			t.Errorf("expected %q in set, got %v", want, set)
		}
	}
}

func TestWordSet_KeepsNumericSymbols(t *testing.T) {
	set := WordSet("x² ½ 5 Ⅻ")
	want := []string{"x²", "½", "5", "ⅻ"}
	if len(set) != len(want) {
		t.Fatalf("expected %d words, got %d: %v", len(want), len(set), set)
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			t.Errorf("expected %q in set, got %v", w, set)
		}
	}
}

func TestWordSet_CollapsesDuplicates(t *testing.T) {
	set := WordSet("Team team TEAM meets")
	if len(set) != 2 {
		t.Errorf("expected 2 unique words, got %d: %v", len(set), set)
	}
	if _, ok := set["team"]; !ok {
		t.Errorf("expected 'team' in set, got %v", set)
	}
}

func TestWordSet_EmptyInput(t *testing.T) {
	if set := WordSet(""); len(set) != 0 {
		t.Errorf("expected empty set, got %v", set)
	}
	if set := WordSet("... !!! ---"); len(set) != 0 {
		t.Errorf("expected empty set for punctuation, got %v", set)
	}
}

func TestSetIntersect(t *testing.T) {
	a := WordSet("alpha beta gamma")
	b := WordSet("beta gamma delta epsilon")
	if n := a.Intersect(b); n != 2 {
		t.Errorf("expected intersection 2, got %d", n)
	}
	if n := b.Intersect(a); n != 2 {
		t.Errorf("expected symmetric intersection 2, got %d", n)
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"hello world", 2},
		{"hello_world", 1},
		{"hello-world", 2},
		{"func(x, y)", 3},
		{"CamelCase", 1},
		{"snake_case_name", 1},
		{"123numbers456", 1},
		{"café crème", 2},
		{"--- owlvest_master_data.txt ---", 2},
		{"x² ½ 5", 3},
		{"area 120m² at ¼%", 4},
	}

	for _, tt := range tests {
		words := splitWords(tt.input)
		if len(words) != tt.expected {
			t.Errorf("splitWords(%q) = %d words, want %d: %v", tt.input, len(words), tt.expected, words)
		}
	}
}
