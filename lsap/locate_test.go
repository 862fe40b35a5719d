package lsap

import "testing"

func outlineFixture() []SymbolEntry {
	return []SymbolEntry{
		{
			Name:           "User",
			Kind:           "class",
			Path:           []string{"User"},
			Range:          Range{Start: Position{Line: 0}, End: Position{Line: 20}},
			SelectionRange: Range{Start: Position{Line: 0, Character: 6}, End: Position{Line: 0, Character: 10}},
			Children: []SymbolEntry{
				{
					Name:           "validate",
					Kind:           "method",
					Path:           []string{"User", "validate"},
					SelectionRange: Range{Start: Position{Line: 4, Character: 8}},
				},
				{
					Name:           "save",
					Kind:           "method",
					Path:           []string{"User", "save"},
					SelectionRange: Range{Start: Position{Line: 9, Character: 8}},
				},
			},
		},
		{
			Name:           "validate",
			Kind:           "function",
			Path:           []string{"validate"},
			SelectionRange: Range{Start: Position{Line: 25, Character: 4}},
		},
	}
}

func TestFindSymbolInEntries(t *testing.T) {
	entries := outlineFixture()

	tests := []struct {
		name   string
		symbol string
		want   Position
		found  bool
	}{
		{"top level", "User", Position{Line: 0, Character: 6}, true},
		{"dotted path", "User.validate", Position{Line: 4, Character: 8}, true},
		{"dotted path second child", "User.save", Position{Line: 9, Character: 8}, true},
		{"bare name prefers document order", "validate", Position{Line: 4, Character: 8}, true},
		{"missing", "nonexistent", Position{}, false},
		{"missing dotted", "User.missing", Position{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := findSymbolInEntries(entries, tt.symbol)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && pos != tt.want {
				t.Errorf("position = %+v, want %+v", pos, tt.want)
			}
		})
	}
}

func TestFindSymbolDottedFallsBackToBareName(t *testing.T) {
	// A flat outline has no "Outer.inner" chain; the bare last segment
	// should not match, but the full dotted string is also tried as a
	// plain name since some servers report names that way.
	entries := []SymbolEntry{
		{Name: "Outer.inner", SelectionRange: Range{Start: Position{Line: 7, Character: 2}}},
	}

	pos, ok := findSymbolInEntries(entries, "Outer.inner")
	if !ok {
		t.Fatal("expected to find dotted name as plain entry")
	}
	if pos.Line != 7 {
		t.Errorf("unexpected position: %+v", pos)
	}
}

func TestScanForSymbol(t *testing.T) {
	source := "import os\n\nclass User:\n    def validate(self):\n        user_id = 1\n        return user_id\n"

	tests := []struct {
		name   string
		symbol string
		want   Position
		found  bool
	}{
		{"class name", "User", Position{Line: 2, Character: 6}, true},
		{"local variable", "user_id", Position{Line: 4, Character: 8}, true},
		{"dotted uses last segment", "User.validate", Position{Line: 3, Character: 8}, true},
		{"missing", "nothing_here", Position{}, false},
		{"substring does not match", "ser", Position{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := scanForSymbol(source, tt.symbol)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && pos != tt.want {
				t.Errorf("position = %+v, want %+v", pos, tt.want)
			}
		})
	}
}

func TestIndexWordBoundaries(t *testing.T) {
	tests := []struct {
		line string
		name string
		want int
	}{
		{"user = make_user()", "user", 0},
		{"make_user user", "user", 10},
		{"username", "user", -1},
		{"a.user.b", "user", 2},
		{"", "user", -1},
	}

	for _, tt := range tests {
		if got := indexWord(tt.line, tt.name); got != tt.want {
			t.Errorf("indexWord(%q, %q) = %d, want %d", tt.line, tt.name, got, tt.want)
		}
	}
}

func TestFlattenEntries(t *testing.T) {
	flat := FlattenEntries(outlineFixture())
	if len(flat) != 4 {
		t.Fatalf("expected 4 flattened entries, got %d", len(flat))
	}
	if flat[0].Name != "User" || flat[1].Name != "validate" || flat[3].Name != "validate" {
		t.Errorf("unexpected document order: %v", []string{flat[0].Name, flat[1].Name, flat[2].Name, flat[3].Name})
	}
}
