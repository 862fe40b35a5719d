package lsap

// Position is a zero-based line/character location, matching LSP semantics.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [start, end) span within a file.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location is a resolved span within a file. Path is absolute on the host.
type Location struct {
	Path  string `json:"path"`
	Range Range  `json:"range"`
}

// Mode selects which kind of symbol location a navigation request resolves.
type Mode string

const (
	// ModeDefinition resolves where a symbol is defined
	ModeDefinition Mode = "definition"
	// ModeDeclaration resolves where a symbol is declared
	ModeDeclaration Mode = "declaration"
	// ModeTypeDefinition resolves the definition of a symbol's type
	ModeTypeDefinition Mode = "type_definition"
	// ModeReferences resolves usage sites of a symbol
	ModeReferences Mode = "references"
	// ModeImplementations resolves implementations of an interface or abstract symbol
	ModeImplementations Mode = "implementations"
)

// IsNavigation reports whether the mode is valid for definition-style lookups.
func (m Mode) IsNavigation() bool {
	switch m {
	case ModeDefinition, ModeDeclaration, ModeTypeDefinition:
		return true
	}
	return false
}

// IsUsage reports whether the mode is valid for reference-style lookups.
func (m Mode) IsUsage() bool {
	switch m {
	case ModeReferences, ModeImplementations:
		return true
	}
	return false
}

// Locator anchors a request at a symbol within a file: either an explicit
// position, or a symbol name resolved by the client (dotted paths like
// "User.validate" match nested symbols). Resolution correctness is owned by
// this layer; callers only check presence.
type Locator struct {
	Symbol   string
	Position *Position
}

// SymbolEntry is one node of a file's structural outline.
type SymbolEntry struct {
	Name string `json:"name"`
	// Kind is the human-readable LSP symbol kind ("class", "function", ...).
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
	// Path is the nesting path from the file root to this symbol, inclusive.
	Path []string `json:"path"`
	// Range spans the whole symbol body.
	Range Range `json:"range"`
	// SelectionRange spans just the symbol's name.
	SelectionRange Range         `json:"selectionRange"`
	Children       []SymbolEntry `json:"children,omitempty"`
}

// Flatten returns the entry and all descendants in document order.
func (e SymbolEntry) Flatten() []SymbolEntry {
	out := []SymbolEntry{e}
	for _, c := range e.Children {
		out = append(out, c.Flatten()...)
	}
	return out
}

// FlattenEntries flattens a whole outline in document order.
func FlattenEntries(entries []SymbolEntry) []SymbolEntry {
	var out []SymbolEntry
	for _, e := range entries {
		out = append(out, e.Flatten()...)
	}
	return out
}

// HoverInfo is the documentation a server attaches to a position.
type HoverInfo struct {
	// Contents is markdown or plain text as produced by the server.
	Contents string `json:"contents"`
	// Range is the span the hover applies to, when the server reports one.
	Range *Range `json:"range,omitempty"`
}

// Match is one workspace symbol search result.
type Match struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	ContainerName string   `json:"containerName,omitempty"`
	Location      Location `json:"location"`
}

// symbolKindNames maps the LSP SymbolKind enumeration to readable names.
var symbolKindNames = map[int]string{
	1:  "file",
	2:  "module",
	3:  "namespace",
	4:  "package",
	5:  "class",
	6:  "method",
	7:  "property",
	8:  "field",
	9:  "constructor",
	10: "enum",
	11: "interface",
	12: "function",
	13: "variable",
	14: "constant",
	15: "string",
	16: "number",
	17: "boolean",
	18: "array",
	19: "object",
	20: "key",
	21: "null",
	22: "enum-member",
	23: "struct",
	24: "event",
	25: "operator",
	26: "type-parameter",
}

// SymbolKindName converts an LSP numeric symbol kind to a readable name.
func SymbolKindName(kind int) string {
	if name, ok := symbolKindNames[kind]; ok {
		return name
	}
	return "symbol"
}
