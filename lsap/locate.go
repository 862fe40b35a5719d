package lsap

import (
	"context"
	"os"
	"strings"

	"lspmcp/internal/logging"
	"lspmcp/internal/lsperrors"
)

// findSymbolInEntries locates a named symbol in an outline tree. The name
// may be a dotted path ("Class.method") which must match a nesting chain;
// a bare name matches the first entry with that name in document order.
// Returns the selection range start, which is where navigation requests
// should anchor.
func findSymbolInEntries(entries []SymbolEntry, name string) (Position, bool) {
	segments := strings.Split(name, ".")

	if len(segments) > 1 {
		if pos, ok := findByPath(entries, segments); ok {
			return pos, true
		}
	}

	return findByName(entries, name)
}

func findByPath(entries []SymbolEntry, segments []string) (Position, bool) {
	for _, entry := range entries {
		if entry.Name != segments[0] {
			continue
		}
		if len(segments) == 1 {
			return entry.SelectionRange.Start, true
		}
		if pos, ok := findByPath(entry.Children, segments[1:]); ok {
			return pos, true
		}
	}
	return Position{}, false
}

func findByName(entries []SymbolEntry, name string) (Position, bool) {
	for _, entry := range FlattenEntries(entries) {
		if entry.Name == name {
			return entry.SelectionRange.Start, true
		}
	}
	return Position{}, false
}

// scanForSymbol falls back to a word-boundary text search when the outline
// does not list the symbol, for names like local variables that servers
// omit from documentSymbol. Only the last segment of a dotted name is
// scanned for.
func scanForSymbol(source, name string) (Position, bool) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return Position{}, false
	}

	for lineNo, line := range strings.Split(source, "\n") {
		col := indexWord(line, name)
		if col >= 0 {
			return Position{Line: lineNo, Character: col}, true
		}
	}
	return Position{}, false
}

// indexWord finds name in line at a position where it is not part of a
// larger identifier.
func indexWord(line, name string) int {
	offset := 0
	for {
		i := strings.Index(line[offset:], name)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(name)

		before := byte(0)
		if start > 0 {
			before = line[start-1]
		}
		after := byte(0)
		if end < len(line) {
			after = line[end]
		}
		if !isWordByte(before) && !isWordByte(after) {
			return start
		}
		offset = end
	}
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// resolveLocator turns a Locator into a concrete position in file. An
// explicit position wins; a symbol name is resolved against the document
// outline first and the file text second. A symbol that appears nowhere
// in the file is not an error: it resolves to nothing, and queries for
// it answer with an empty result.
func (c *localClient) resolveLocator(ctx context.Context, file string, loc Locator) (Position, bool, error) {
	if loc.Position != nil {
		return *loc.Position, true, nil
	}
	if loc.Symbol == "" {
		return Position{}, false, lsperrors.New(lsperrors.InvalidArgument,
			"locator needs a symbol name or a position", nil)
	}

	entries, err := c.Outline(ctx, file)
	if err == nil {
		if pos, ok := findSymbolInEntries(entries, loc.Symbol); ok {
			return pos, true, nil
		}
	}

	data, readErr := os.ReadFile(file)
	if readErr == nil {
		if pos, ok := scanForSymbol(string(data), loc.Symbol); ok {
			return pos, true, nil
		}
	}

	c.log.Debug("symbol not found", logging.Fields{"symbol": loc.Symbol, "file": file})
	return Position{}, false, nil
}
