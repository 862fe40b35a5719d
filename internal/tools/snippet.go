package tools

import (
	"os"
	"strings"

	"lspmcp/lsap"
)

// snippetOut is a source excerpt attached to one location.
type snippetOut struct {
	// StartLine is the zero-based line number of the first excerpt line.
	StartLine int    `json:"startLine"`
	Code      string `json:"code"`
}

// snippetLoader extracts source excerpts, caching file contents so a result
// set with many hits in the same file reads it once.
type snippetLoader struct {
	contextLines int
	files        map[string][]string
}

func newSnippetLoader(contextLines int) *snippetLoader {
	if contextLines < 0 {
		contextLines = 0
	}
	return &snippetLoader{
		contextLines: contextLines,
		files:        make(map[string][]string),
	}
}

// extract returns the lines around a range, or nil when the file cannot be
// read. Snippet failures never fail the tool call.
func (l *snippetLoader) extract(path string, rng lsap.Range) *snippetOut {
	lines, ok := l.lines(path)
	if !ok || len(lines) == 0 {
		return nil
	}

	start := rng.Start.Line - l.contextLines
	if start < 0 {
		start = 0
	}
	end := rng.End.Line + l.contextLines
	if end > len(lines)-1 {
		end = len(lines) - 1
	}
	if start > end {
		return nil
	}

	return &snippetOut{
		StartLine: start,
		Code:      strings.Join(lines[start:end+1], "\n"),
	}
}

func (l *snippetLoader) lines(path string) ([]string, bool) {
	if lines, ok := l.files[path]; ok {
		return lines, lines != nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		l.files[path] = nil
		return nil, false
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	l.files[path] = lines
	return lines, true
}
