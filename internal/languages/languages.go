// Package languages holds the enumerated table of supported languages.
//
// There are no built-in server commands: the caller supplies server_command
// and server_args at init time, and this table only says which language tags
// are accepted, which LSP language identifier to announce for documents, and
// which server capabilities a session for that language is expected to
// advertise.
package languages

import (
	"path/filepath"
	"sort"
	"strings"
)

// Language describes one supported language tag.
type Language struct {
	// Tag is the identifier accepted by init_lsp_client.
	Tag string
	// LSPID is the language identifier announced in textDocument/didOpen.
	LSPID string
	// Extensions lists file extensions (with dot) mapped to this language.
	Extensions []string
	// ExpectedCapabilities names the server capabilities a session should
	// advertise. Missing ones produce warnings at init, not failures.
	ExpectedCapabilities []string
}

var coreCapabilities = []string{
	"definitionProvider",
	"referencesProvider",
	"documentSymbolProvider",
	"hoverProvider",
	"workspaceSymbolProvider",
}

var table = map[string]Language{
	"python": {
		Tag:                  "python",
		LSPID:                "python",
		Extensions:           []string{".py", ".pyi"},
		ExpectedCapabilities: coreCapabilities,
	},
	"typescript": {
		Tag:                  "typescript",
		LSPID:                "typescript",
		Extensions:           []string{".ts", ".tsx", ".mts", ".cts"},
		ExpectedCapabilities: append(coreCapabilities, "implementationProvider"),
	},
	"javascript": {
		Tag:                  "javascript",
		LSPID:                "javascript",
		Extensions:           []string{".js", ".jsx", ".mjs", ".cjs"},
		ExpectedCapabilities: coreCapabilities,
	},
	"rust": {
		Tag:                  "rust",
		LSPID:                "rust",
		Extensions:           []string{".rs"},
		ExpectedCapabilities: append(coreCapabilities, "implementationProvider", "typeDefinitionProvider"),
	},
	"go": {
		Tag:                  "go",
		LSPID:                "go",
		Extensions:           []string{".go"},
		ExpectedCapabilities: append(coreCapabilities, "implementationProvider", "typeDefinitionProvider"),
	},
	"java": {
		Tag:                  "java",
		LSPID:                "java",
		Extensions:           []string{".java"},
		ExpectedCapabilities: coreCapabilities,
	},
	"cpp": {
		Tag:                  "cpp",
		LSPID:                "cpp",
		Extensions:           []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx"},
		ExpectedCapabilities: append(coreCapabilities, "declarationProvider"),
	},
	"c": {
		Tag:                  "c",
		LSPID:                "c",
		Extensions:           []string{".c", ".h"},
		ExpectedCapabilities: append(coreCapabilities, "declarationProvider"),
	},
}

// Lookup returns the language entry for a tag, case-insensitively.
func Lookup(tag string) (Language, bool) {
	lang, ok := table[strings.ToLower(tag)]
	return lang, ok
}

// IsSupported reports whether the tag is in the table.
func IsSupported(tag string) bool {
	_, ok := Lookup(tag)
	return ok
}

// Tags returns all supported language tags, sorted.
func Tags() []string {
	tags := make([]string, 0, len(table))
	for tag := range table {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// All returns all language entries ordered by tag.
func All() []Language {
	langs := make([]Language, 0, len(table))
	for _, tag := range Tags() {
		langs = append(langs, table[tag])
	}
	return langs
}

// LSPIDForFile infers the didOpen language identifier from a file extension,
// falling back to the session language when the extension is unknown.
func LSPIDForFile(path, sessionTag string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for _, lang := range table {
		for _, e := range lang.Extensions {
			if e == ext {
				return lang.LSPID
			}
		}
	}
	if lang, ok := Lookup(sessionTag); ok {
		return lang.LSPID
	}
	return "plaintext"
}
