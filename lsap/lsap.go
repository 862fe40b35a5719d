// Package lsap provides high-level language-server operations over an
// already-negotiated LSP session: definition, references, outline, hover and
// workspace symbol search, addressed by symbol name rather than raw
// positions.
//
// The wire protocol (JSON-RPC 2.0 framing, request correlation) is owned by
// go.lsp.dev/jsonrpc2; request and notification payloads use go.lsp.dev
// protocol types. Callers above this package never see either.
package lsap

import (
	"context"
	"time"

	"lspmcp/internal/logging"
)

// DefaultRequestTimeout bounds each language-server request.
const DefaultRequestTimeout = 30 * time.Second

// Options configure a connection to one language server for one workspace.
type Options struct {
	// WorkspaceRoot is the absolute path of the workspace directory.
	WorkspaceRoot string
	// Language is the session's language tag (python, go, ...); it selects
	// the didOpen language identifier for files with unknown extensions.
	Language string
	// Command is the language server executable; no defaults are applied.
	Command string
	// Args are passed to the server verbatim.
	Args []string
	// RequestTimeout bounds each request; zero means DefaultRequestTimeout.
	RequestTimeout time.Duration
	// Logger receives connection lifecycle and request logs; nil discards.
	Logger *logging.Logger
}

// Client is a live connection to one language server for one workspace.
//
// All methods are safe to call from the single goroutine that dispatches
// tool calls; empty results are returned as empty slices or nil pointers
// with a nil error, never as errors.
type Client interface {
	// Definition resolves symbol locations under a navigation mode
	// (definition, declaration, type_definition).
	Definition(ctx context.Context, file string, loc Locator, mode Mode) ([]Location, error)

	// References resolves usage sites under a usage mode (references,
	// implementations). A non-negative limit caps the result count.
	References(ctx context.Context, file string, loc Locator, mode Mode, limit int) ([]Location, error)

	// Outline returns the hierarchical symbol tree of one file.
	Outline(ctx context.Context, file string) ([]SymbolEntry, error)

	// Hover returns documentation anchored at the symbol's location, or nil
	// when the server has none.
	Hover(ctx context.Context, file string, loc Locator) (*HoverInfo, error)

	// WorkspaceSymbols searches symbols across the workspace. pattern is a
	// glob filter on result file paths; empty means no filter. A
	// non-negative limit caps the result count.
	WorkspaceSymbols(ctx context.Context, query, pattern string, limit int) ([]Match, error)

	// Capabilities returns the server's advertised capabilities as received
	// during the initialize handshake.
	Capabilities() map[string]interface{}

	// Disconnect shuts the session down and terminates the server process.
	Disconnect() error
}
