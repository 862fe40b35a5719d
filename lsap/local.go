package lsap

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"lspmcp/internal/languages"
	"lspmcp/internal/logging"
	"lspmcp/internal/lsperrors"
)

// localClient talks to a language server spawned as a child process over
// stdio. One client owns one process and one jsonrpc2 connection.
type localClient struct {
	opts    Options
	timeout time.Duration
	log     *logging.Logger

	cmd  *exec.Cmd
	conn jsonrpc2.Conn

	// capabilities as announced in the initialize response
	caps map[string]interface{}

	// opened tracks files already sent via textDocument/didOpen
	mu     sync.Mutex
	opened map[string]bool
}

// stdioPipe joins the child's stdout and stdin into the io.ReadWriteCloser
// that jsonrpc2 streams are built on.
type stdioPipe struct {
	io.ReadCloser
	io.WriteCloser
}

func (p stdioPipe) Close() error {
	werr := p.WriteCloser.Close()
	rerr := p.ReadCloser.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// Connect spawns the language server, performs the initialize handshake and
// returns a ready client. The context bounds the handshake only.
func Connect(ctx context.Context, opts Options) (Client, error) {
	if opts.Command == "" {
		return nil, lsperrors.New(lsperrors.InvalidArgument, "no language server command configured", nil)
	}

	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	cmd := exec.Command(opts.Command, opts.Args...)
	cmd.Dir = opts.WorkspaceRoot

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, lsperrors.New(lsperrors.InternalError, "failed to create stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, lsperrors.New(lsperrors.InternalError, "failed to create stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, lsperrors.New(lsperrors.InternalError, "failed to create stderr pipe", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, lsperrors.Newf(lsperrors.ServerUnreachable,
			"failed to start language server %q: %v", opts.Command, err)
	}

	go drainStderr(stderr, log)

	c := &localClient{
		opts:    opts,
		timeout: timeout,
		log:     log.With(logging.Fields{"language": opts.Language, "server": opts.Command}),
		cmd:     cmd,
		opened:  make(map[string]bool),
	}

	stream := jsonrpc2.NewStream(stdioPipe{ReadCloser: stdout, WriteCloser: stdin})
	c.conn = jsonrpc2.NewConn(stream)
	// The read loop outlives the handshake context; it ends on Disconnect
	// or when the server closes its stdout.
	c.conn.Go(context.Background(), c.handleServerRequest)

	if err := c.initialize(ctx); err != nil {
		c.teardown()
		return nil, err
	}

	c.log.Info("language server ready", logging.Fields{"workspace": opts.WorkspaceRoot})
	return c, nil
}

// drainStderr forwards server diagnostics to the debug log so they never
// interleave with protocol traffic.
func drainStderr(r io.Reader, log *logging.Logger) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		log.Debug("server stderr", logging.Fields{"line": scanner.Text()})
	}
}

// handleServerRequest answers the reverse-direction traffic servers send
// during indexing. Everything gets an empty but valid reply; notifications
// are dropped.
func (c *localClient) handleServerRequest(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case "workspace/configuration":
		var params struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(req.Params(), &params); err == nil {
			return reply(ctx, make([]interface{}, len(params.Items)), nil)
		}
		return reply(ctx, []interface{}{}, nil)
	case "window/workDoneProgress/create", "client/registerCapability", "client/unregisterCapability":
		return reply(ctx, nil, nil)
	case "window/showMessageRequest":
		return reply(ctx, nil, nil)
	case "workspace/applyEdit":
		return reply(ctx, map[string]interface{}{"applied": false}, nil)
	default:
		// Notifications (publishDiagnostics, logMessage, $/progress) and
		// anything unknown.
		if _, ok := req.(*jsonrpc2.Call); ok {
			return reply(ctx, nil, nil)
		}
		return nil
	}
}

func (c *localClient) initialize(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rootURI := uri.File(c.opts.WorkspaceRoot)
	params := protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		RootURI:   rootURI,
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				Hover: &protocol.HoverTextDocumentClientCapabilities{
					ContentFormat: []protocol.MarkupKind{protocol.Markdown, protocol.PlainText},
				},
				DocumentSymbol: &protocol.DocumentSymbolClientCapabilities{
					HierarchicalDocumentSymbolSupport: true,
				},
			},
		},
		WorkspaceFolders: []protocol.WorkspaceFolder{
			{URI: string(rootURI), Name: filepath.Base(c.opts.WorkspaceRoot)},
		},
	}

	var result struct {
		Capabilities map[string]interface{} `json:"capabilities"`
	}
	if _, err := c.conn.Call(ctx, protocol.MethodInitialize, &params, &result); err != nil {
		return c.mapError(err, protocol.MethodInitialize)
	}
	c.caps = result.Capabilities

	if err := c.conn.Notify(ctx, protocol.MethodInitialized, &protocol.InitializedParams{}); err != nil {
		return c.mapError(err, protocol.MethodInitialized)
	}
	return nil
}

// ensureOpen sends textDocument/didOpen the first time a file is queried.
// Servers will not answer document requests for files they have not seen.
func (c *localClient) ensureOpen(ctx context.Context, file string) error {
	c.mu.Lock()
	already := c.opened[file]
	if !already {
		c.opened[file] = true
	}
	c.mu.Unlock()
	if already {
		return nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		c.mu.Lock()
		delete(c.opened, file)
		c.mu.Unlock()
		return lsperrors.Newf(lsperrors.FileNotFound, "cannot read %s: %v", file, err)
	}

	params := protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri.File(file),
			LanguageID: protocol.LanguageIdentifier(languages.LSPIDForFile(file, c.opts.Language)),
			Version:    1,
			Text:       string(data),
		},
	}
	if err := c.conn.Notify(ctx, protocol.MethodTextDocumentDidOpen, &params); err != nil {
		return c.mapError(err, protocol.MethodTextDocumentDidOpen)
	}
	return nil
}

// call issues one request under the per-request timeout and returns the raw
// result for tolerant decoding.
func (c *localClient) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var raw json.RawMessage
	_, err := c.conn.Call(ctx, method, params, &raw)
	if err != nil {
		return nil, c.mapError(err, method)
	}
	c.log.Debug("request completed", logging.Fields{
		"method":      method,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return raw, nil
}

// mapError folds transport and server failures into the error taxonomy.
func (c *localClient) mapError(err error, method string) error {
	switch {
	case errors.Is(err, context.Canceled):
		return lsperrors.New(lsperrors.Cancelled, "request cancelled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return lsperrors.Newf(lsperrors.UpstreamError,
			"language server did not answer %s within %s", method, c.timeout)
	default:
		return lsperrors.Newf(lsperrors.UpstreamError,
			"language server request %s failed: %v", method, err)
	}
}

var navigationMethods = map[Mode]string{
	ModeDefinition:     protocol.MethodTextDocumentDefinition,
	ModeDeclaration:    protocol.MethodTextDocumentDeclaration,
	ModeTypeDefinition: protocol.MethodTextDocumentTypeDefinition,
}

func (c *localClient) Definition(ctx context.Context, file string, loc Locator, mode Mode) ([]Location, error) {
	method, ok := navigationMethods[mode]
	if !ok {
		return nil, lsperrors.Newf(lsperrors.InvalidArgument, "invalid navigation mode %q", mode)
	}

	if err := c.ensureOpen(ctx, file); err != nil {
		return nil, err
	}
	pos, found, err := c.resolveLocator(ctx, file, loc)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	params := protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri.File(file)},
		Position:     protocol.Position{Line: uint32(pos.Line), Character: uint32(pos.Character)},
	}
	raw, err := c.call(ctx, method, &params)
	if err != nil {
		return nil, err
	}
	return decodeLocations(raw), nil
}

func (c *localClient) References(ctx context.Context, file string, loc Locator, mode Mode, limit int) ([]Location, error) {
	if !mode.IsUsage() {
		return nil, lsperrors.Newf(lsperrors.InvalidArgument, "invalid usage mode %q", mode)
	}

	if err := c.ensureOpen(ctx, file); err != nil {
		return nil, err
	}
	pos, found, err := c.resolveLocator(ctx, file, loc)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	docPos := protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri.File(file)},
		Position:     protocol.Position{Line: uint32(pos.Line), Character: uint32(pos.Character)},
	}

	var raw json.RawMessage
	if mode == ModeReferences {
		params := protocol.ReferenceParams{
			TextDocumentPositionParams: docPos,
			Context:                    protocol.ReferenceContext{IncludeDeclaration: true},
		}
		raw, err = c.call(ctx, protocol.MethodTextDocumentReferences, &params)
	} else {
		raw, err = c.call(ctx, protocol.MethodTextDocumentImplementation, &docPos)
	}
	if err != nil {
		return nil, err
	}

	locations := decodeLocations(raw)
	if limit >= 0 && len(locations) > limit {
		locations = locations[:limit]
	}
	return locations, nil
}

func (c *localClient) Outline(ctx context.Context, file string) ([]SymbolEntry, error) {
	if err := c.ensureOpen(ctx, file); err != nil {
		return nil, err
	}

	params := protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri.File(file)},
	}
	raw, err := c.call(ctx, protocol.MethodTextDocumentDocumentSymbol, &params)
	if err != nil {
		return nil, err
	}
	return decodeOutline(raw), nil
}

func (c *localClient) Hover(ctx context.Context, file string, loc Locator) (*HoverInfo, error) {
	if err := c.ensureOpen(ctx, file); err != nil {
		return nil, err
	}
	pos, found, err := c.resolveLocator(ctx, file, loc)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	params := protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri.File(file)},
			Position:     protocol.Position{Line: uint32(pos.Line), Character: uint32(pos.Character)},
		},
	}
	raw, err := c.call(ctx, protocol.MethodTextDocumentHover, &params)
	if err != nil {
		return nil, err
	}
	return decodeHover(raw), nil
}

func (c *localClient) WorkspaceSymbols(ctx context.Context, query, pattern string, limit int) ([]Match, error) {
	params := protocol.WorkspaceSymbolParams{Query: query}
	raw, err := c.call(ctx, protocol.MethodWorkspaceSymbol, &params)
	if err != nil {
		return nil, err
	}

	matches := decodeMatches(raw)
	if pattern != "" {
		matches = filterByPattern(matches, pattern, c.opts.WorkspaceRoot)
	}
	if limit >= 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// filterByPattern keeps matches whose file path satisfies a glob. Patterns
// with a slash match against the workspace-relative path, others against
// the base name. A "**" segment matches any number of path segments, so
// "src/**/*.ts" covers arbitrarily nested files under src.
func filterByPattern(matches []Match, pattern, root string) []Match {
	kept := matches[:0:0]
	for _, m := range matches {
		if matchesPattern(m.Location.Path, pattern, root) {
			kept = append(kept, m)
		}
	}
	return kept
}

func matchesPattern(file, pattern, root string) bool {
	if !strings.Contains(pattern, "/") {
		ok, err := path.Match(pattern, filepath.Base(file))
		return err == nil && ok
	}

	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	rel = filepath.ToSlash(rel)

	return matchSegments(strings.Split(pattern, "/"), strings.Split(rel, "/"))
}

// matchSegments matches a glob pattern and a path segment by segment. A
// "**" pattern segment consumes zero or more path segments; any other
// segment must match exactly one via path.Match.
func matchSegments(pattern, name []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			if matchSegments(pattern[1:], name) {
				return true
			}
			if len(name) == 0 {
				return false
			}
			name = name[1:]
			continue
		}
		if len(name) == 0 {
			return false
		}
		if ok, err := path.Match(pattern[0], name[0]); err != nil || !ok {
			return false
		}
		pattern = pattern[1:]
		name = name[1:]
	}
	return len(name) == 0
}

func (c *localClient) Capabilities() map[string]interface{} {
	return c.caps
}

// Disconnect runs the shutdown/exit sequence and reaps the process. A
// server that ignores the sequence is killed.
func (c *localClient) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var discard json.RawMessage
	if _, err := c.conn.Call(ctx, protocol.MethodShutdown, nil, &discard); err != nil {
		c.log.Debug("shutdown request failed", logging.Fields{"error": err.Error()})
	}
	if err := c.conn.Notify(ctx, protocol.MethodExit, nil); err != nil {
		c.log.Debug("exit notification failed", logging.Fields{"error": err.Error()})
	}

	c.teardown()
	c.log.Info("language server stopped", nil)
	return nil
}

func (c *localClient) teardown() {
	c.conn.Close()

	if c.cmd != nil && c.cmd.Process != nil {
		done := make(chan error, 1)
		go func() { done <- c.cmd.Wait() }()
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			c.cmd.Process.Kill()
			<-done
		}
	}
}
