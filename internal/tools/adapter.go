// Package tools declares the MCP tool surface: seven operations that
// validate their inputs, forward one call to the language-server client and
// wrap the outcome in the response envelope. No results are cached and no
// ranking is applied; ordering is whatever the server returned.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"lspmcp/internal/config"
	"lspmcp/internal/envelope"
	"lspmcp/internal/logging"
	"lspmcp/internal/lsperrors"
	"lspmcp/internal/paths"
	"lspmcp/internal/session"
)

// Adapter holds the dependencies shared by all tool handlers.
type Adapter struct {
	cfg      *config.Config
	sessions *session.Manager
	log      *logging.Logger
}

// New creates the adapter. A nil logger discards output.
func New(cfg *config.Config, sessions *session.Manager, log *logging.Logger) *Adapter {
	if log == nil {
		log = logging.Discard()
	}
	return &Adapter{cfg: cfg, sessions: sessions, log: log}
}

// Register adds all seven tools to the MCP server.
func (a *Adapter) Register(s *server.MCPServer) {
	s.AddTool(initTool(), a.handleInit)
	s.AddTool(definitionTool(), a.handleDefinition)
	s.AddTool(referencesTool(), a.handleReferences)
	s.AddTool(outlineTool(), a.handleOutline)
	s.AddTool(hoverTool(), a.handleHover)
	s.AddTool(searchTool(), a.handleSearch)
	s.AddTool(shutdownTool(), a.handleShutdown)
}

// respond serializes an envelope into a tool result. Error envelopes are
// flagged as tool errors so the agent sees the failure; the Go error stays
// nil either way because the call itself was handled.
func (a *Adapter) respond(resp *envelope.Response) (*mcp.CallToolResult, error) {
	out, err := resp.JSON()
	if err != nil {
		return mcp.NewToolResultError("failed to encode response: " + err.Error()), nil
	}
	if resp.IsError() {
		return mcp.NewToolResultError(out), nil
	}
	return mcp.NewToolResultText(out), nil
}

// fail wraps an error into a failure envelope carrying its code and hint.
func (a *Adapter) fail(err error) (*mcp.CallToolResult, error) {
	fields := logging.Fields{
		"code":  string(lsperrors.CodeOf(err)),
		"error": err.Error(),
	}
	// Agents often call query tools before initializing; a missing session
	// is routine.
	if lsperrors.HasCode(err, lsperrors.NoActiveSession) {
		a.log.Debug("tool call failed", fields)
	} else {
		a.log.Warn("tool call failed", fields)
	}
	return a.respond(envelope.FromError(err))
}

// sessionFile checks the shared preconditions of the per-file tools: an
// active session, and a file that exists under the workspace. The session
// check comes first so that no request reaches the server without one.
func (a *Adapter) sessionFile(requestPath string) (*session.Session, string, error) {
	s, err := a.sessions.Current()
	if err != nil {
		return nil, "", err
	}

	abs := paths.Resolve(s.WorkspaceRoot, requestPath)
	if !paths.IsWithinWorkspace(abs, s.WorkspaceRoot) {
		return nil, "", lsperrors.Newf(lsperrors.InvalidArgument,
			"file %s is outside the workspace", abs)
	}
	if !paths.Exists(abs) {
		return nil, "", lsperrors.Newf(lsperrors.FileNotFound,
			"file %s does not exist", abs)
	}
	return s, abs, nil
}

// boundedMaxItems clamps a requested cap to the configured maximum.
// Negative values are rejected by callers before reaching here.
func (a *Adapter) boundedMaxItems(requested int) (capped int, clamped bool) {
	if requested > a.cfg.Limits.MaxMaxItems {
		return a.cfg.Limits.MaxMaxItems, true
	}
	return requested, false
}

// displayPath reports a location path relative to the workspace when it is
// inside it, absolute otherwise.
func displayPath(workspaceRoot, p string) string {
	if !paths.IsWithinWorkspace(p, workspaceRoot) {
		return p
	}
	rel, err := paths.Canonicalize(p, workspaceRoot)
	if err != nil {
		return p
	}
	return rel
}
