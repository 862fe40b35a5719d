package tools

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"lspmcp/internal/envelope"
	"lspmcp/internal/languages"
	"lspmcp/internal/logging"
	"lspmcp/internal/lsperrors"
	"lspmcp/internal/paths"
	"lspmcp/lsap"
)

func initTool() mcp.Tool {
	return mcp.NewTool("init_lsp_client",
		mcp.WithDescription("Start a language server for a workspace and open a session. "+
			"All other tools require an active session. Supported languages: "+
			strings.Join(languages.Tags(), ", ")+"."),
		mcp.WithString("workspace_root",
			mcp.Required(),
			mcp.Description("Absolute path of the workspace directory")),
		mcp.WithString("language",
			mcp.Required(),
			mcp.Description("Language tag, e.g. python or typescript")),
		mcp.WithString("server_command",
			mcp.Description("Language server executable; defaults to the configured command for the language")),
		mcp.WithArray("server_args",
			mcp.Description("Arguments passed to the server verbatim"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithBoolean("force",
			mcp.Description("Replace an already active session instead of failing")),
	)
}

type initResult struct {
	SessionID     string   `json:"sessionId"`
	WorkspaceRoot string   `json:"workspaceRoot"`
	Language      string   `json:"language"`
	ServerCommand string   `json:"serverCommand"`
	ServerArgs    []string `json:"serverArgs,omitempty"`
	Capabilities  []string `json:"capabilities"`
}

func (a *Adapter) handleInit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	workspaceRoot, err := request.RequireString("workspace_root")
	if err != nil {
		return a.fail(lsperrors.New(lsperrors.InvalidArgument, err.Error(), nil))
	}
	tag, err := request.RequireString("language")
	if err != nil {
		return a.fail(lsperrors.New(lsperrors.InvalidArgument, err.Error(), nil))
	}

	lang, ok := languages.Lookup(tag)
	if !ok {
		return a.fail(lsperrors.Newf(lsperrors.UnsupportedLanguage,
			"language %q is not supported", tag).
			WithHint("supported languages: " + strings.Join(languages.Tags(), ", ")))
	}

	workspaceRoot, err = filepath.Abs(workspaceRoot)
	if err != nil {
		return a.fail(lsperrors.New(lsperrors.InvalidArgument, "invalid workspace_root", err))
	}
	if !paths.IsDir(workspaceRoot) {
		return a.fail(lsperrors.Newf(lsperrors.WorkspaceNotFound,
			"workspace root %s is not a directory", workspaceRoot))
	}

	command := request.GetString("server_command", "")
	args := request.GetStringSlice("server_args", nil)
	if command == "" {
		sc, ok := a.cfg.Server(lang.Tag)
		if !ok || sc.Command == "" {
			return a.fail(lsperrors.Newf(lsperrors.InvalidArgument,
				"no server_command given and none configured for %s", lang.Tag))
		}
		command = sc.Command
		if args == nil {
			args = sc.Args
		}
	}

	opts := lsap.Options{
		WorkspaceRoot:  workspaceRoot,
		Language:       lang.Tag,
		Command:        command,
		Args:           args,
		RequestTimeout: time.Duration(a.cfg.Session.RequestTimeoutMs) * time.Millisecond,
		Logger:         a.log,
	}

	s, err := a.sessions.Init(ctx, opts, request.GetBool("force", false))
	if err != nil {
		return a.fail(err)
	}

	caps := s.Client.Capabilities()
	advertised := make([]string, 0, len(lang.ExpectedCapabilities))
	var missing []string
	for _, want := range lang.ExpectedCapabilities {
		if capabilityPresent(caps, want) {
			advertised = append(advertised, want)
		} else {
			missing = append(missing, want)
		}
	}

	b := envelope.New().
		Data(initResult{
			SessionID:     s.ID,
			WorkspaceRoot: s.WorkspaceRoot,
			Language:      s.Language,
			ServerCommand: s.Command,
			ServerArgs:    s.Args,
			Capabilities:  advertised,
		}).
		Session(s.ID).
		Duration(time.Since(start).Milliseconds())
	for _, m := range missing {
		b.Warning("MISSING_CAPABILITY", "server does not advertise "+m)
	}

	a.log.Info("session initialized", logging.Fields{
		"session_id": s.ID,
		"language":   s.Language,
	})
	return a.respond(b.Build())
}

// capabilityPresent treats any non-false, non-null value as support; servers
// announce capabilities as booleans or option objects interchangeably.
func capabilityPresent(caps map[string]interface{}, name string) bool {
	v, ok := caps[name]
	if !ok || v == nil {
		return false
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	return true
}

func shutdownTool() mcp.Tool {
	return mcp.NewTool("shutdown_lsp_client",
		mcp.WithDescription("Stop the active language server session. "+
			"Calling this with no active session is a no-op success."),
	)
}

type shutdownResult struct {
	Stopped bool `json:"stopped"`
}

func (a *Adapter) handleShutdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	stopped, err := a.sessions.Shutdown()
	if err != nil {
		// The session is gone either way; report the disconnect problem
		// as a warning, not a failure.
		resp := envelope.New().
			Data(shutdownResult{Stopped: stopped}).
			Duration(time.Since(start).Milliseconds()).
			Warning("UNCLEAN_SHUTDOWN", err.Error()).
			Build()
		return a.respond(resp)
	}

	resp := envelope.New().
		Data(shutdownResult{Stopped: stopped}).
		Duration(time.Since(start).Milliseconds()).
		Build()
	return a.respond(resp)
}
