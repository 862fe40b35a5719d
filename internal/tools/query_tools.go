package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"lspmcp/internal/envelope"
	"lspmcp/internal/lsperrors"
	"lspmcp/lsap"
)

// locationOut is one resolved location in a tool response.
type locationOut struct {
	Path    string      `json:"path"`
	Range   lsap.Range  `json:"range"`
	Snippet *snippetOut `json:"snippet,omitempty"`
}

// locator builds the symbol locator shared by the position-anchored tools.
// An explicit line/character pair wins over a symbol name.
func locator(request mcp.CallToolRequest) (lsap.Locator, error) {
	symbol := request.GetString("symbol_name", "")
	line := request.GetInt("line", -1)
	character := request.GetInt("character", -1)

	if line >= 0 && character >= 0 {
		return lsap.Locator{
			Symbol:   symbol,
			Position: &lsap.Position{Line: line, Character: character},
		}, nil
	}
	if symbol == "" {
		return lsap.Locator{}, lsperrors.New(lsperrors.InvalidArgument,
			"either symbol_name or line and character must be given", nil)
	}
	return lsap.Locator{Symbol: symbol}, nil
}

func definitionTool() mcp.Tool {
	return mcp.NewTool("get_definition",
		mcp.WithDescription("Resolve where a symbol is defined. "+
			"An empty result means the symbol could not be resolved, not an error."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File containing the symbol, absolute or workspace-relative")),
		mcp.WithString("symbol_name",
			mcp.Description("Symbol to resolve; dotted paths like User.validate match nested symbols")),
		mcp.WithNumber("line",
			mcp.Description("Zero-based line anchor, used with character instead of symbol_name")),
		mcp.WithNumber("character",
			mcp.Description("Zero-based character anchor")),
		mcp.WithString("mode",
			mcp.Description("definition, declaration or type_definition (default definition)")),
		mcp.WithBoolean("include_code",
			mcp.Description("Attach a source snippet per location")),
		mcp.WithNumber("context_lines",
			mcp.Description("Lines of surrounding source in each snippet")),
	)
}

func (a *Adapter) handleDefinition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	filePath, err := request.RequireString("file_path")
	if err != nil {
		return a.fail(lsperrors.New(lsperrors.InvalidArgument, err.Error(), nil))
	}
	loc, err := locator(request)
	if err != nil {
		return a.fail(err)
	}
	mode := lsap.Mode(request.GetString("mode", string(lsap.ModeDefinition)))
	if !mode.IsNavigation() {
		return a.fail(lsperrors.Newf(lsperrors.InvalidArgument,
			"mode must be definition, declaration or type_definition, got %q", mode))
	}

	s, abs, err := a.sessionFile(filePath)
	if err != nil {
		return a.fail(err)
	}

	locations, err := s.Client.Definition(ctx, abs, loc, mode)
	if err != nil {
		return a.fail(err)
	}

	var snippets *snippetLoader
	if request.GetBool("include_code", false) {
		snippets = newSnippetLoader(request.GetInt("context_lines", a.cfg.Limits.DefaultContextLines))
	}

	resp := envelope.New().
		Data(a.locationsOut(s.WorkspaceRoot, locations, snippets)).
		Session(s.ID).
		Duration(time.Since(start).Milliseconds()).
		Build()
	return a.respond(resp)
}

func referencesTool() mcp.Tool {
	return mcp.NewTool("find_references",
		mcp.WithDescription("Find usage sites of a symbol. Results keep the order the "+
			"language server returned them in and are capped by max_items."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File containing the symbol, absolute or workspace-relative")),
		mcp.WithString("symbol_name",
			mcp.Description("Symbol to look up; dotted paths match nested symbols")),
		mcp.WithNumber("line",
			mcp.Description("Zero-based line anchor, used with character instead of symbol_name")),
		mcp.WithNumber("character",
			mcp.Description("Zero-based character anchor")),
		mcp.WithString("mode",
			mcp.Description("references or implementations (default references)")),
		mcp.WithNumber("max_items",
			mcp.Description("Maximum number of results; exceeding results are truncated, not an error")),
		mcp.WithNumber("context_lines",
			mcp.Description("Lines of surrounding source attached per result; 0 disables snippets")),
	)
}

func (a *Adapter) handleReferences(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	filePath, err := request.RequireString("file_path")
	if err != nil {
		return a.fail(lsperrors.New(lsperrors.InvalidArgument, err.Error(), nil))
	}
	loc, err := locator(request)
	if err != nil {
		return a.fail(err)
	}
	mode := lsap.Mode(request.GetString("mode", string(lsap.ModeReferences)))
	if !mode.IsUsage() {
		return a.fail(lsperrors.Newf(lsperrors.InvalidArgument,
			"mode must be references or implementations, got %q", mode))
	}
	maxItems := request.GetInt("max_items", a.cfg.Limits.DefaultMaxItems)
	if maxItems < 0 {
		return a.fail(lsperrors.New(lsperrors.InvalidArgument, "max_items must not be negative", nil))
	}
	maxItems, clamped := a.boundedMaxItems(maxItems)

	s, abs, err := a.sessionFile(filePath)
	if err != nil {
		return a.fail(err)
	}

	// Fetch unbounded and cut here so the truncation meta carries the
	// real total.
	locations, err := s.Client.References(ctx, abs, loc, mode, -1)
	if err != nil {
		return a.fail(err)
	}
	total := len(locations)
	if total > maxItems {
		locations = locations[:maxItems]
	}

	contextLines := request.GetInt("context_lines", a.cfg.Limits.DefaultContextLines)
	var snippets *snippetLoader
	if contextLines > 0 {
		snippets = newSnippetLoader(contextLines)
	}

	b := envelope.New().
		Data(a.locationsOut(s.WorkspaceRoot, locations, snippets)).
		Session(s.ID).
		Duration(time.Since(start).Milliseconds()).
		Truncated(len(locations), total)
	if clamped {
		b.Warning("MAX_ITEMS_CLAMPED", "max_items reduced to the configured maximum")
	}
	return a.respond(b.Build())
}

func (a *Adapter) locationsOut(workspaceRoot string, locations []lsap.Location, snippets *snippetLoader) []locationOut {
	out := make([]locationOut, 0, len(locations))
	for _, l := range locations {
		lo := locationOut{
			Path:  displayPath(workspaceRoot, l.Path),
			Range: l.Range,
		}
		if snippets != nil {
			lo.Snippet = snippets.extract(l.Path, l.Range)
		}
		out = append(out, lo)
	}
	return out
}

func outlineTool() mcp.Tool {
	return mcp.NewTool("get_outline",
		mcp.WithDescription("Return the hierarchical symbol tree of one file. "+
			"The full outline is always returned, with no truncation."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File to outline, absolute or workspace-relative")),
	)
}

type outlineResult struct {
	Path    string             `json:"path"`
	Symbols []lsap.SymbolEntry `json:"symbols"`
}

func (a *Adapter) handleOutline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	filePath, err := request.RequireString("file_path")
	if err != nil {
		return a.fail(lsperrors.New(lsperrors.InvalidArgument, err.Error(), nil))
	}

	s, abs, err := a.sessionFile(filePath)
	if err != nil {
		return a.fail(err)
	}

	entries, err := s.Client.Outline(ctx, abs)
	if err != nil {
		return a.fail(err)
	}
	if entries == nil {
		entries = []lsap.SymbolEntry{}
	}

	resp := envelope.New().
		Data(outlineResult{
			Path:    displayPath(s.WorkspaceRoot, abs),
			Symbols: entries,
		}).
		Session(s.ID).
		Duration(time.Since(start).Milliseconds()).
		Build()
	return a.respond(resp)
}

func hoverTool() mcp.Tool {
	return mcp.NewTool("get_hover_info",
		mcp.WithDescription("Return documentation and type information for a symbol. "+
			"A server with no hover data produces an empty success, not an error."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("File containing the symbol, absolute or workspace-relative")),
		mcp.WithString("symbol_name",
			mcp.Description("Symbol to document; dotted paths match nested symbols")),
		mcp.WithNumber("line",
			mcp.Description("Zero-based line anchor, used with character instead of symbol_name")),
		mcp.WithNumber("character",
			mcp.Description("Zero-based character anchor")),
	)
}

type hoverResult struct {
	Found    bool        `json:"found"`
	Contents string      `json:"contents,omitempty"`
	Range    *lsap.Range `json:"range,omitempty"`
}

func (a *Adapter) handleHover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	filePath, err := request.RequireString("file_path")
	if err != nil {
		return a.fail(lsperrors.New(lsperrors.InvalidArgument, err.Error(), nil))
	}
	loc, err := locator(request)
	if err != nil {
		return a.fail(err)
	}

	s, abs, err := a.sessionFile(filePath)
	if err != nil {
		return a.fail(err)
	}

	info, err := s.Client.Hover(ctx, abs, loc)
	if err != nil {
		return a.fail(err)
	}

	data := hoverResult{}
	if info != nil {
		data.Found = true
		data.Contents = info.Contents
		data.Range = info.Range
	}

	resp := envelope.New().
		Data(data).
		Session(s.ID).
		Duration(time.Since(start).Milliseconds()).
		Build()
	return a.respond(resp)
}

func searchTool() mcp.Tool {
	return mcp.NewTool("search_workspace",
		mcp.WithDescription("Search symbols across the whole workspace. Ordering follows "+
			"the language server's own relevance ranking."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Symbol name or fragment to search for")),
		mcp.WithString("file_pattern",
			mcp.Description("Glob filter on result file paths, e.g. *.py or src/**/*.ts")),
		mcp.WithNumber("max_items",
			mcp.Description("Maximum number of results; exceeding results are truncated, not an error")),
	)
}

type matchOut struct {
	Name          string     `json:"name"`
	Kind          string     `json:"kind"`
	ContainerName string     `json:"containerName,omitempty"`
	Path          string     `json:"path"`
	Range         lsap.Range `json:"range"`
}

func (a *Adapter) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	query, err := request.RequireString("query")
	if err != nil {
		return a.fail(lsperrors.New(lsperrors.InvalidArgument, err.Error(), nil))
	}
	maxItems := request.GetInt("max_items", a.cfg.Limits.DefaultMaxItems)
	if maxItems < 0 {
		return a.fail(lsperrors.New(lsperrors.InvalidArgument, "max_items must not be negative", nil))
	}
	maxItems, clamped := a.boundedMaxItems(maxItems)

	s, err := a.sessions.Current()
	if err != nil {
		return a.fail(err)
	}

	matches, err := s.Client.WorkspaceSymbols(ctx, query, request.GetString("file_pattern", ""), -1)
	if err != nil {
		return a.fail(err)
	}
	total := len(matches)
	if total > maxItems {
		matches = matches[:maxItems]
	}

	out := make([]matchOut, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchOut{
			Name:          m.Name,
			Kind:          m.Kind,
			ContainerName: m.ContainerName,
			Path:          displayPath(s.WorkspaceRoot, m.Location.Path),
			Range:         m.Location.Range,
		})
	}

	b := envelope.New().
		Data(out).
		Session(s.ID).
		Duration(time.Since(start).Milliseconds()).
		Truncated(len(out), total)
	if clamped {
		b.Warning("MAX_ITEMS_CLAMPED", "max_items reduced to the configured maximum")
	}
	return a.respond(b.Build())
}
