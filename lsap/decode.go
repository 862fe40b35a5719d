package lsap

import (
	"encoding/json"
	"strings"

	"go.lsp.dev/uri"
)

// Language servers answer the same request with different shapes: Location,
// []Location or []LocationLink for navigation, DocumentSymbol or
// SymbolInformation for outlines, three content variants for hover. The wire
// structs below decode all of them without committing to one, and malformed
// items are skipped rather than failing the whole response.

type wirePosition struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

type wireRange struct {
	Start wirePosition `json:"start"`
	End   wirePosition `json:"end"`
}

func (r wireRange) toRange() Range {
	return Range{
		Start: Position{Line: int(r.Start.Line), Character: int(r.Start.Character)},
		End:   Position{Line: int(r.End.Line), Character: int(r.End.Character)},
	}
}

type wireLocation struct {
	URI   string     `json:"uri"`
	Range *wireRange `json:"range"`

	// LocationLink fields
	TargetURI            string     `json:"targetUri"`
	TargetRange          *wireRange `json:"targetRange"`
	TargetSelectionRange *wireRange `json:"targetSelectionRange"`
}

type wireSymbol struct {
	Name          string `json:"name"`
	Detail        string `json:"detail"`
	Kind          int    `json:"kind"`
	ContainerName string `json:"containerName"`

	// DocumentSymbol fields
	Range          *wireRange   `json:"range"`
	SelectionRange *wireRange   `json:"selectionRange"`
	Children       []wireSymbol `json:"children"`

	// SymbolInformation / WorkspaceSymbol field; range is absent in the
	// uri-only variant some servers return for workspace queries.
	Location *wireLocation `json:"location"`
}

type wireHover struct {
	Contents json.RawMessage `json:"contents"`
	Range    *wireRange      `json:"range"`
}

// pathFromURI converts a file:// URI to a host path, passing through
// anything that is not a file URI.
func pathFromURI(s string) string {
	if !strings.HasPrefix(s, "file://") {
		return s
	}
	return uri.URI(s).Filename()
}

// decodeLocations handles Location | []Location | []LocationLink | null.
func decodeLocations(raw json.RawMessage) []Location {
	items := rawItems(raw)

	locations := make([]Location, 0, len(items))
	for _, item := range items {
		var wl wireLocation
		if err := json.Unmarshal(item, &wl); err != nil {
			continue
		}

		switch {
		case wl.TargetURI != "":
			r := wl.TargetSelectionRange
			if r == nil {
				r = wl.TargetRange
			}
			if r == nil {
				continue
			}
			locations = append(locations, Location{
				Path:  pathFromURI(wl.TargetURI),
				Range: r.toRange(),
			})
		case wl.URI != "" && wl.Range != nil:
			locations = append(locations, Location{
				Path:  pathFromURI(wl.URI),
				Range: wl.Range.toRange(),
			})
		}
	}

	return locations
}

// decodeOutline handles []DocumentSymbol | []SymbolInformation | null,
// producing a tree with nesting paths filled in.
func decodeOutline(raw json.RawMessage) []SymbolEntry {
	items := rawItems(raw)

	entries := make([]SymbolEntry, 0, len(items))
	for _, item := range items {
		var ws wireSymbol
		if err := json.Unmarshal(item, &ws); err != nil {
			continue
		}
		if entry, ok := symbolToEntry(ws, nil); ok {
			entries = append(entries, entry)
		}
	}

	return entries
}

func symbolToEntry(ws wireSymbol, parentPath []string) (SymbolEntry, bool) {
	if ws.Name == "" {
		return SymbolEntry{}, false
	}

	path := append(append([]string{}, parentPath...), ws.Name)
	entry := SymbolEntry{
		Name:   ws.Name,
		Kind:   SymbolKindName(ws.Kind),
		Detail: ws.Detail,
		Path:   path,
	}

	switch {
	case ws.Range != nil:
		// DocumentSymbol: hierarchical, range + selectionRange
		entry.Range = ws.Range.toRange()
		if ws.SelectionRange != nil {
			entry.SelectionRange = ws.SelectionRange.toRange()
		} else {
			entry.SelectionRange = entry.Range
		}
		for _, child := range ws.Children {
			if c, ok := symbolToEntry(child, path); ok {
				entry.Children = append(entry.Children, c)
			}
		}
	case ws.Location != nil && ws.Location.Range != nil:
		// SymbolInformation: flat, location carries the range
		entry.Range = ws.Location.Range.toRange()
		entry.SelectionRange = entry.Range
		if ws.ContainerName != "" {
			entry.Path = append(strings.Split(ws.ContainerName, "."), ws.Name)
		}
	default:
		return SymbolEntry{}, false
	}

	return entry, true
}

// decodeHover handles the hover content union: MarkupContent, a bare
// string, MarkedString with language, or an array of the latter two.
func decodeHover(raw json.RawMessage) *HoverInfo {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var wh wireHover
	if err := json.Unmarshal(raw, &wh); err != nil {
		return nil
	}

	contents := hoverContents(wh.Contents)
	if contents == "" {
		return nil
	}

	info := &HoverInfo{Contents: contents}
	if wh.Range != nil {
		r := wh.Range.toRange()
		info.Range = &r
	}
	return info
}

func hoverContents(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	// Bare string
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	// MarkupContent or MarkedString-with-language
	var obj struct {
		Kind     string `json:"kind"`
		Value    string `json:"value"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Value != "" {
		if obj.Language != "" {
			return "```" + obj.Language + "\n" + obj.Value + "\n```"
		}
		return obj.Value
	}

	// Array of MarkedString
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err == nil {
		sections := make([]string, 0, len(parts))
		for _, p := range parts {
			if section := hoverContents(p); section != "" {
				sections = append(sections, section)
			}
		}
		return strings.Join(sections, "\n\n")
	}

	return ""
}

// decodeMatches handles []SymbolInformation | []WorkspaceSymbol | null.
func decodeMatches(raw json.RawMessage) []Match {
	items := rawItems(raw)

	matches := make([]Match, 0, len(items))
	for _, item := range items {
		var ws wireSymbol
		if err := json.Unmarshal(item, &ws); err != nil {
			continue
		}
		if ws.Name == "" || ws.Location == nil || ws.Location.URI == "" {
			continue
		}

		m := Match{
			Name:          ws.Name,
			Kind:          SymbolKindName(ws.Kind),
			ContainerName: ws.ContainerName,
			Location:      Location{Path: pathFromURI(ws.Location.URI)},
		}
		if ws.Location.Range != nil {
			m.Location.Range = ws.Location.Range.toRange()
		}
		matches = append(matches, m)
	}

	return matches
}

// rawItems normalizes a result into a list of JSON objects: null becomes
// empty, a single object becomes a one-element list.
func rawItems(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return items
	}

	return []json.RawMessage{raw}
}
