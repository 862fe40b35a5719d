// Package envelope provides a standardized response wrapper for all MCP tool
// responses. Every tool returns a consistent envelope carrying the payload
// plus metadata about truncation and non-fatal warnings, so the calling agent
// can always distinguish an empty result from a failure.
package envelope

import (
	"encoding/json"

	"lspmcp/internal/lsperrors"
)

// CurrentSchemaVersion is the current envelope schema version.
const CurrentSchemaVersion = "1.0"

// Truncation describes result trimming applied by a max_items bound.
type Truncation struct {
	IsTruncated bool   `json:"isTruncated"`
	Shown       int    `json:"shown,omitempty"`  // items returned
	Total       int    `json:"total,omitempty"`  // total available
	Reason      string `json:"reason,omitempty"` // "max-items"
}

// Meta holds response metadata.
type Meta struct {
	Truncation *Truncation `json:"truncation,omitempty"`
	SessionID  string      `json:"sessionId,omitempty"`
	DurationMs int64       `json:"durationMs,omitempty"`
}

// Warning represents a non-fatal issue.
type Warning struct {
	Code    string `json:"code,omitempty"` // machine-readable code
	Message string `json:"message"`        // human-readable message
}

// ErrorInfo describes a failed tool call.
type ErrorInfo struct {
	Code    lsperrors.ErrorCode `json:"code"`
	Kind    lsperrors.Kind      `json:"kind"`
	Message string              `json:"message"`
	Hint    string              `json:"hint,omitempty"`
}

// Response is the standard envelope for all MCP tool responses.
type Response struct {
	SchemaVersion string      `json:"schemaVersion"`
	Data          interface{} `json:"data,omitempty"`
	Meta          *Meta       `json:"meta,omitempty"`
	Warnings      []Warning   `json:"warnings,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
}

// JSON serializes the response with indentation for agent readability.
func (r *Response) JSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// IsError reports whether the envelope describes a failure.
func (r *Response) IsError() bool {
	return r.Error != nil
}
