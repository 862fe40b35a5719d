package envelope

import (
	"errors"

	"lspmcp/internal/lsperrors"
)

// Builder constructs Response envelopes using a fluent API.
type Builder struct {
	resp *Response
}

// New creates a new envelope builder.
func New() *Builder {
	return &Builder{
		resp: &Response{
			SchemaVersion: CurrentSchemaVersion,
		},
	}
}

// Data sets the tool-specific payload.
func (b *Builder) Data(data interface{}) *Builder {
	b.resp.Data = data
	return b
}

// Session tags the response with the session it was served from.
func (b *Builder) Session(id string) *Builder {
	if id != "" {
		b.meta().SessionID = id
	}
	return b
}

// Duration records how long the underlying call took.
func (b *Builder) Duration(ms int64) *Builder {
	b.meta().DurationMs = ms
	return b
}

// Truncated records that a max_items bound trimmed the result.
// Calling it with shown == total records an untruncated count.
func (b *Builder) Truncated(shown, total int) *Builder {
	t := &Truncation{
		IsTruncated: shown < total,
		Shown:       shown,
		Total:       total,
	}
	if t.IsTruncated {
		t.Reason = "max-items"
	}
	b.meta().Truncation = t
	return b
}

// Warning adds a non-fatal warning message.
func (b *Builder) Warning(code, msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Code: code, Message: msg})
	return b
}

// Build returns the envelope response.
func (b *Builder) Build() *Response {
	return b.resp
}

func (b *Builder) meta() *Meta {
	if b.resp.Meta == nil {
		b.resp.Meta = &Meta{}
	}
	return b.resp.Meta
}

// FromError wraps a failure in an envelope, preserving the stable code, kind
// and hint so the agent can decide whether to retry or reinitialize.
func FromError(err error) *Response {
	info := &ErrorInfo{
		Code:    lsperrors.InternalError,
		Kind:    lsperrors.KindInternal,
		Message: err.Error(),
	}

	var le *lsperrors.Error
	if errors.As(err, &le) {
		info.Code = le.Code
		info.Kind = le.Kind()
		info.Message = le.Message
		info.Hint = le.Hint
	}

	return &Response{
		SchemaVersion: CurrentSchemaVersion,
		Error:         info,
	}
}
