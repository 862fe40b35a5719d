// Package lsperrors defines the stable error codes returned by lspmcp tools.
//
// Errors fall into three kinds: precondition errors are rejected before any
// language-server call, upstream errors come from the language server or its
// transport, and internal errors are bugs in this layer. Empty results are
// not errors at all and never produce a code from this package.
package lsperrors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NoActiveSession indicates a tool was called before init_lsp_client
	NoActiveSession ErrorCode = "NO_ACTIVE_SESSION"
	// SessionActive indicates init_lsp_client was called while a session exists
	SessionActive ErrorCode = "SESSION_ACTIVE"
	// UnsupportedLanguage indicates the language tag is not in the language table
	UnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	// WorkspaceNotFound indicates the workspace root directory does not exist
	WorkspaceNotFound ErrorCode = "WORKSPACE_NOT_FOUND"
	// FileNotFound indicates the requested file does not exist in the workspace
	FileNotFound ErrorCode = "FILE_NOT_FOUND"
	// InvalidArgument indicates a tool argument failed validation
	InvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ServerUnreachable indicates the language server failed to start or connect
	ServerUnreachable ErrorCode = "SERVER_UNREACHABLE"
	// UpstreamError indicates the language server returned a protocol-level error
	UpstreamError ErrorCode = "UPSTREAM_ERROR"
	// Cancelled indicates the host transport cancelled the call
	Cancelled ErrorCode = "CANCELLED"
	// InternalError indicates an unexpected error in this layer
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Kind classifies an error code per the adapter's taxonomy.
type Kind string

const (
	// KindPrecondition errors are rejected before any language-server call
	KindPrecondition Kind = "precondition"
	// KindUpstream errors originate in the language server or its transport
	KindUpstream Kind = "upstream"
	// KindInternal errors are unexpected failures in the adapter itself
	KindInternal Kind = "internal"
)

var codeKinds = map[ErrorCode]Kind{
	NoActiveSession:     KindPrecondition,
	SessionActive:       KindPrecondition,
	UnsupportedLanguage: KindPrecondition,
	WorkspaceNotFound:   KindPrecondition,
	FileNotFound:        KindPrecondition,
	InvalidArgument:     KindPrecondition,
	ServerUnreachable:   KindUpstream,
	UpstreamError:       KindUpstream,
	Cancelled:           KindUpstream,
	InternalError:       KindInternal,
}

// KindOf returns the taxonomy kind for a code.
func KindOf(code ErrorCode) Kind {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	return KindInternal
}

// Error represents an lspmcp failure with a stable code and optional hint.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Hint    string    `json:"hint,omitempty"`
	cause   error     // underlying error, not exported to JSON
}

// New creates a new Error
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Hint:    defaultHints[code],
		cause:   cause,
	}
}

// Newf creates a new Error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the taxonomy kind of this error.
func (e *Error) Kind() Kind {
	return KindOf(e.Code)
}

// WithHint overrides the default hint.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// defaultHints maps error codes to recovery guidance for the calling agent.
var defaultHints = map[ErrorCode]string{
	NoActiveSession:     "Call init_lsp_client with workspace_root, language and server_command first",
	SessionActive:       "Call shutdown_lsp_client first, or pass force:true to replace the session",
	UnsupportedLanguage: "Use one of: python, typescript, javascript, rust, go, java, cpp, c",
	ServerUnreachable:   "Check that server_command is installed and on PATH",
}

// CodeOf extracts the ErrorCode from an error chain, or InternalError if the
// error does not carry one.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalError
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
