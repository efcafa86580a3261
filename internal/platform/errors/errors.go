// Package errors provides the error taxonomy shared by the duel packages.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeConfiguration marks invalid game configuration. Fatal to startup only.
	CodeConfiguration Code = "CONFIGURATION"
	// CodeUsage marks an operation invoked out of sequence. Indicates a bug.
	CodeUsage Code = "USAGE"
	// CodeInput marks a recoverable bad selection from a player.
	CodeInput Code = "INPUT"
	// CodeEmptyInput marks an aggregate requested over no values.
	CodeEmptyInput Code = "EMPTY_INPUT"
)

// Recoverable reports whether errors with this code can be retried by the caller.
func (c Code) Recoverable() bool {
	return c == CodeInput
}

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs/telemetry)
	Metadata map[string]string // Additional context for rendering
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata for templating.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrConfiguration = New(CodeConfiguration, "configuration error")
	ErrUsage         = New(CodeUsage, "usage error")
	ErrInput         = New(CodeInput, "input error")
	ErrEmptyInput    = New(CodeEmptyInput, "empty input")
)

// GetCode extracts the code from err, or CodeUnknown.
func GetCode(err error) Code {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return CodeUnknown
		}
		err = u.Unwrap()
	}
	return CodeUnknown
}
