// Package errors provides coded error types with context for sobel.
// Errors carry a suggestion, a context map, the exit status of a failed
// child process and a lightweight stack trace to improve diagnostics.
package errors

import (
	stdErrors "errors"
	"runtime"
	"strings"
)

// ErrorCode categorizes errors for handling
type ErrorCode string

const (
	// Child process errors
	ErrExternalProcessFailed ErrorCode = "EXTERNAL_PROCESS_FAILED"
	ErrProcessStart          ErrorCode = "PROCESS_START_FAILED"

	// Usage errors
	ErrInvalidArgs ErrorCode = "INVALID_ARGS"

	// Filesystem errors
	ErrFileNotFound     ErrorCode = "FILE_NOT_FOUND"
	ErrPermissionDenied ErrorCode = "PERMISSION_DENIED"

	// Configuration errors
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Unknown errors
	ErrUnknown ErrorCode = "UNKNOWN"
)

// StackFrame represents a single stack frame
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// SobelError is the base error type with rich context
type SobelError struct {
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Details    string            `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      error             `json:"-"`
	Context    map[string]string `json:"context,omitempty"`
	ExitCode   int               `json:"exit_code,omitempty"`
	Stack      []StackFrame      `json:"stack,omitempty"`
}

// Error implements the error interface
func (e *SobelError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}
	if e.Cause != nil {
		sb.WriteString("\nCaused by: ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *SobelError) Unwrap() error { return e.Cause }

// WithSuggestion adds a suggestion for fixing the error
func (e *SobelError) WithSuggestion(suggestion string) *SobelError {
	e.Suggestion = suggestion
	return e
}

// WithContext adds contextual information
func (e *SobelError) WithContext(key, value string) *SobelError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithCause wraps another error
func (e *SobelError) WithCause(cause error) *SobelError {
	e.Cause = cause
	return e
}

// WithDetails adds detailed information
func (e *SobelError) WithDetails(details string) *SobelError {
	e.Details = details
	return e
}

// WithExitCode records the exit status of a child process
func (e *SobelError) WithExitCode(code int) *SobelError {
	e.ExitCode = code
	return e
}

// New creates a new SobelError
func New(code ErrorCode, message string) *SobelError {
	err := &SobelError{
		Code:    code,
		Message: message,
		Context: make(map[string]string),
	}
	err.captureStack()
	err.Suggestion = getDefaultSuggestion(code)
	return err
}

// Wrap wraps a standard error with SobelError
func Wrap(err error, code ErrorCode, message string) *SobelError {
	if err == nil {
		return nil
	}
	if sobelErr, ok := err.(*SobelError); ok {
		// Prepend message context
		if message != "" {
			sobelErr.Message = message + ": " + sobelErr.Message
		}
		return sobelErr
	}
	return New(code, message).WithCause(err)
}

// CodeOf returns the code of the first SobelError in err's chain, or ErrUnknown.
func CodeOf(err error) ErrorCode {
	var sobelErr *SobelError
	if stdErrors.As(err, &sobelErr) {
		return sobelErr.Code
	}
	return ErrUnknown
}

// captureStack captures the current stack trace
func (e *SobelError) captureStack() {
	const maxFrames = 10
	pc := make([]uintptr, maxFrames)
	n := runtime.Callers(3, pc) // Skip runtime.Callers, captureStack, New/Wrap
	frames := runtime.CallersFrames(pc[:n])
	for {
		frame, more := frames.Next()
		if strings.Contains(frame.File, "runtime/") || strings.Contains(frame.File, "testing/") {
			if !more {
				break
			}
			continue
		}
		e.Stack = append(e.Stack, StackFrame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more {
			break
		}
	}
}

// getDefaultSuggestion provides default fix suggestions
func getDefaultSuggestion(code ErrorCode) string {
	suggestions := map[ErrorCode]string{
		ErrExternalProcessFailed: "Check the edge detector output above; rerun with --verbose for its stderr",
		ErrProcessStart:          "Check that the edge detector exists and is executable: sobel doctor",
		ErrInvalidArgs:           "Usage: sobel process <input> <output>",
		ErrFileNotFound:          "Check the path and try again",
		ErrPermissionDenied:      "Check file permissions: chmod +x ./edge.ml",
		ErrInvalidConfig:         "Fix config: edit ~/.sobel.json",
	}
	if s, ok := suggestions[code]; ok {
		return s
	}
	return "Run 'sobel doctor' for diagnostics"
}
