// Package cli: Central error handling for CLI
// Provides consistent error presentation and the process exit status
package cli

import (
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	e "sobel/pkg/errors"
	"sobel/pkg/terminal"
)

// ErrorHandler handles errors consistently across the CLI
type ErrorHandler struct {
	verbose bool
	debug   bool
	out     io.Writer
	exit    func(int)
}

// NewErrorHandler creates an error handler writing to stderr
func NewErrorHandler(verbose, debug bool) *ErrorHandler {
	return &ErrorHandler{
		verbose: verbose,
		debug:   debug,
		out:     os.Stderr,
		exit:    os.Exit,
	}
}

// Handle displays err and terminates the process with status 1.
func (h *ErrorHandler) Handle(err error) {
	if err == nil {
		return
	}

	var sobelErr *e.SobelError
	if !stdErrors.As(err, &sobelErr) {
		sobelErr = e.Wrap(err, e.ErrUnknown, "An unexpected error occurred")
	}
	h.displaySobelError(sobelErr)
	h.exit(1)
}

func (h *ErrorHandler) displaySobelError(err *e.SobelError) {
	w := h.out
	fmt.Fprintln(w)
	icon := h.getErrorIcon(err.Code)
	fmt.Fprintf(w, "%s %s%s%s\n", icon, terminal.Bold, err.Message, terminal.Reset)

	if err.Details != "" && h.verbose {
		fmt.Fprintf(w, "\n%s%s%s\n", terminal.Dim, err.Details, terminal.Reset)
	}

	if len(err.Context) > 0 && h.verbose {
		fmt.Fprintln(w, "\nContext:")
		keys := make([]string, 0, len(err.Context))
		for k := range err.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, err.Context[k])
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(w, "\n💡 %s%s%s\n", terminal.Yellow, err.Suggestion, terminal.Reset)
	}

	if err.Cause != nil && h.verbose {
		fmt.Fprintf(w, "\n%sCaused by:%s\n", terminal.Dim, terminal.Reset)
		h.displayCauseChain(err.Cause, 1)
	}

	if h.debug && len(err.Stack) > 0 {
		fmt.Fprintf(w, "\n%sStack trace:%s\n", terminal.Dim, terminal.Reset)
		for _, f := range err.Stack {
			fmt.Fprintf(w, "  %s\n", h.formatStackFrame(f))
		}
	}

	fmt.Fprintln(w)
	if !h.verbose {
		fmt.Fprintf(w, "%sRun with --verbose for more details%s\n", terminal.Dim, terminal.Reset)
	}
	if !h.debug && err.Code == e.ErrUnknown {
		fmt.Fprintf(w, "%sRun with --debug for stack trace%s\n", terminal.Dim, terminal.Reset)
	}
}

func (h *ErrorHandler) displayCauseChain(err error, depth int) {
	indent := strings.Repeat("  ", depth)
	if sobelErr, ok := err.(*e.SobelError); ok {
		fmt.Fprintf(h.out, "%s• %s\n", indent, sobelErr.Message)
		if sobelErr.Cause != nil {
			h.displayCauseChain(sobelErr.Cause, depth+1)
		}
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			h.displayCauseChain(inner, depth)
		}
		return
	}
	fmt.Fprintf(h.out, "%s• %s\n", indent, err.Error())
}

func (h *ErrorHandler) formatStackFrame(frame e.StackFrame) string {
	file := frame.File
	if idx := strings.LastIndex(file, "/sobel/"); idx >= 0 {
		file = "..." + file[idx:]
	}
	fn := frame.Function
	if idx := strings.LastIndex(fn, "."); idx >= 0 {
		fn = fn[idx+1:]
	}
	return fmt.Sprintf("%s:%d %s()", file, frame.Line, fn)
}

func (h *ErrorHandler) getErrorIcon(code e.ErrorCode) string {
	icons := map[e.ErrorCode]string{
		e.ErrExternalProcessFailed: terminal.IconError,
		e.ErrProcessStart:          "🔍",
		e.ErrInvalidArgs:           terminal.IconInfo,
		e.ErrFileNotFound:          "🔍",
		e.ErrPermissionDenied:      "🚫",
		e.ErrInvalidConfig:         terminal.IconWarning,
		e.ErrUnknown:               "❓",
	}
	if ic, ok := icons[code]; ok {
		return ic
	}
	return terminal.IconError
}
