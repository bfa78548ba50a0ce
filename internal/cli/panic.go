package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"sobel/internal/config"
	"sobel/pkg/terminal"
	"sobel/pkg/version"
)

// PanicHandler recovers from panics and shows friendly errors
type PanicHandler struct {
	out  io.Writer
	dir  string
	exit func(int)
}

// Recover catches panics and converts them to friendly output. It must be
// deferred directly.
func (p *PanicHandler) Recover() { //nolint:revive
	if r := recover(); r != nil {
		p.handlePanic(r)
	}
}

func (p *PanicHandler) handlePanic(r interface{}) {
	var message string
	switch v := r.(type) {
	case string:
		message = v
	case error:
		message = v.Error()
	default:
		message = fmt.Sprintf("%v", r)
	}

	out := p.out
	if out == nil {
		out = os.Stderr
	}
	stack := string(debug.Stack())
	crashReport := p.saveCrashReport(message, stack)

	fmt.Fprintln(out)
	fmt.Fprintf(out, "💥 %s%ssobel crashed unexpectedly%s\n", terminal.Red, terminal.Bold, terminal.Reset)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Error: %s\n", message)
	if crashReport != "" {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "A crash report has been saved to:\n%s\n", crashReport)
	}

	exit := p.exit
	if exit == nil {
		exit = os.Exit
	}
	exit(2)
}

func (p *PanicHandler) saveCrashReport(message, stack string) string {
	crashDir := p.dir
	if crashDir == "" {
		crashDir = filepath.Join(config.StateDir(), "crashes")
	}
	if err := os.MkdirAll(crashDir, 0o755); err != nil {
		return ""
	}
	ts := time.Now().Format("2006-01-02-15-04-05")
	fp := filepath.Join(crashDir, fmt.Sprintf("crash-%s.txt", ts))
	report := fmt.Sprintf(`sobel Crash Report
==================
Time: %s
Version: %s
OS: %s
Arch: %s
Args: %s

Error:
%s

Stack Trace:
%s

Environment:
%s
`, time.Now().Format(time.RFC3339), version.Version, runtime.GOOS, runtime.GOARCH, strings.Join(os.Args, " "), message, stack, p.getEnvironmentInfo())
	if err := os.WriteFile(fp, []byte(report), 0o644); err != nil {
		return ""
	}
	return fp
}

func (p *PanicHandler) getEnvironmentInfo() string {
	var info []string
	for _, key := range []string{"SOBEL_DEBUG", "SOBEL_VERBOSE", config.EnvEdgeBin, "PATH"} {
		if v := os.Getenv(key); v != "" {
			info = append(info, fmt.Sprintf("%s=%s", key, v))
		}
	}
	return strings.Join(info, "\n")
}
