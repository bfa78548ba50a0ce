package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// capture points the global logger at a buffer for the duration of a test.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	Initialize(true, false)
	var buf bytes.Buffer
	oldOut, oldColors := defaultLogger.output, defaultLogger.colors
	defaultLogger.output = &buf
	defaultLogger.colors = false
	t.Cleanup(func() {
		defaultLogger.output = oldOut
		defaultLogger.colors = oldColors
	})
	return &buf
}

func TestLogger_VerboseLevel(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	buf := capture(t)

	Info("info message")
	Verbosef("running %s", "./edge.ml")
	Debug("debug message - should be suppressed")
	StartTimer("op1")
	time.Sleep(5 * time.Millisecond)
	EndTimer("op1")
	Warn("warn message")
	Errorf("error %d", 1)

	out := buf.String()
	for _, want := range []string{"INFO: info message", "VERBOSE: running ./edge.ml", "Completed op1", "WARN: warn message", "ERROR: error 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}
	if strings.Contains(out, "DEBUG") {
		t.Errorf("did not expect DEBUG logs at verbose level")
	}
	if !Enabled(LevelVerbose) || Enabled(LevelDebug) {
		t.Errorf("Enabled() disagrees with verbose level")
	}
}

func TestEndTimerWithoutStart(t *testing.T) {
	buf := capture(t)
	EndTimer("never-started")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		verbose, debug bool
		want           Level
	}{
		{false, false, LevelInfo},
		{true, false, LevelVerbose},
		{false, true, LevelDebug},
		{true, true, LevelDebug},
	}
	for _, tt := range tests {
		if got := levelFor(tt.verbose, tt.debug); got != tt.want {
			t.Errorf("levelFor(%v, %v) = %s, want %s", tt.verbose, tt.debug, got, tt.want)
		}
	}
	if got := Level(9).String(); got != "LEVEL(9)" {
		t.Errorf("unknown level String() = %q", got)
	}
}

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)
	plainLog := &Logger{}
	if got := plainLog.format(ts, LevelWarn, "", "no files match\n"); got != "[13:04:05] WARN: no files match\n" {
		t.Errorf("plain format = %q", got)
	}
	if got := plainLog.format(ts, LevelDebug, "edge.go:42", "argv"); got != "[13:04:05] DEBUG [edge.go:42]: argv\n" {
		t.Errorf("plain format with caller = %q", got)
	}
	colored := &Logger{colors: true}
	got := colored.format(ts, LevelError, "", "edge.ml exited 1")
	if !strings.HasPrefix(got, "[13:04:05] \033[31mERROR\033[0m") || !strings.HasSuffix(got, ": edge.ml exited 1\n") {
		t.Errorf("colour format = %q", got)
	}
}

func TestOpenDebugLog(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	f, err := openDebugLog(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("openDebugLog() error = %v", err)
	}
	defer f.Close()
	want := filepath.Join(home, ".sobel", "logs", "sobel-2024-05-01.log")
	if f.Name() != want {
		t.Errorf("log file = %s, want %s", f.Name(), want)
	}
	info, err := os.Stat(filepath.Join(home, ".sobel"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Errorf("state dir mode = %v, want 0700", info.Mode().Perm())
	}
}
