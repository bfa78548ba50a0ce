package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"testing"

	"sobel/internal/config"
	sexec "sobel/pkg/exec"
	"sobel/pkg/version"
)

// mockCommand is a test command implementation
type mockCommand struct {
	name        string
	description string
	runFunc     func(args []string) error
	runArgs     []string
}

func (m *mockCommand) Name() string        { return m.name }
func (m *mockCommand) Description() string { return m.description }
func (m *mockCommand) Run(args []string) error {
	m.runArgs = args
	if m.runFunc != nil {
		return m.runFunc(args)
	}
	return nil
}

// captureOutput captures stdout during test execution
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	f()

	w.Close()
	os.Stdout = old
	return <-done
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config *config.Config
	}{
		{"with nil config", nil},
		{"with valid config", &config.Config{EdgeBin: "/opt/edge.ml", Pattern: "*.png"}},
		{"with empty config", &config.Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := New(tt.config)
			if cli == nil {
				t.Fatal("New() returned nil")
			}
			if cli.config != tt.config {
				t.Errorf("New() config = %v, want %v", cli.config, tt.config)
			}
			for _, cmdName := range []string{"process", "batch", "watch", "doctor", "completion"} {
				if _, exists := cli.commands[cmdName]; !exists {
					t.Errorf("Expected command %q not registered", cmdName)
				}
			}
		})
	}
}

func TestCLI_register(t *testing.T) {
	cli := &CLI{commands: make(map[string]Command)}
	cmd := &mockCommand{name: "test", description: "Test command"}
	cli.register(cmd)
	if registered, ok := cli.commands["test"]; !ok || registered != cmd {
		t.Error("command was not registered")
	}
}

func TestCLI_Run(t *testing.T) {
	originalVersion := version.Version
	defer func() { version.Version = originalVersion }()

	tests := []struct {
		name           string
		args           []string
		expectError    bool
		errorContains  string
		outputContains []string
		setupFunc      func() *CLI
	}{
		{
			name:           "no arguments",
			args:           []string{"sobel"},
			outputContains: []string{"Usage: sobel <command> [args]", "Commands:", "process", "version    Show version"},
			setupFunc:      func() *CLI { return New(&config.Config{}) },
		},
		{
			name:           "help flag",
			args:           []string{"sobel", "--help"},
			outputContains: []string{"Usage: sobel <command> [args]"},
			setupFunc:      func() *CLI { return New(&config.Config{}) },
		},
		{
			name:           "version command",
			args:           []string{"sobel", "version"},
			outputContains: []string{"sobel test-version"},
			setupFunc: func() *CLI {
				version.Version = "test-version"
				return New(nil)
			},
		},
		{
			name:           "unknown command",
			args:           []string{"sobel", "unknown"},
			expectError:    true,
			errorContains:  "unknown command: unknown",
			outputContains: []string{"Usage: sobel <command> [args]"},
			setupFunc:      func() *CLI { return New(&config.Config{}) },
		},
		{
			name:           "unknown flag with two args",
			args:           []string{"sobel", "--nope", "x"},
			expectError:    true,
			errorContains:  "unknown command: --nope",
			outputContains: []string{"Usage:"},
			setupFunc:      func() *CLI { return New(nil) },
		},
		{
			name:          "command with error",
			args:          []string{"sobel", "error"},
			expectError:   true,
			errorContains: "command failed",
			setupFunc: func() *CLI {
				cli := New(&config.Config{})
				cli.register(&mockCommand{name: "error", runFunc: func(args []string) error {
					return fmt.Errorf("command failed")
				}})
				return cli
			},
		},
		{
			name:           "empty args slice",
			args:           []string{},
			outputContains: []string{"Usage: sobel <command> [args]"},
			setupFunc:      func() *CLI { return New(nil) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := tt.setupFunc()
			var err error
			output := captureOutput(func() {
				err = cli.Run(tt.args)
			})

			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if tt.errorContains != "" && (err == nil || !strings.Contains(err.Error(), tt.errorContains)) {
				t.Errorf("Expected error containing %q, got %v", tt.errorContains, err)
			}
			for _, expected := range tt.outputContains {
				if !strings.Contains(output, expected) {
					t.Errorf("Expected output to contain %q, got:\n%s", expected, output)
				}
			}
		})
	}
}

func TestCLI_RunPassesArgs(t *testing.T) {
	cli := New(nil)
	mock := &mockCommand{name: "process"}
	cli.register(mock)

	if err := cli.Run([]string{"sobel", "process", "in.png", "out.png"}); err != nil {
		t.Fatal(err)
	}
	if len(mock.runArgs) != 2 || mock.runArgs[0] != "in.png" {
		t.Errorf("runArgs = %v", mock.runArgs)
	}

	// shorthand: sobel <input> <output>
	mock.runArgs = nil
	if err := cli.Run([]string{"sobel", "a.png", "b.png"}); err != nil {
		t.Fatal(err)
	}
	if len(mock.runArgs) != 2 || mock.runArgs[0] != "a.png" || mock.runArgs[1] != "b.png" {
		t.Errorf("shorthand runArgs = %v", mock.runArgs)
	}
}

func TestCLI_ProcessEndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	var gotArgs []string
	old := sexec.Default
	sexec.Default = sexec.CommanderFunc(func(name string, args ...string) *exec.Cmd {
		gotArgs = append([]string{name}, args...)
		return exec.Command("sh", "-c", "exit 0")
	})
	defer func() { sexec.Default = old }()
	t.Setenv(config.EnvEdgeBin, "")

	var err error
	out := captureOutput(func() {
		err = New(nil).Run([]string{"sobel", "image_in.png", "image_out.png"})
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != "Image traitée et enregistrée dans image_out.png\n" {
		t.Errorf("stdout = %q", out)
	}
	if strings.Join(gotArgs, " ") != "./edge.ml image_in.png image_out.png" {
		t.Errorf("argv = %v", gotArgs)
	}
}
