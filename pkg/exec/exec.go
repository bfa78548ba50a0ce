package exec

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Commander provides an interface for command execution that can be mocked in tests.
type Commander interface {
	Command(name string, args ...string) *exec.Cmd
}

// DefaultCommander implements Commander using the standard exec.Command.
type DefaultCommander struct{}

// Command creates a new exec.Cmd using the standard library exec.Command.
func (DefaultCommander) Command(name string, args ...string) *exec.Cmd {
	return exec.Command(name, args...)
}

// CommanderFunc adapts a plain function to the Commander interface.
type CommanderFunc func(name string, args ...string) *exec.Cmd

// Command calls f(name, args...).
func (f CommanderFunc) Command(name string, args ...string) *exec.Cmd {
	return f(name, args...)
}

// Global instance that can be overridden in tests
var Default Commander = DefaultCommander{}

// Command is a convenience function that delegates to the global Commander instance.
func Command(name string, args ...string) *exec.Cmd {
	return Default.Command(name, args...)
}

// ResolveBinary reports where bin would be found when executed. Names
// containing a path separator are checked relative to the working
// directory, bare names are searched on PATH. The returned error wraps
// the underlying os/exec or fs error.
func ResolveBinary(bin string) (string, error) {
	if bin == "" {
		return "", fmt.Errorf("empty executable name")
	}
	if !strings.ContainsRune(bin, os.PathSeparator) && !strings.ContainsRune(bin, '/') {
		p, err := exec.LookPath(bin)
		if err != nil {
			return "", err
		}
		return p, nil
	}
	info, err := os.Stat(bin)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", bin)
	}
	return bin, nil
}

// IsExecutable reports whether any execute bit is set on path.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
