// Package exec provides command execution wrappers and utilities for sobel.
// It centralizes how child processes are created so commands can be
// mocked in tests, and resolves the external edge detector binary.
package exec
