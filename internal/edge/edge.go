// Package edge runs the external edge detector on one image.
//
// The detector is an opaque executable invoked as
//
//	<bin> <input_path> <output_path>
//
// Apply blocks until it exits. A zero exit status is reported with a single
// confirmation line on stdout; any other outcome is returned as an error and
// nothing is printed. This package never reads or writes the image files
// itself.
package edge

import (
	stdErrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"sobel/internal/config"
	e "sobel/pkg/errors"
	sexec "sobel/pkg/exec"
	"sobel/pkg/logger"
	"sobel/pkg/runid"
)

// stderrTailSize bounds how much of the child's stderr is kept for error details.
const stderrTailSize = 4 << 10

// Confirmation returns the line printed after output has been written.
func Confirmation(output string) string {
	return fmt.Sprintf("Image traitée et enregistrée dans %s", output)
}

// Filter invokes the edge detector. The zero value runs ./edge.ml with the
// process's own stdout and stderr.
type Filter struct {
	Bin       string
	Commander sexec.Commander
	Stdout    io.Writer
	Stderr    io.Writer
}

// New returns a Filter running bin.
func New(bin string) *Filter {
	return &Filter{Bin: bin}
}

// Apply runs the edge detector with input and output as its first and
// second arguments and waits for it to finish.
func (f *Filter) Apply(input, output string) error {
	bin := f.bin()
	argv := []string{bin, input, output}
	id := runid.Now(argv)
	logger.Verbosef("[%s] %s", id, sexec.JoinArgs(argv))

	tail := &tailBuffer{max: stderrTailSize}
	cmd := f.commander().Command(bin, input, output)
	cmd.Stdout = f.stdout()
	cmd.Stderr = io.MultiWriter(f.stderr(), tail)

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	if err != nil {
		logger.Debugf("[%s] failed after %v: %v", id, elapsed, err)
		return classify(err, bin, id, tail.String())
	}
	logger.Verbosef("[%s] finished in %v", id, elapsed)

	_, err = fmt.Fprintln(f.stdout(), Confirmation(output))
	return err
}

// ExitCode returns the exit status carried by an error from Apply.
func ExitCode(err error) (int, bool) {
	var sobelErr *e.SobelError
	if stdErrors.As(err, &sobelErr) && sobelErr.Code == e.ErrExternalProcessFailed {
		return sobelErr.ExitCode, true
	}
	var exitErr *exec.ExitError
	if stdErrors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

func classify(err error, bin, id, stderr string) error {
	var exitErr *exec.ExitError
	if stdErrors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		msg := fmt.Sprintf("Edge detector %s exited with status %d", bin, code)
		if code < 0 {
			msg = fmt.Sprintf("Edge detector %s was terminated: %s", bin, exitErr.String())
		}
		return e.New(e.ErrExternalProcessFailed, msg).
			WithCause(err).
			WithExitCode(code).
			WithDetails(stderr).
			WithContext("bin", bin).
			WithContext("run_id", id)
	}

	startErr := e.New(e.ErrProcessStart, fmt.Sprintf("Could not start edge detector %s", bin)).
		WithCause(err).
		WithContext("bin", bin).
		WithContext("run_id", id)
	if stdErrors.Is(err, fs.ErrPermission) {
		startErr.WithSuggestion(fmt.Sprintf("Make it executable: chmod +x %s", bin))
	}
	return startErr
}

func (f *Filter) bin() string {
	if f.Bin == "" {
		return config.DefaultEdgeBin
	}
	return f.Bin
}

func (f *Filter) commander() sexec.Commander {
	if f.Commander == nil {
		return sexec.Default
	}
	return f.Commander
}

func (f *Filter) stdout() io.Writer {
	if f.Stdout == nil {
		return os.Stdout
	}
	return f.Stdout
}

func (f *Filter) stderr() io.Writer {
	if f.Stderr == nil {
		return os.Stderr
	}
	return f.Stderr
}
