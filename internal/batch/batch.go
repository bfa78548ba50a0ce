// Package batch runs the edge detector over every matching image in a
// directory tree, one image at a time.
package batch

import (
	stdErrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"sobel/internal/config"
	e "sobel/pkg/errors"
	"sobel/pkg/logger"
)

// Applier runs the edge detector for one input/output pair.
type Applier interface {
	Apply(input, output string) error
}

// Progress receives one tick per finished job.
type Progress interface {
	Increment()
}

// Options configures a batch run.
type Options struct {
	InputDir  string
	OutputDir string
	Pattern   string // gobwas/glob syntax, '/' separated, relative to InputDir
	KeepGoing bool
}

// Job is a single edge detector invocation.
type Job struct {
	Input  string
	Output string
	Rel    string
}

// Report summarizes a batch run.
type Report struct {
	Total     int
	Succeeded int
	Failed    []Failure
}

// Failure records a job that did not complete.
type Failure struct {
	Job Job
	Err error
}

// Matcher reports whether a slash-separated relative path is selected.
type Matcher struct {
	pattern string
	g       glob.Glob
}

// Compile builds a Matcher, falling back to config.DefaultPattern when
// pattern is empty.
func Compile(pattern string) (*Matcher, error) {
	if pattern == "" {
		pattern = config.DefaultPattern
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, e.New(e.ErrInvalidArgs, fmt.Sprintf("Invalid pattern %q", pattern)).
			WithCause(err).
			WithSuggestion("Use glob syntax such as '*.png' or '**.{png,jpg}'")
	}
	return &Matcher{pattern: pattern, g: g}, nil
}

// Match reports whether rel (slash or OS separated) matches.
func (m *Matcher) Match(rel string) bool {
	return m.g.Match(filepath.ToSlash(rel))
}

// String returns the source pattern.
func (m *Matcher) String() string { return m.pattern }

// OutputPath maps a path relative to the input tree onto the output tree.
func OutputPath(outputDir, rel string) string {
	return filepath.Join(outputDir, filepath.FromSlash(rel))
}

// SameDir reports whether a and b name the same directory, either by
// absolute path or, when both exist, by identity (symlinks, bind mounts).
func SameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}

// SameDirError rejects runs that would hand the edge detector the same
// path as input and output.
func SameDirError(dir string) *e.SobelError {
	return e.New(e.ErrInvalidArgs, fmt.Sprintf("Input and output directories are the same: %s", dir)).
		WithSuggestion("Choose an output directory different from the input directory")
}

// Plan walks opts.InputDir and returns the jobs in lexical order of their
// relative paths. Hidden directories are not descended into.
func Plan(opts Options) ([]Job, error) {
	if opts.InputDir == "" || opts.OutputDir == "" {
		return nil, e.New(e.ErrInvalidArgs, "Input and output directories are required")
	}
	m, err := Compile(opts.Pattern)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(opts.InputDir)
	if err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) {
			return nil, e.New(e.ErrFileNotFound, fmt.Sprintf("Input directory %s does not exist", opts.InputDir)).WithCause(err)
		}
		return nil, e.Wrap(err, e.ErrUnknown, "Cannot read input directory")
	}
	if !info.IsDir() {
		return nil, e.New(e.ErrInvalidArgs, fmt.Sprintf("%s is not a directory", opts.InputDir))
	}
	if SameDir(opts.InputDir, opts.OutputDir) {
		return nil, SameDirError(opts.InputDir)
	}
	outAbs, _ := filepath.Abs(opts.OutputDir)

	var jobs []Job
	err = filepath.WalkDir(opts.InputDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != opts.InputDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			// never feed our own results back in when outdir sits under indir
			if abs, _ := filepath.Abs(path); path != opts.InputDir && abs == outAbs {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(opts.InputDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !m.Match(rel) {
			logger.Debugf("skip %s: does not match %s", rel, m)
			return nil
		}
		jobs = append(jobs, Job{Input: path, Output: OutputPath(opts.OutputDir, rel), Rel: rel})
		return nil
	})
	if err != nil {
		return nil, e.Wrap(err, e.ErrUnknown, "Failed to scan input directory")
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Rel < jobs[j].Rel })
	return jobs, nil
}

// Run applies f to each job in order. Without opts.KeepGoing the first
// failure ends the run and is returned; otherwise all jobs run and the
// failures are returned joined. progress may be nil.
func Run(f Applier, jobs []Job, opts Options, progress Progress) (Report, error) {
	rpt := Report{Total: len(jobs)}
	for _, job := range jobs {
		err := runOne(f, job)
		if progress != nil {
			progress.Increment()
		}
		if err == nil {
			rpt.Succeeded++
			continue
		}
		rpt.Failed = append(rpt.Failed, Failure{Job: job, Err: err})
		if !opts.KeepGoing {
			return rpt, err
		}
		logger.Warnf("%s: %v", job.Rel, firstLine(err))
	}
	if len(rpt.Failed) == 0 {
		return rpt, nil
	}
	errs := make([]error, 0, len(rpt.Failed))
	for _, fl := range rpt.Failed {
		errs = append(errs, fmt.Errorf("%s: %w", fl.Job.Rel, fl.Err))
	}
	return rpt, e.New(e.ErrExternalProcessFailed, fmt.Sprintf("%d of %d images failed", len(rpt.Failed), rpt.Total)).
		WithCause(stdErrors.Join(errs...)).
		WithExitCode(exitCodeOf(rpt.Failed[0].Err))
}

func runOne(f Applier, job Job) error {
	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return e.New(e.ErrPermissionDenied, fmt.Sprintf("Cannot create output directory for %s", job.Output)).WithCause(err)
	}
	return f.Apply(job.Input, job.Output)
}

func exitCodeOf(err error) int {
	var sobelErr *e.SobelError
	if stdErrors.As(err, &sobelErr) {
		return sobelErr.ExitCode
	}
	return 0
}

func firstLine(err error) string {
	s := err.Error()
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
