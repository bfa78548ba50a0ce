// Package watch feeds images dropped into a directory to the edge detector.
//
// Files are picked up from fsnotify Create and Write events and handed over
// once they have stopped changing for the settle delay. Invocations happen
// one at a time on the goroutine calling Run.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"sobel/internal/batch"
	"sobel/internal/config"
	e "sobel/pkg/errors"
	"sobel/pkg/logger"
)

// Options configures a watcher.
type Options struct {
	InputDir  string
	OutputDir string
	Pattern   string
	Settle    time.Duration

	// OnResult is called after each invocation, if set.
	OnResult func(job batch.Job, err error)
}

// Watcher watches Options.InputDir recursively.
type Watcher struct {
	opts    Options
	f       batch.Applier
	m       *batch.Matcher
	fsw     *fsnotify.Watcher
	outAbs  string
	pending map[string]time.Time
	now     func() time.Time
}

// New prepares a watcher; nothing is watched until Run.
func New(f batch.Applier, opts Options) (*Watcher, error) {
	if opts.InputDir == "" || opts.OutputDir == "" {
		return nil, e.New(e.ErrInvalidArgs, "Input and output directories are required")
	}
	if opts.Settle <= 0 {
		opts.Settle = config.DefaultSettle
	}
	m, err := batch.Compile(opts.Pattern)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(opts.InputDir)
	if err != nil {
		return nil, e.New(e.ErrFileNotFound, fmt.Sprintf("Input directory %s does not exist", opts.InputDir)).WithCause(err)
	}
	if !info.IsDir() {
		return nil, e.New(e.ErrInvalidArgs, fmt.Sprintf("%s is not a directory", opts.InputDir))
	}
	if batch.SameDir(opts.InputDir, opts.OutputDir) {
		return nil, batch.SameDirError(opts.InputDir)
	}
	outAbs, _ := filepath.Abs(opts.OutputDir)
	return &Watcher{
		opts:    opts,
		f:       f,
		m:       m,
		outAbs:  outAbs,
		pending: make(map[string]time.Time),
		now:     time.Now,
	}, nil
}

// Run watches until ctx is done. Edge detector failures are logged and do
// not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return e.Wrap(err, e.ErrUnknown, "Failed to start file watcher")
	}
	w.fsw = fsw
	defer fsw.Close()

	if err := w.addTree(w.opts.InputDir, false); err != nil {
		return err
	}
	logger.Verbosef("Watching %s (pattern %s)", w.opts.InputDir, w.m)

	tick := w.opts.Settle / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case werr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watch error: %v", werr)
		case <-ticker.C:
			w.flush(false)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	logger.Debugf("event %s", ev)
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		delete(w.pending, ev.Name)
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if ev.Has(fsnotify.Create) && !w.skipDir(ev.Name) {
			// files may land in a new directory before it is watched
			if err := w.addTree(ev.Name, true); err != nil {
				logger.Warnf("cannot watch %s: %v", ev.Name, err)
			}
		}
		return
	}
	if _, ok := w.job(ev.Name); ok {
		w.pending[ev.Name] = w.now()
	}
}

// flush processes settled files in lexical order; force ignores the delay.
func (w *Watcher) flush(force bool) {
	now := w.now()
	var ready []string
	for path, last := range w.pending {
		if force || now.Sub(last) >= w.opts.Settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	for _, path := range ready {
		delete(w.pending, path)
		job, ok := w.job(path)
		if !ok {
			continue
		}
		err := os.MkdirAll(filepath.Dir(job.Output), 0o755)
		if err == nil {
			err = w.f.Apply(job.Input, job.Output)
		}
		if err != nil {
			logger.Errorf("%s: %v", job.Rel, err)
		}
		if w.opts.OnResult != nil {
			w.opts.OnResult(job, err)
		}
	}
}

// job maps a path under the input directory to its invocation.
func (w *Watcher) job(path string) (batch.Job, bool) {
	rel, err := filepath.Rel(w.opts.InputDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return batch.Job{}, false
	}
	if abs, _ := filepath.Abs(path); w.outAbs != "" && strings.HasPrefix(abs, w.outAbs+string(filepath.Separator)) {
		return batch.Job{}, false
	}
	rel = filepath.ToSlash(rel)
	if !w.m.Match(rel) {
		return batch.Job{}, false
	}
	return batch.Job{Input: path, Output: batch.OutputPath(w.opts.OutputDir, rel), Rel: rel}, true
}

func (w *Watcher) skipDir(path string) bool {
	if path != w.opts.InputDir && strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	abs, _ := filepath.Abs(path)
	return abs == w.outAbs
}

func (w *Watcher) addTree(root string, queueFiles bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if _, ok := w.job(path); ok && queueFiles && d.Type().IsRegular() {
				w.pending[path] = w.now()
			}
			return nil
		}
		if w.skipDir(path) {
			return filepath.SkipDir
		}
		logger.Debugf("watching %s", path)
		if err := w.fsw.Add(path); err != nil {
			return e.Wrap(err, e.ErrUnknown, fmt.Sprintf("Failed to watch %s", path))
		}
		return nil
	})
}
