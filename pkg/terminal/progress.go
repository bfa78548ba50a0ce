package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ProgressBar represents a terminal progress bar drawn on stderr
type ProgressBar struct {
	total   int
	current int
	width   int
	prefix  string
	start   time.Time
	out     io.Writer
	enabled bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(total int, prefix string) *ProgressBar {
	return &ProgressBar{
		total:   total,
		width:   40,
		prefix:  prefix,
		start:   time.Now(),
		out:     os.Stderr,
		enabled: Attached(os.Stderr),
	}
}

// Update updates the progress bar
func (p *ProgressBar) Update(current int) {
	p.current = current
	p.render()
}

// Increment increments the progress by 1
func (p *ProgressBar) Increment() {
	p.current++
	p.render()
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.current = p.total
	p.render()
	if p.enabled {
		fmt.Fprintln(p.out)
	}
}

// Stop ends the bar line where it is, for runs that did not complete, so
// later output starts on a fresh line.
func (p *ProgressBar) Stop() {
	if p.enabled && p.total > 0 {
		fmt.Fprintln(p.out)
	}
}

func (p *ProgressBar) render() {
	if !p.enabled || p.total <= 0 {
		return
	}

	percent := float64(p.current) / float64(p.total)
	filled := int(percent * float64(p.width))
	if filled > p.width {
		filled = p.width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	elapsed := time.Since(p.start).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	fmt.Fprintf(p.out, "\r%s [%s] %d/%d (%.1f/s)", p.prefix, bar, p.current, p.total, rate)
}
