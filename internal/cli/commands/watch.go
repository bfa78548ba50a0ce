package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sobel/internal/batch"
	"sobel/internal/config"
	"sobel/internal/edge"
	"sobel/internal/watch"
	"sobel/pkg/terminal"
)

const watchUsage = "Usage: sobel watch [--bin PATH] [--pattern GLOB] [--settle DURATION] <indir> <outdir>"

// Watch processes images as they are written into a directory until
// interrupted.
// Supports flags: --bin, --pattern, --settle, --help
func Watch(cfg *config.Config, args []string) error {
	p, err := parseArgs(args,
		[]string{"--bin", "--pattern", "--settle"},
		[]string{"-h", "--help"},
		watchUsage)
	if err != nil {
		return err
	}
	if p.bools["-h"] || p.bools["--help"] {
		fmt.Println(watchUsage)
		return nil
	}
	if len(p.positional) != 2 {
		return usageError(fmt.Sprintf("expected <indir> <outdir>, got %d argument(s)", len(p.positional))).
			WithSuggestion(watchUsage)
	}

	settle := cfg.Settle()
	if s, ok := p.values["--settle"]; ok {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return usageError(fmt.Sprintf("invalid --settle %q", s)).WithSuggestion("Use a positive duration such as 500ms or 2s")
		}
		settle = d
	}

	w, err := watch.New(edge.New(config.ResolveEdgeBin(p.values["--bin"], cfg)), watch.Options{
		InputDir:  p.positional[0],
		OutputDir: p.positional[1],
		Pattern:   config.ResolvePattern(p.values["--pattern"], cfg),
		Settle:    settle,
		OnResult: func(job batch.Job, err error) {
			mark := terminal.Success(terminal.IconCheck)
			if err != nil {
				mark = terminal.Error(terminal.IconCross)
			}
			fmt.Fprintf(os.Stderr, "%s %s %s\n", mark, terminal.IconImage, terminal.Info(job.Rel))
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Fprintf(os.Stderr, "%s %s (Ctrl-C to stop)\n", terminal.IconWatch, terminal.BoldText("Watching "+p.positional[0]))
	return w.Run(ctx)
}
