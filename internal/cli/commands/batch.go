package commands

import (
	"fmt"
	"os"

	"sobel/internal/batch"
	"sobel/internal/config"
	"sobel/internal/edge"
	"sobel/pkg/logger"
	"sobel/pkg/terminal"
)

const batchUsage = "Usage: sobel batch [--bin PATH] [--pattern GLOB] [--keep-going] [--dry-run] <indir> <outdir>"

// Batch runs the edge detector on every matching image under a directory,
// mirroring the tree into the output directory.
// Supports flags: --bin, --pattern, --keep-going, --dry-run, --help
func Batch(cfg *config.Config, args []string) error {
	p, err := parseArgs(args,
		[]string{"--bin", "--pattern"},
		[]string{"--keep-going", "-k", "--dry-run", "-h", "--help"},
		batchUsage)
	if err != nil {
		return err
	}
	if p.bools["-h"] || p.bools["--help"] {
		fmt.Println(batchUsage)
		return nil
	}
	if len(p.positional) != 2 {
		return usageError(fmt.Sprintf("expected <indir> <outdir>, got %d argument(s)", len(p.positional))).
			WithSuggestion(batchUsage)
	}

	opts := batch.Options{
		InputDir:  p.positional[0],
		OutputDir: p.positional[1],
		Pattern:   config.ResolvePattern(p.values["--pattern"], cfg),
		KeepGoing: p.bools["--keep-going"] || p.bools["-k"],
	}
	jobs, err := batch.Plan(opts)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		logger.Warnf("No files in %s match %s", opts.InputDir, opts.Pattern)
		return nil
	}
	if p.bools["--dry-run"] {
		for _, j := range jobs {
			fmt.Printf("%s %s %s %s\n", terminal.IconDot, j.Input, terminal.IconArrow, j.Output)
		}
		return nil
	}

	f := edge.New(config.ResolveEdgeBin(p.values["--bin"], cfg))
	// confirmations share the terminal with the bar when stdout is not redirected
	var bar *terminal.ProgressBar
	var progress batch.Progress
	if !terminal.IsTerminal() {
		bar = terminal.NewProgressBar(len(jobs), "Edges")
		progress = bar
	}
	logger.StartTimer("batch")
	rpt, err := batch.Run(f, jobs, opts, progress)
	if bar != nil {
		if err == nil {
			bar.Finish()
		} else {
			bar.Stop()
		}
	}
	logger.EndTimer("batch")
	for _, fl := range rpt.Failed {
		fmt.Fprintf(os.Stderr, "%s %s\n", terminal.Error(terminal.IconCross), fl.Job.Rel)
	}
	summary := fmt.Sprintf("%d/%d images processed", rpt.Succeeded, rpt.Total)
	switch {
	case len(rpt.Failed) > 0:
		summary = terminal.Warning(summary)
	case err == nil:
		summary = terminal.Success(summary)
	}
	logger.Info(summary)
	return err
}
