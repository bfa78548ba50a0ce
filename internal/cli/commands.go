package cli

import (
	"sobel/internal/cli/commands"
	"sobel/internal/config"
)

type processCmd struct{ cfg *config.Config }

func (processCmd) Name() string        { return "process" }
func (processCmd) Description() string { return "Run the edge detector on one image" }
func (c processCmd) Run(args []string) error {
	return commands.Process(c.cfg, args)
}

type batchCmd struct{ cfg *config.Config }

func (batchCmd) Name() string        { return "batch" }
func (batchCmd) Description() string { return "Run the edge detector on a directory of images" }
func (c batchCmd) Run(args []string) error {
	return commands.Batch(c.cfg, args)
}

type watchCmd struct{ cfg *config.Config }

func (watchCmd) Name() string        { return "watch" }
func (watchCmd) Description() string { return "Process images as they appear in a directory" }
func (c watchCmd) Run(args []string) error {
	return commands.Watch(c.cfg, args)
}

type doctorCmd struct{ cfg *config.Config }

func (doctorCmd) Name() string        { return "doctor" }
func (doctorCmd) Description() string { return "Check the edge detector setup" }
func (c doctorCmd) Run(args []string) error {
	return commands.Doctor(c.cfg, args)
}

type completionCmd struct{}

func (completionCmd) Name() string        { return "completion" }
func (completionCmd) Description() string { return "Generate shell completion scripts" }
func (completionCmd) Run(args []string) error {
	return commands.Completion(args)
}

// Command factory functions
func NewProcessCommand(cfg *config.Config) Command { return processCmd{cfg: cfg} }
func NewBatchCommand(cfg *config.Config) Command   { return batchCmd{cfg: cfg} }
func NewWatchCommand(cfg *config.Config) Command   { return watchCmd{cfg: cfg} }
func NewDoctorCommand(cfg *config.Config) Command  { return doctorCmd{cfg: cfg} }
func NewCompletionCommand() Command                { return completionCmd{} }
