// Package cli provides the command-line interface for sobel.
// It implements a small command registry with help text and version
// information and routes execution based on user input.
//
// The main components are:
//   - CLI: routes arguments to the registered commands
//   - Command: interface that all commands implement
//   - ErrorHandler and PanicHandler: central failure reporting
//
// Commands are implemented in the commands subpackage.
package cli

import (
	"fmt"
	"sort"
	"strings"

	"sobel/internal/config"
	"sobel/pkg/version"
)

// Command represents a CLI command
type Command interface {
	Name() string
	Description() string
	Run(args []string) error
}

// CLI represents the command-line interface
type CLI struct {
	config   *config.Config
	commands map[string]Command
}

// New creates a new CLI instance
func New(cfg *config.Config) *CLI {
	c := &CLI{config: cfg, commands: make(map[string]Command)}
	c.registerCommands()
	return c
}

func (c *CLI) register(cmd Command) {
	c.commands[cmd.Name()] = cmd
}

// registerCommands registers all available commands
func (c *CLI) registerCommands() {
	c.register(NewProcessCommand(c.config))
	c.register(NewBatchCommand(c.config))
	c.register(NewWatchCommand(c.config))
	c.register(NewDoctorCommand(c.config))
	c.register(NewCompletionCommand())
}

// Run executes the CLI with given arguments
func (c *CLI) Run(args []string) error {
	if len(args) < 2 {
		c.printUsage()
		return nil
	}
	switch args[1] {
	case "help", "--help", "-h":
		c.printUsage()
		return nil
	case "version", "--version", "-v":
		fmt.Printf("sobel %s\n", version.Version)
		return nil
	default:
		if cmd, ok := c.commands[args[1]]; ok {
			return cmd.Run(args[2:])
		}
		// sobel <input> <output>
		if len(args) == 3 && !strings.HasPrefix(args[1], "-") {
			return c.commands["process"].Run(args[1:])
		}
		c.printUsage()
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func (c *CLI) printUsage() {
	fmt.Println("Usage: sobel <command> [args]")
	fmt.Println("       sobel <input> <output>")
	fmt.Println("Commands:")
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-10s %s\n", name, c.commands[name].Description())
	}
	fmt.Println("  version    Show version")
	fmt.Println("  help       Show this help")
	fmt.Println("Global flags: --verbose, --debug")
}
