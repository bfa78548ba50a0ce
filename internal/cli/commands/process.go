package commands

import (
	"fmt"

	"sobel/internal/config"
	"sobel/internal/edge"
)

// Default paths used when process is called without arguments.
const (
	DefaultInput  = "image_in.png"
	DefaultOutput = "image_out.png"
)

const processUsage = "Usage: sobel process [--bin PATH] [<input> <output>]"

// Process runs the edge detector once: <bin> <input> <output>.
// Supports flags: --bin, --help
func Process(cfg *config.Config, args []string) error {
	p, err := parseArgs(args, []string{"--bin"}, []string{"-h", "--help"}, processUsage)
	if err != nil {
		return err
	}
	if p.bools["-h"] || p.bools["--help"] {
		fmt.Println(processUsage)
		return nil
	}

	input, output := DefaultInput, DefaultOutput
	switch len(p.positional) {
	case 0:
	case 2:
		input, output = p.positional[0], p.positional[1]
	default:
		return usageError(fmt.Sprintf("expected <input> <output>, got %d argument(s)", len(p.positional))).
			WithSuggestion(processUsage)
	}

	f := edge.New(config.ResolveEdgeBin(p.values["--bin"], cfg))
	return f.Apply(input, output)
}
