package main

import (
	"os"
	"strings"

	"sobel/internal/cli"
	"sobel/internal/config"
	"sobel/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Fall back to running with nil config; handle errors centrally
		cfg = nil
	}

	args, verbose, debug := parseGlobalFlags(os.Args)

	logger.Initialize(verbose, debug)
	defer logger.Close()

	handler := cli.NewErrorHandler(verbose, debug)
	var ph cli.PanicHandler
	defer ph.Recover()

	app := cli.New(cfg)
	if err := app.Run(args); err != nil {
		logger.Close()
		handler.Handle(err)
	}
}

// parseGlobalFlags strips --verbose and --debug from argv and folds in
// SOBEL_VERBOSE / SOBEL_DEBUG. Arguments after "--" are left untouched.
func parseGlobalFlags(argv []string) (args []string, verbose, debug bool) {
	args = make([]string, 0, len(argv))
	passthrough := false
	for i, a := range argv {
		if i == 0 || passthrough {
			args = append(args, a)
			continue
		}
		switch a {
		case "--verbose":
			verbose = true
		case "--debug":
			debug = true
		case "--":
			passthrough = true
			args = append(args, a)
		default:
			args = append(args, a)
		}
	}
	if strings.EqualFold(os.Getenv("SOBEL_VERBOSE"), "1") {
		verbose = true
	}
	if strings.EqualFold(os.Getenv("SOBEL_DEBUG"), "1") {
		debug = true
	}
	return args, verbose, debug
}
