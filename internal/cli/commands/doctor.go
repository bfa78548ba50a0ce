package commands

import (
	"fmt"

	"sobel/internal/config"
	"sobel/internal/doctor"
	e "sobel/pkg/errors"
)

// Doctor runs health checks on the edge detector setup. It fails when a
// check ends in error so scripts can gate on the exit status; warnings
// alone do not fail.
// Supports flags: --verbose, --fix, --bin
func Doctor(cfg *config.Config, args []string) error {
	p, err := parseArgs(args, []string{"--bin"}, []string{"--verbose", "-v", "--fix"},
		"Usage: sobel doctor [--verbose] [--fix] [--bin PATH]")
	if err != nil {
		return err
	}
	bin := config.ResolveEdgeBin(p.values["--bin"], cfg)
	rpt := doctor.RunDoctorWithOptions(bin, p.bools["--verbose"] || p.bools["-v"], p.bools["--fix"])
	if !rpt.Healthy() {
		return e.New(e.ErrProcessStart, fmt.Sprintf("Health check failed: %d of %d checks in error", rpt.Errors+rpt.Critical, rpt.TotalChecks)).
			WithContext("bin", bin).
			WithSuggestion("Apply the fixes listed above, then rerun: sobel doctor")
	}
	return nil
}
