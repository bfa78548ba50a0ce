// Package doctor provides health checks for the sobel setup.
package doctor

import (
	stdErrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"sobel/internal/config"
	sexec "sobel/pkg/exec"
	"sobel/pkg/terminal"
)

// Doctor performs system health checks
type Doctor struct {
	checks  []HealthCheck
	verbose bool
	out     io.Writer
}

// HealthCheck represents a single diagnostic check
type HealthCheck interface {
	Name() string
	Description() string
	Run() CheckResult
	CanAutoFix() bool
	Fix() error
	Severity() Severity
}

// CheckResult contains the outcome of a health check
type CheckResult struct {
	Status     Status
	Message    string
	Details    string
	FixCommand string
	Impact     string
}

// Status represents check status
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
	StatusCritical
)

// Severity indicates how important a fix is
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// HealthReport summarizes checks
type HealthReport struct {
	TotalChecks int
	Passed      int
	Warnings    int
	Errors      int
	Critical    int
	StartTime   time.Time
	EndTime     time.Time
}

// Healthy reports whether no check ended in error.
func (r HealthReport) Healthy() bool { return r.Errors == 0 && r.Critical == 0 }

// New returns a Doctor checking the given edge detector.
func New(bin string, verbose bool) *Doctor {
	return &Doctor{
		checks: []HealthCheck{
			&EdgeBinaryCheck{Bin: bin},
			&ConfigCheck{},
			&StateDirCheck{Dir: config.StateDir()},
		},
		verbose: verbose,
		out:     os.Stdout,
	}
}

// Run executes all checks and prints a concise report
func (d *Doctor) Run() HealthReport {
	rpt := HealthReport{StartTime: time.Now()}
	fmt.Fprintln(d.out, "\n🩺 sobel doctor - Health Check")
	fmt.Fprintln(d.out, strings.Repeat("=", 40))
	for _, c := range d.checks {
		res := c.Run()
		d.printResult(res)
		rpt.TotalChecks++
		switch res.Status {
		case StatusOK:
			rpt.Passed++
		case StatusWarning:
			rpt.Warnings++
		case StatusError:
			rpt.Errors++
		case StatusCritical:
			rpt.Critical++
		}
	}
	rpt.EndTime = time.Now()
	fmt.Fprintf(d.out, "\n⏱  Completed in %.2fs: %d passed, %d warnings, %d errors\n",
		rpt.EndTime.Sub(rpt.StartTime).Seconds(), rpt.Passed, rpt.Warnings, rpt.Errors+rpt.Critical)
	if rpt.Warnings+rpt.Errors+rpt.Critical > 0 {
		fmt.Fprintln(d.out, "Run 'sobel doctor --fix' to auto-fix issues where possible")
	}
	return rpt
}

func (d *Doctor) printResult(r CheckResult) {
	icon := terminal.IconSuccess
	switch r.Status {
	case StatusOK:
		// keep default icon
	case StatusWarning:
		icon = terminal.IconWarning + " "
	case StatusError, StatusCritical:
		icon = terminal.IconError
	}
	fmt.Fprintf(d.out, "%s %s\n", icon, r.Message)
	if r.Details != "" && d.verbose {
		fmt.Fprintf(d.out, "   %s\n", r.Details)
	}
	if r.FixCommand != "" && r.Status != StatusOK {
		fmt.Fprintf(d.out, "   💡 Fix: %s\n", r.FixCommand)
	}
	if r.Impact != "" && r.Status == StatusCritical {
		fmt.Fprintf(d.out, "   ⚠️  Impact: %s\n", r.Impact)
	}
}

// EdgeBinaryCheck verifies the edge detector can be started
type EdgeBinaryCheck struct {
	Bin string
}

func (c *EdgeBinaryCheck) Name() string        { return "Edge detector" }
func (c *EdgeBinaryCheck) Description() string { return "Checking the edge detector executable" }
func (c *EdgeBinaryCheck) CanAutoFix() bool    { return false }
func (c *EdgeBinaryCheck) Fix() error          { return nil }
func (c *EdgeBinaryCheck) Severity() Severity  { return SeverityCritical }

func (c *EdgeBinaryCheck) Run() CheckResult {
	path, err := sexec.ResolveBinary(c.Bin)
	if err != nil {
		res := CheckResult{
			Status:  StatusCritical,
			Message: fmt.Sprintf("Edge detector %s not found", c.Bin),
			Details: err.Error(),
			Impact:  "Every image will fail to process",
		}
		switch {
		case stdErrors.Is(err, exec.ErrNotFound):
			res.FixCommand = fmt.Sprintf("Add %s to PATH or set %s", c.Bin, config.EnvEdgeBin)
		case stdErrors.Is(err, fs.ErrNotExist):
			res.FixCommand = fmt.Sprintf("Build it or point %s / edge_bin in %s at it", config.EnvEdgeBin, config.Path())
		}
		return res
	}
	if runtime.GOOS != "windows" && !sexec.IsExecutable(path) {
		return CheckResult{
			Status:     StatusError,
			Message:    fmt.Sprintf("Edge detector %s is not executable", path),
			FixCommand: fmt.Sprintf("chmod +x %s", path),
			Impact:     "Every image will fail to process",
		}
	}
	return CheckResult{Status: StatusOK, Message: fmt.Sprintf("Edge detector found: %s", path)}
}

// ConfigCheck verifies ~/.sobel.json parses
type ConfigCheck struct{}

func (c *ConfigCheck) Name() string        { return "Configuration" }
func (c *ConfigCheck) Description() string { return "Checking configuration file" }
func (c *ConfigCheck) CanAutoFix() bool    { return false }
func (c *ConfigCheck) Fix() error          { return nil }
func (c *ConfigCheck) Severity() Severity  { return SeverityMedium }

func (c *ConfigCheck) Run() CheckResult {
	p := config.Path()
	if err := config.Validate(); err != nil {
		return CheckResult{
			Status:     StatusWarning,
			Message:    fmt.Sprintf("Configuration %s is invalid (ignored)", p),
			Details:    err.Error(),
			FixCommand: fmt.Sprintf("Fix or remove %s", p),
		}
	}
	if _, err := os.Stat(p); err != nil {
		return CheckResult{Status: StatusOK, Message: "No configuration file (using defaults)"}
	}
	return CheckResult{Status: StatusOK, Message: fmt.Sprintf("Configuration %s is valid", p)}
}

// StateDirCheck verifies permissions of ~/.sobel (logs, crash reports)
type StateDirCheck struct {
	Dir string
}

func (c *StateDirCheck) Name() string        { return "Permissions" }
func (c *StateDirCheck) Description() string { return "Checking state directory permissions" }
func (c *StateDirCheck) CanAutoFix() bool    { return true }
func (c *StateDirCheck) Severity() Severity  { return SeverityLow }

func (c *StateDirCheck) Fix() error {
	if _, err := os.Stat(c.Dir); os.IsNotExist(err) {
		return os.MkdirAll(c.Dir, 0o700)
	}
	return os.Chmod(c.Dir, 0o700)
}

func (c *StateDirCheck) Run() CheckResult {
	info, err := os.Stat(c.Dir)
	if err != nil {
		return CheckResult{Status: StatusOK, Message: fmt.Sprintf("%s will be created on demand", c.Dir)}
	}
	if !info.IsDir() {
		return CheckResult{Status: StatusError, Message: fmt.Sprintf("%s is not a directory", c.Dir), FixCommand: fmt.Sprintf("rm %s", c.Dir), Impact: "Debug logs and crash reports cannot be saved"}
	}
	if info.Mode().Perm()&0o700 != 0o700 {
		return CheckResult{Status: StatusWarning, Message: "State directory has incorrect permissions", FixCommand: fmt.Sprintf("chmod 700 %s", c.Dir), Impact: "Debug logs may not be saved"}
	}
	return CheckResult{Status: StatusOK, Message: "All permissions correct"}
}

// Fix attempts automatic fixes for checks that support it.
func (d *Doctor) Fix() {
	fmt.Fprintln(d.out, "\n🔧 Attempting to fix issues...")
	for _, c := range d.checks {
		res := c.Run()
		if res.Status != StatusOK && c.CanAutoFix() {
			if err := c.Fix(); err != nil {
				fmt.Fprintf(d.out, "%s %s: fix failed: %v\n", terminal.IconError, c.Name(), err)
			} else {
				fmt.Fprintf(d.out, "%s %s: fixed\n", terminal.IconSuccess, c.Name())
			}
		}
	}
}

// RunDoctorWithOptions runs checks and optionally applies fixes.
func RunDoctorWithOptions(bin string, verbose, fix bool) HealthReport {
	d := New(bin, verbose)
	rpt := d.Run()
	if fix {
		d.Fix()
	}
	return rpt
}
