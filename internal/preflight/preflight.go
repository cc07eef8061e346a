package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"sweeper/internal/config"
)

// Result captures one preflight check outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config. The data root
// must be readable; the roots a run writes into must be writable; the trainer
// must resolve to an executable.
func RunAll(cfg *config.Config) []Result {
	return []Result{
		CheckReadableDirectory("Data root", cfg.Paths.DataRoot),
		CheckWritableDirectory("Experiments root", cfg.Paths.ExperimentsRoot),
		CheckWritableDirectory("Quarantine root", cfg.Paths.QuarantineRoot),
		CheckWritableDirectory("Log directory", cfg.Paths.LogDir),
		CheckTrainerBinary(cfg.Trainer.Binary),
	}
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// CheckReadableDirectory verifies that the directory exists and is listable.
func CheckReadableDirectory(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckWritableDirectory verifies read/write access. A missing directory
// passes when its nearest existing ancestor is writable, since runs create
// their output roots on demand.
func CheckWritableDirectory(name, path string) Result {
	probe := path
	for {
		info, err := os.Stat(probe)
		if err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, probe)}
			}
			break
		}
		if !os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path)}
		}
		probe = parent
	}
	if err := unix.Access(probe, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions on %s: %v)", path, probe, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTrainerBinary verifies the trainer resolves to an executable, via PATH
// for bare names or directly for explicit paths.
func CheckTrainerBinary(binary string) Result {
	const name = "Trainer"
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return Result{Name: name, Detail: "no trainer binary configured"}
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", binary, err)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}
