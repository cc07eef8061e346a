package runner

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"sweeper/internal/logging"
	"sweeper/internal/plan"
)

// Template describes how to turn a work item into a trainer invocation.
type Template struct {
	Binary string
	// Args may contain the placeholders {checkpoint}, {seed}, {itr},
	// {method}, {companion}, and {exp_name}.
	Args []string
	// CompanionTemplate, when set, derives a companion artifact path per item
	// using {seed_dir}, {itr}, {seed}, and {method}.
	CompanionTemplate string
	ExperimentName    string
}

// Job is a handle to one launched trainer process.
type Job struct {
	Item    plan.Item
	PID     int
	LogPath string

	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
}

// Done is closed once the process has exited and been reaped.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the process exits and returns its wait error. The exit
// status carries no success signal for the dispatcher; success is the terminal
// artifact on disk. Wait exists only for drain bookkeeping.
func (j *Job) Wait() error {
	<-j.done
	return j.waitErr
}

// Alive reports whether the process is still running.
func (j *Job) Alive() bool {
	select {
	case <-j.done:
		return false
	default:
		return true
	}
}

// Describe returns the item identity string for log lines.
func (j *Job) Describe() string { return j.Item.Key() }

// Runner launches trainer processes with per-job output capture.
type Runner struct {
	template Template
	logDir   string
	logger   *slog.Logger
}

// New constructs a Runner writing capture files into logDir.
func New(template Template, logDir string, logger *slog.Logger) *Runner {
	return &Runner{
		template: template,
		logDir:   logDir,
		logger:   logging.NewComponentLogger(logger, "runner"),
	}
}

// Launch starts exactly one trainer process for item and returns without
// waiting for it. Combined stdout+stderr goes to a capture file named from
// the item identity. The child gets its own process group so a Ctrl-C aimed
// at the dispatcher does not tear down trainers that were promised to finish
// on their own.
func (r *Runner) Launch(item plan.Item) (*Job, error) {
	args, err := r.expandArgs(item)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create job log directory: %w", err)
	}
	logPath := filepath.Join(r.logDir, item.Key()+".log")
	capture, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}

	cmd := exec.Command(r.template.Binary, args...) //nolint:gosec
	cmd.Stdout = capture
	cmd.Stderr = capture
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		capture.Close()
		return nil, fmt.Errorf("start trainer: %w", err)
	}

	job := &Job{
		Item:    item,
		PID:     cmd.Process.Pid,
		LogPath: logPath,
		cmd:     cmd,
		done:    make(chan struct{}),
	}
	go func() {
		job.waitErr = cmd.Wait()
		capture.Close()
		close(job.done)
	}()

	r.logger.Info("trainer launched",
		logging.Int("pid", job.PID),
		logging.Int(logging.FieldSeed, item.Seed),
		logging.Int(logging.FieldItr, item.Itr),
		logging.String(logging.FieldMethod, item.Method),
		logging.String("log", logPath),
	)
	return job, nil
}

func (r *Runner) expandArgs(item plan.Item) ([]string, error) {
	companion := ""
	if r.template.CompanionTemplate != "" {
		companion = expandPlaceholders(r.template.CompanionTemplate, item, "")
	}

	args := make([]string, 0, len(r.template.Args))
	for _, arg := range r.template.Args {
		expanded := expandPlaceholders(arg, item, companion)
		expanded = strings.ReplaceAll(expanded, "{exp_name}", r.template.ExperimentName)
		if leftover := placeholderPattern.FindString(expanded); leftover != "" {
			return nil, fmt.Errorf("unknown placeholder %s in arg %q", leftover, arg)
		}
		args = append(args, expanded)
	}
	return args, nil
}

var placeholderPattern = regexp.MustCompile(`\{[a-z_]+\}`)

func expandPlaceholders(s string, item plan.Item, companion string) string {
	replacer := strings.NewReplacer(
		"{checkpoint}", item.CheckpointPath,
		"{seed}", strconv.Itoa(item.Seed),
		"{itr}", strconv.Itoa(item.Itr),
		"{method}", item.Method,
		"{seed_dir}", item.SeedDir,
		"{companion}", companion,
	)
	return replacer.Replace(s)
}
