package dispatch

import (
	"fmt"
	"log/slog"
	"time"

	"sweeper/internal/config"
	"sweeper/internal/logging"
)

// Handle is the controller's view of a launched job.
type Handle interface {
	// Done is closed once the underlying process has exited.
	Done() <-chan struct{}
	// Wait blocks until the process exits.
	Wait() error
	// Describe identifies the job in log lines.
	Describe() string
}

// Controller enforces the parallelism bound. It owns the table of running
// jobs outright: only the driver goroutine calls into it, so the table needs
// no locking — exit notifications arrive over a channel and are folded in
// during Acquire and Drain.
type Controller struct {
	limit        int
	policy       string
	pollInterval time.Duration
	sentinel     *Sentinel
	logger       *slog.Logger

	jobs  []Handle
	exits chan Handle
}

// NewController builds a controller for the given dispatch settings.
func NewController(cfg config.Dispatch, sentinel *Sentinel, logger *slog.Logger) *Controller {
	return &Controller{
		limit:        cfg.MaxParallel,
		policy:       cfg.RefillPolicy,
		pollInterval: time.Duration(cfg.PollInterval) * time.Second,
		sentinel:     sentinel,
		logger:       logging.NewComponentLogger(logger, "dispatch"),
		exits:        make(chan Handle, cfg.MaxParallel),
	}
}

// Running returns the current number of tracked jobs.
func (c *Controller) Running() int {
	c.reap()
	return len(c.jobs)
}

// Track records a launched job and arranges an exit notification for it.
// Callers must have obtained a slot via Acquire first.
func (c *Controller) Track(h Handle) {
	c.jobs = append(c.jobs, h)
	go func() {
		_ = h.Wait()
		c.exits <- h
	}()
}

// Acquire blocks until a slot is free or cancellation is observed, in which
// case it returns ErrCancelled. With the batch policy a full table drains
// completely before any slot is handed out again; with the eager policy the
// first exit frees a slot. Exit order, not launch order, decides reuse.
func (c *Controller) Acquire() error {
	c.reap()
	switch c.policy {
	case config.PolicyBatch:
		if len(c.jobs) < c.limit {
			return nil
		}
		return c.waitWhile(func() bool { return len(c.jobs) > 0 })
	case config.PolicyEager:
		return c.waitWhile(func() bool { return len(c.jobs) >= c.limit })
	default:
		return fmt.Errorf("unknown refill policy %q", c.policy)
	}
}

// Drain joins every outstanding job regardless of the sentinel. The run never
// finishes while a launched process is unaccounted for.
func (c *Controller) Drain() {
	for len(c.jobs) > 0 {
		h := <-c.exits
		c.remove(h)
		c.logger.Info("job exited", logging.String("job", h.Describe()), logging.Int("running", len(c.jobs)))
	}
}

// waitWhile folds in exits until cond turns false, checking the sentinel
// before each blocking wait and at each poll tick.
func (c *Controller) waitWhile(cond func() bool) error {
	for cond() {
		if c.sentinel.Stopped() {
			return ErrCancelled
		}
		select {
		case h := <-c.exits:
			c.remove(h)
			c.logger.Info("job exited", logging.String("job", h.Describe()), logging.Int("running", len(c.jobs)))
		case <-time.After(c.pollInterval):
		}
	}
	return nil
}

// reap folds in any exit notifications that are already pending without
// blocking.
func (c *Controller) reap() {
	for {
		select {
		case h := <-c.exits:
			c.remove(h)
		default:
			return
		}
	}
}

func (c *Controller) remove(h Handle) {
	for i, job := range c.jobs {
		if job == h {
			c.jobs = append(c.jobs[:i], c.jobs[i+1:]...)
			return
		}
	}
}
