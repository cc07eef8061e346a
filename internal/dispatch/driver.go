package dispatch

import (
	"errors"
	"log/slog"

	"sweeper/internal/experiment"
	"sweeper/internal/logging"
	"sweeper/internal/plan"
	"sweeper/internal/quarantine"
)

// Launcher starts the trainer process for one item.
type Launcher interface {
	Launch(item plan.Item) (Handle, error)
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(item plan.Item) (Handle, error)

func (f LauncherFunc) Launch(item plan.Item) (Handle, error) { return f(item) }

// Summary aggregates what a run did.
type Summary struct {
	Planned   int
	Skipped   int
	Archived  int
	Launched  int
	Failures  int
	Cancelled bool
}

// Driver walks the planned items in order: skip completed work, quarantine
// incomplete attempts, then dispatch through the controller. After the last
// item (or on cancellation) it drains every outstanding job before returning.
type Driver struct {
	oracle     experiment.Oracle
	archiver   quarantine.Archiver
	controller *Controller
	launcher   Launcher
	sentinel   *Sentinel
	logger     *slog.Logger
}

// NewDriver wires the run pipeline together.
func NewDriver(oracle experiment.Oracle, archiver quarantine.Archiver, controller *Controller, launcher Launcher, sentinel *Sentinel, logger *slog.Logger) *Driver {
	return &Driver{
		oracle:     oracle,
		archiver:   archiver,
		controller: controller,
		launcher:   launcher,
		sentinel:   sentinel,
		logger:     logging.NewComponentLogger(logger, "driver"),
	}
}

// Run dispatches items in enumeration order and blocks until every launched
// job has exited. Per-item failures (archive, launch) are logged and skipped;
// only the sentinel stops the dispatch loop early, and even then draining
// still completes.
func (d *Driver) Run(items []plan.Item) Summary {
	summary := Summary{Planned: len(items)}

	for _, item := range items {
		if d.sentinel.Stopped() {
			summary.Cancelled = true
			d.logger.Info("stopping new dispatch", logging.String("trigger", d.sentinel.Reason()))
			break
		}

		rec, err := d.oracle.Classify(item)
		if err != nil {
			summary.Failures++
			d.logger.Error("classification failed; item skipped",
				logging.String("item", item.Key()),
				logging.Error(err),
			)
			continue
		}

		switch rec.State {
		case experiment.StateComplete:
			summary.Skipped++
			d.logger.Debug("already complete", logging.String("item", item.Key()), logging.String("dir", rec.Dir))
			continue
		case experiment.StateIncomplete:
			dest, err := d.archiver.Archive(rec.Dir)
			if err != nil {
				summary.Failures++
				d.logger.Error("quarantine failed; item skipped",
					logging.String("item", item.Key()),
					logging.Error(Wrap(ErrArchive, item.Key(), err)),
				)
				continue
			}
			summary.Archived++
			d.logger.Info("incomplete attempt quarantined",
				logging.String("item", item.Key()),
				logging.String("from", rec.Dir),
				logging.String("to", dest),
			)
		}

		if err := d.controller.Acquire(); err != nil {
			if errors.Is(err, ErrCancelled) {
				summary.Cancelled = true
				d.logger.Info("stopping new dispatch", logging.String("trigger", d.sentinel.Reason()))
			} else {
				summary.Failures++
				d.logger.Error("slot acquisition failed", logging.Error(err))
			}
			break
		}

		handle, err := d.launcher.Launch(item)
		if err != nil {
			summary.Failures++
			d.logger.Error("launch failed; item skipped",
				logging.String("item", item.Key()),
				logging.Error(Wrap(ErrLaunch, item.Key(), err)),
			)
			continue
		}
		d.controller.Track(handle)
		summary.Launched++
	}

	d.logger.Info("draining outstanding jobs", logging.Int("running", d.controller.Running()))
	d.controller.Drain()

	d.logger.Info("run finished",
		logging.Int("planned", summary.Planned),
		logging.Int("skipped", summary.Skipped),
		logging.Int("archived", summary.Archived),
		logging.Int("launched", summary.Launched),
		logging.Int("failures", summary.Failures),
		logging.Bool("cancelled", summary.Cancelled),
	)
	return summary
}
