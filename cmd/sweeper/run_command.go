package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sweeper/internal/config"
	"sweeper/internal/dispatch"
	"sweeper/internal/experiment"
	"sweeper/internal/logging"
	"sweeper/internal/plan"
	"sweeper/internal/preflight"
	"sweeper/internal/quarantine"
	"sweeper/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var maxParallel int
	var policy string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Dispatch trainer processes for every outstanding work item",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if maxParallel > 0 {
				cfg.Dispatch.MaxParallel = maxParallel
			}
			if policy != "" {
				cfg.Dispatch.RefillPolicy = policy
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			checks := preflight.RunAll(cfg)
			if !preflight.Passed(checks) {
				fmt.Fprintln(cmd.OutOrStdout(), renderPreflight(checks))
				return fmt.Errorf("preflight checks failed")
			}

			items, err := plan.Enumerate(planOptions(cfg))
			if err != nil {
				return dispatch.Wrap(dispatch.ErrEnumeration, "", err)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no work items enumerated; nothing to do")
				return nil
			}

			oracle := experiment.Oracle{
				Root:             cfg.Paths.ExperimentsRoot,
				TerminalArtifact: cfg.Trainer.TerminalArtifact,
			}
			if dryRun {
				return renderPlanTable(cmd.OutOrStdout(), oracle, items)
			}

			runID := time.Now().UTC().Format("20060102T150405")
			logger, logPath, err := logging.NewRunLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir, runID)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger.Info("sweep run starting",
				logging.String("run_id", runID),
				logging.Int("items", len(items)),
				logging.Int("max_parallel", cfg.Dispatch.MaxParallel),
				logging.String("policy", cfg.Dispatch.RefillPolicy),
				logging.String("log", logPath),
			)

			lock := dispatch.NewRunLock(cfg.Paths.ExperimentsRoot)
			if err := lock.Acquire(); err != nil {
				return err
			}
			defer func() {
				if err := lock.Release(); err != nil {
					logger.Warn("release run lock", logging.Error(err))
				}
			}()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			sentinel := dispatch.NewSentinel(signalCtx, cfg.Dispatch.StopFile)
			controller := dispatch.NewController(cfg.Dispatch, sentinel, logger)
			trainers := runner.New(trainerTemplate(cfg), cfg.JobLogDir(), logger)
			launcher := dispatch.LauncherFunc(func(item plan.Item) (dispatch.Handle, error) {
				return trainers.Launch(item)
			})
			driver := dispatch.NewDriver(oracle, archiver(cfg), controller, launcher, sentinel, logger)

			summary := driver.Run(items)
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			if summary.Cancelled {
				fmt.Fprintln(cmd.OutOrStdout(), "run cancelled; re-invoke to dispatch the remaining items")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify and report without launching anything")
	cmd.Flags().IntVar(&maxParallel, "max-parallel", 0, "Override dispatch.max_parallel")
	cmd.Flags().StringVar(&policy, "policy", "", "Override dispatch.refill_policy (batch or eager)")

	return cmd
}

func renderSummary(s dispatch.Summary) string {
	rows := [][]string{
		{"planned", strconv.Itoa(s.Planned)},
		{"skipped (complete)", strconv.Itoa(s.Skipped)},
		{"quarantined", strconv.Itoa(s.Archived)},
		{"launched", strconv.Itoa(s.Launched)},
		{"failures", strconv.Itoa(s.Failures)},
	}
	return renderTable([]string{"Outcome", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}

func renderPreflight(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "FAIL"
		if r.Passed {
			status = "ok"
		}
		rows = append(rows, []string{r.Name, status, r.Detail})
	}
	return renderTable([]string{"Check", "Status", "Detail"}, rows, nil)
}

func archiver(cfg *config.Config) quarantine.Archiver {
	return quarantine.Archiver{
		ExperimentsRoot: cfg.Paths.ExperimentsRoot,
		QuarantineRoot:  cfg.Paths.QuarantineRoot,
	}
}
