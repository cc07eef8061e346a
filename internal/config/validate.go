package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSweep(); err != nil {
		return err
	}
	if err := c.validateTrainer(); err != nil {
		return err
	}
	if err := c.validateDispatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataRoot == "" {
		return errors.New("paths.data_root must be set")
	}
	if c.Paths.ExperimentsRoot == "" {
		return errors.New("paths.experiments_root must be set")
	}
	if c.Paths.QuarantineRoot == "" {
		return errors.New("paths.quarantine_root must be set")
	}
	if c.Paths.QuarantineRoot == c.Paths.ExperimentsRoot {
		return errors.New("paths.quarantine_root must differ from paths.experiments_root")
	}
	return nil
}

func (c *Config) validateSweep() error {
	if c.Sweep.ExperimentName == "" {
		return errors.New("sweep.experiment_name must be set")
	}
	if c.Sweep.Gap < 1 {
		return errors.New("sweep.gap must be >= 1")
	}
	if c.Sweep.MinItr < 0 {
		return errors.New("sweep.min_itr must be >= 0")
	}
	if c.Sweep.MaxItr < c.Sweep.MinItr {
		return errors.New("sweep.max_itr must be >= sweep.min_itr")
	}
	seen := make(map[string]struct{}, len(c.Sweep.Methods))
	for _, m := range c.Sweep.Methods {
		if _, ok := seen[m]; ok {
			return fmt.Errorf("sweep.methods contains duplicate %q", m)
		}
		seen[m] = struct{}{}
	}
	return nil
}

func (c *Config) validateTrainer() error {
	if c.Trainer.Binary == "" {
		return errors.New("trainer.binary must be set")
	}
	if len(c.Trainer.Args) == 0 {
		return errors.New("trainer.args must not be empty")
	}
	if c.Trainer.TerminalArtifact == "" {
		return errors.New("trainer.terminal_artifact must be set")
	}
	if strings.ContainsAny(c.Trainer.TerminalArtifact, "/\\") {
		return errors.New("trainer.terminal_artifact must be a bare file name")
	}
	joined := strings.Join(c.Trainer.Args, " ")
	if len(c.Sweep.Methods) > 0 && !strings.Contains(joined, "{method}") {
		return errors.New("trainer.args must reference {method} when sweep.methods is set")
	}
	if c.Trainer.CompanionTemplate != "" && !strings.Contains(joined, "{companion}") {
		return errors.New("trainer.args must reference {companion} when trainer.companion_template is set")
	}
	return nil
}

func (c *Config) validateDispatch() error {
	if c.Dispatch.MaxParallel < 1 {
		return errors.New("dispatch.max_parallel must be >= 1")
	}
	switch c.Dispatch.RefillPolicy {
	case PolicyBatch, PolicyEager:
	default:
		return fmt.Errorf("dispatch.refill_policy must be %q or %q", PolicyBatch, PolicyEager)
	}
	if c.Dispatch.PollInterval <= 0 {
		return errors.New("dispatch.poll_interval must be positive (seconds)")
	}
	return nil
}
