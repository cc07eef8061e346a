package config

import (
	"path/filepath"
	"strings"
)

// normalize expands path fields, trims free-form strings, and fills derived
// defaults. Runs before Validate so validation sees final values.
func (c *Config) normalize() error {
	var err error
	if c.Paths.DataRoot, err = expandPath(c.Paths.DataRoot); err != nil {
		return err
	}
	if c.Paths.ExperimentsRoot, err = expandPath(c.Paths.ExperimentsRoot); err != nil {
		return err
	}
	if c.Paths.QuarantineRoot, err = expandPath(c.Paths.QuarantineRoot); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Sweep.ExperimentName = strings.TrimSpace(c.Sweep.ExperimentName)
	c.Trainer.Binary = strings.TrimSpace(c.Trainer.Binary)
	c.Trainer.TerminalArtifact = strings.TrimSpace(c.Trainer.TerminalArtifact)
	c.Trainer.CompanionTemplate = strings.TrimSpace(c.Trainer.CompanionTemplate)

	methods := make([]string, 0, len(c.Sweep.Methods))
	for _, m := range c.Sweep.Methods {
		if m = strings.TrimSpace(m); m != "" {
			methods = append(methods, m)
		}
	}
	c.Sweep.Methods = methods

	c.Dispatch.RefillPolicy = strings.ToLower(strings.TrimSpace(c.Dispatch.RefillPolicy))
	if c.Dispatch.RefillPolicy == "" {
		c.Dispatch.RefillPolicy = defaultRefillPolicy
	}

	stop := strings.TrimSpace(c.Dispatch.StopFile)
	if stop == "" {
		c.Dispatch.StopFile = filepath.Join(c.Paths.ExperimentsRoot, "STOP")
	} else {
		if c.Dispatch.StopFile, err = expandPath(stop); err != nil {
			return err
		}
	}

	return nil
}
