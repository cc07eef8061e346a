package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sweeper/internal/config"
	"sweeper/internal/plan"
	"sweeper/internal/runner"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func planOptions(cfg *config.Config) plan.Options {
	return plan.Options{
		DataRoot:         cfg.Paths.DataRoot,
		Gap:              cfg.Sweep.Gap,
		MinItr:           cfg.Sweep.MinItr,
		MaxItr:           cfg.Sweep.MaxItr,
		Methods:          cfg.Sweep.Methods,
		SkipLast:         cfg.Sweep.SkipLastCheckpoint,
		CheckpointPrefix: cfg.Trainer.CheckpointPrefix,
		CheckpointSuffix: cfg.Trainer.CheckpointSuffix,
	}
}

func trainerTemplate(cfg *config.Config) runner.Template {
	return runner.Template{
		Binary:            cfg.Trainer.Binary,
		Args:              cfg.Trainer.Args,
		CompanionTemplate: cfg.Trainer.CompanionTemplate,
		ExperimentName:    cfg.Sweep.ExperimentName,
	}
}
