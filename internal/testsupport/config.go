package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"sweeper/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataRoot = filepath.Join(base, "seeds")
	cfgVal.Paths.ExperimentsRoot = filepath.Join(base, "experiments")
	cfgVal.Paths.QuarantineRoot = filepath.Join(base, "quarantine")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Dispatch.StopFile = filepath.Join(base, "experiments", "STOP")
	cfgVal.Dispatch.PollInterval = 1

	if err := os.MkdirAll(cfgVal.Paths.DataRoot, 0o755); err != nil {
		t.Fatalf("mkdir data root: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMaxParallel overrides the parallelism bound.
func WithMaxParallel(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dispatch.MaxParallel = n
	}
}

// WithRefillPolicy selects the batch or eager refill policy.
func WithRefillPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dispatch.RefillPolicy = policy
	}
}

// WithMethods sets sweep methods and rewrites the trainer args so the
// template stays valid.
func WithMethods(methods ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sweep.Methods = methods
		b.cfg.Trainer.Args = append(b.cfg.Trainer.Args, "--method", "{method}")
	}
}

// WithStubTrainer writes a stub trainer executable and points the config at
// it. The stub script body runs with the expanded trainer arguments.
func WithStubTrainer(body string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "trainer")
		script := []byte("#!/bin/sh\n" + body + "\n")
		if err := os.WriteFile(target, script, 0o755); err != nil {
			b.t.Fatalf("write stub trainer: %v", err)
		}
		b.cfg.Trainer.Binary = target
	}
}
