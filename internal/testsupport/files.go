package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"sweeper/internal/config"
)

// WriteSeed creates a seed directory named <fragment>_<seed> containing
// checkpoints for the given indices and returns its path.
func WriteSeed(t testing.TB, cfg *config.Config, fragment string, seed int, itrs ...int) string {
	t.Helper()
	dir := filepath.Join(cfg.Paths.DataRoot, fragment+"_"+strconv.Itoa(seed))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir seed dir: %v", err)
	}
	for _, itr := range itrs {
		name := cfg.Trainer.CheckpointPrefix + strconv.Itoa(itr) + cfg.Trainer.CheckpointSuffix
		if err := os.WriteFile(filepath.Join(dir, name), []byte("ckpt"), 0o644); err != nil {
			t.Fatalf("write checkpoint: %v", err)
		}
	}
	return dir
}

// WriteAttempt creates an attempt directory under the experiments root,
// optionally with the terminal artifact, and returns its path.
func WriteAttempt(t testing.TB, cfg *config.Config, name string, complete bool) string {
	t.Helper()
	dir := filepath.Join(cfg.Paths.ExperimentsRoot, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir attempt dir: %v", err)
	}
	if complete {
		artifact := filepath.Join(dir, cfg.Trainer.TerminalArtifact)
		if err := os.WriteFile(artifact, []byte("trained"), 0o644); err != nil {
			t.Fatalf("write terminal artifact: %v", err)
		}
	}
	return dir
}
