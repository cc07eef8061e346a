package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir         string
	configPath      string
	dataRoot        string
	experimentsRoot string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	dataRoot := filepath.Join(base, "seeds")
	experimentsRoot := filepath.Join(base, "experiments")
	if err := os.MkdirAll(dataRoot, 0o755); err != nil {
		t.Fatalf("mkdir data root: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_root = %q
experiments_root = %q
quarantine_root = %q
log_dir = %q

[sweep]
experiment_name = "sweep"
gap = 1
min_itr = 0
max_itr = 100

[trainer]
binary = "/bin/sh"
args = ["-c", "true", "sh", "{checkpoint}", "{seed}"]
terminal_artifact = "params.pkl"

[dispatch]
max_parallel = 2
refill_policy = "eager"
poll_interval = 1
`,
		dataRoot,
		experimentsRoot,
		filepath.Join(base, "quarantine"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		baseDir:         base,
		configPath:      configPath,
		dataRoot:        dataRoot,
		experimentsRoot: experimentsRoot,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSeedDir(t *testing.T, env *cliTestEnv, name string, itrs ...int) {
	t.Helper()
	dir := filepath.Join(env.dataRoot, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir seed dir: %v", err)
	}
	for _, itr := range itrs {
		path := filepath.Join(dir, fmt.Sprintf("itr_%d.pkl", itr))
		if err := os.WriteFile(path, []byte("ckpt"), 0o644); err != nil {
			t.Fatalf("write checkpoint: %v", err)
		}
	}
}

func writeAttemptDir(t *testing.T, env *cliTestEnv, name string, complete bool) {
	t.Helper()
	dir := filepath.Join(env.experimentsRoot, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir attempt dir: %v", err)
	}
	if complete {
		if err := os.WriteFile(filepath.Join(dir, "params.pkl"), []byte("trained"), 0o644); err != nil {
			t.Fatalf("write terminal artifact: %v", err)
		}
	}
}

func TestStatusClassifiesItems(t *testing.T) {
	env := setupCLITestEnv(t)
	writeSeedDir(t, env, "maze_1", 0, 2)
	writeAttemptDir(t, env, "sweep_itr0_seed1_20240101_000000", true)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "itr0_seed1") || !strings.Contains(out, "itr2_seed1") {
		t.Fatalf("status output missing items: %q", out)
	}
	if !strings.Contains(out, "2 items: 1 complete, 0 incomplete, 1 absent") {
		t.Fatalf("unexpected counts line: %q", out)
	}
}

func TestRunDryRunLaunchesNothing(t *testing.T) {
	env := setupCLITestEnv(t)
	writeSeedDir(t, env, "maze_3", 0)

	out, _, err := runCLI(t, []string{"run", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("run --dry-run: %v", err)
	}
	if !strings.Contains(out, "absent") {
		t.Fatalf("expected absent classification in output: %q", out)
	}

	entries, err := os.ReadDir(env.experimentsRoot)
	if err != nil {
		t.Fatalf("read experiments root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run created attempt directories: %v", entries)
	}
}

func TestRunReportsNoWork(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run with empty data root: %v", err)
	}
	if !strings.Contains(out, "nothing to do") {
		t.Fatalf("expected no-work message, got %q", out)
	}
}

func TestRunRejectsBadPolicyOverride(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "--policy", "bogus"}, env.configPath)
	if err == nil {
		t.Fatal("expected validation error for bogus refill policy")
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(env.baseDir, "fresh", "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config at %s: %v", target, err)
	}

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already-exists error, got %v", err)
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	// config show resolves its own path; point the default lookup at the
	// test file by running from a directory holding sweeper.toml.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(env.baseDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
	if err := os.Rename(env.configPath, filepath.Join(env.baseDir, "sweeper.toml")); err != nil {
		t.Fatalf("rename config: %v", err)
	}
	t.Setenv("HOME", env.baseDir)

	out, _, err := runCLI(t, []string{"config", "show"}, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "[paths]") || !strings.Contains(out, "experiments_root") {
		t.Fatalf("unexpected show output: %q", out)
	}
}
