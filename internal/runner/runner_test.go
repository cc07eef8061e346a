package runner_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sweeper/internal/logging"
	"sweeper/internal/plan"
	"sweeper/internal/runner"
)

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func testItem(dir string) plan.Item {
	return plan.Item{
		Seed:           3,
		Itr:            7,
		Method:         "rk4",
		SeedDir:        dir,
		CheckpointPath: filepath.Join(dir, "itr_7.pkl"),
	}
}

func TestLaunchCapturesOutput(t *testing.T) {
	base := t.TempDir()
	stub := writeStub(t, base, "trainer", `echo "checkpoint=$2 seed=$4"`)

	r := runner.New(runner.Template{
		Binary:         stub,
		Args:           []string{"--checkpoint", "{checkpoint}", "--seed", "{seed}"},
		ExperimentName: "maze",
	}, filepath.Join(base, "jobs"), logging.NewNop())

	item := testItem(base)
	job, err := r.Launch(item)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if job.PID <= 0 {
		t.Fatalf("expected positive pid, got %d", job.PID)
	}
	if err := job.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if job.Alive() {
		t.Fatal("job still alive after Wait")
	}

	data, err := os.ReadFile(job.LogPath)
	if err != nil {
		t.Fatalf("read capture: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "checkpoint="+item.CheckpointPath) {
		t.Fatalf("capture missing checkpoint arg: %q", out)
	}
	if !strings.Contains(out, "seed=3") {
		t.Fatalf("capture missing seed arg: %q", out)
	}
	if filepath.Base(job.LogPath) != "itr7_rk4_seed3.log" {
		t.Fatalf("unexpected capture name: %q", job.LogPath)
	}
}

func TestLaunchDoesNotBlockOnChild(t *testing.T) {
	base := t.TempDir()
	stub := writeStub(t, base, "trainer", "sleep 2")

	r := runner.New(runner.Template{
		Binary: stub,
		Args:   []string{"{checkpoint}"},
	}, filepath.Join(base, "jobs"), logging.NewNop())

	start := time.Now()
	job, err := r.Launch(testItem(base))
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Launch blocked for %v", elapsed)
	}
	if !job.Alive() {
		t.Fatal("expected job to still be running")
	}
	_ = job.Wait()
}

func TestLaunchExpandsCompanion(t *testing.T) {
	base := t.TempDir()
	stub := writeStub(t, base, "trainer", `echo "companion=$1"`)

	r := runner.New(runner.Template{
		Binary:            stub,
		Args:              []string{"{companion}"},
		CompanionTemplate: "{seed_dir}/policy_itr_{itr}.pkl",
	}, filepath.Join(base, "jobs"), logging.NewNop())

	item := testItem(base)
	job, err := r.Launch(item)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := job.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	data, err := os.ReadFile(job.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "companion=" + base + "/policy_itr_7.pkl"
	if !strings.Contains(string(data), want) {
		t.Fatalf("capture %q missing %q", string(data), want)
	}
}

func TestLaunchRejectsUnknownPlaceholder(t *testing.T) {
	base := t.TempDir()
	stub := writeStub(t, base, "trainer", "exit 0")

	r := runner.New(runner.Template{
		Binary: stub,
		Args:   []string{"{bogus}"},
	}, filepath.Join(base, "jobs"), logging.NewNop())

	if _, err := r.Launch(testItem(base)); err == nil {
		t.Fatal("expected error for unknown placeholder")
	}
}

func TestLaunchMissingBinaryFails(t *testing.T) {
	base := t.TempDir()
	r := runner.New(runner.Template{
		Binary: filepath.Join(base, "nope"),
		Args:   []string{"{seed}"},
	}, filepath.Join(base, "jobs"), logging.NewNop())

	if _, err := r.Launch(testItem(base)); err == nil {
		t.Fatal("expected launch failure for missing binary")
	}
}
