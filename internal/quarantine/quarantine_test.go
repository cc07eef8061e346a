package quarantine_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sweeper/internal/quarantine"
)

func setup(t *testing.T) (quarantine.Archiver, string) {
	t.Helper()
	base := t.TempDir()
	arch := quarantine.Archiver{
		ExperimentsRoot: filepath.Join(base, "experiments"),
		QuarantineRoot:  filepath.Join(base, "failed"),
	}
	if err := os.MkdirAll(arch.ExperimentsRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	return arch, base
}

func mkAttempt(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "progress.csv"), []byte("1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestArchiveMovesDirectory(t *testing.T) {
	arch, _ := setup(t)
	dir := mkAttempt(t, arch.ExperimentsRoot, "maze_itr2_seed1_20260101_120000")

	dest, err := arch.Archive(dir)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("source still present: %v", err)
	}
	want := filepath.Join(arch.QuarantineRoot, "maze_itr2_seed1_20260101_120000")
	if dest != want {
		t.Fatalf("dest = %q, want %q", dest, want)
	}
	if _, err := os.Stat(filepath.Join(dest, "progress.csv")); err != nil {
		t.Fatalf("diagnostics not preserved: %v", err)
	}
}

func TestArchiveDisambiguatesCollisions(t *testing.T) {
	arch, _ := setup(t)

	first := mkAttempt(t, arch.ExperimentsRoot, "maze_itr0_seed1_20260101_120000")
	dest1, err := arch.Archive(first)
	if err != nil {
		t.Fatalf("first Archive: %v", err)
	}

	second := mkAttempt(t, arch.ExperimentsRoot, "maze_itr0_seed1_20260101_120000")
	dest2, err := arch.Archive(second)
	if err != nil {
		t.Fatalf("second Archive: %v", err)
	}

	if dest1 == dest2 {
		t.Fatalf("collision not disambiguated: %q", dest1)
	}
	if !strings.HasPrefix(filepath.Base(dest2), "maze_itr0_seed1_20260101_120000.") {
		t.Fatalf("unexpected suffix form: %q", dest2)
	}
	for _, dest := range []string{dest1, dest2} {
		if _, err := os.Stat(dest); err != nil {
			t.Fatalf("expected %q to exist: %v", dest, err)
		}
	}
}

func TestArchiveMissingSourceFails(t *testing.T) {
	arch, _ := setup(t)
	if _, err := arch.Archive(filepath.Join(arch.ExperimentsRoot, "nope")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestArchiveOutsideRootFallsBackToBaseName(t *testing.T) {
	arch, base := setup(t)
	stray := mkAttempt(t, base, "stray_itr1_seed2_20260101_120000")

	dest, err := arch.Archive(stray)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	want := filepath.Join(arch.QuarantineRoot, "stray_itr1_seed2_20260101_120000")
	if dest != want {
		t.Fatalf("dest = %q, want %q", dest, want)
	}
}
