package quarantine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Archiver relocates failed attempt directories out of the experiments root
// before a retry launches, preserving them for diagnosis.
type Archiver struct {
	// ExperimentsRoot anchors relative paths; quarantine mirrors its layout.
	ExperimentsRoot string
	// QuarantineRoot receives the moved directories.
	QuarantineRoot string
}

// Archive moves dir into the quarantine root and returns the destination
// path. The move is a single rename so a concurrently observing process never
// sees a half-copied directory. An existing destination of the same name is
// never overwritten; the new arrival gets a short random suffix instead.
func (a Archiver) Archive(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("quarantine: empty directory path")
	}
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("quarantine: stat %q: %w", dir, err)
	}

	rel, err := filepath.Rel(a.ExperimentsRoot, dir)
	if err != nil || rel == "." || filepath.IsAbs(rel) || hasParentHop(rel) {
		rel = filepath.Base(dir)
	}
	dest := filepath.Join(a.QuarantineRoot, rel)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("quarantine: create destination parent: %w", err)
	}

	if _, err := os.Stat(dest); err == nil {
		dest = dest + "." + uuid.NewString()[:8]
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("quarantine: stat destination %q: %w", dest, err)
	}

	if err := os.Rename(dir, dest); err != nil {
		return "", fmt.Errorf("quarantine: move %q to %q: %w", dir, dest, err)
	}
	return dest, nil
}

func hasParentHop(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}
