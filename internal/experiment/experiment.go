package experiment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"sweeper/internal/plan"
)

// State classifies the on-disk trace of a prior attempt.
type State int

const (
	// StateAbsent means no attempt directory matches the item.
	StateAbsent State = iota
	// StateIncomplete means a directory exists but the terminal artifact is
	// missing: a prior attempt started and did not finish.
	StateIncomplete
	// StateComplete means the terminal artifact is present.
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateIncomplete:
		return "incomplete"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Record is the classification result for one item. Dir is set for
// StateIncomplete and StateComplete and names the selected attempt directory.
type Record struct {
	State State
	Dir   string
}

// Oracle classifies work items against the experiments root. It only reads
// the filesystem; it never creates, modifies, or removes anything.
type Oracle struct {
	// Root is the experiments root the trainer writes attempt directories into.
	Root string
	// TerminalArtifact is the bare file name whose presence marks success.
	TerminalArtifact string
}

// Classify reports whether a prior attempt for item exists and whether it
// finished. When several directories match (repeated retries), the newest by
// mtime wins; mtime ties go to the lexicographically greatest name. That
// selection is a policy inherited from the original tooling, not a guarantee
// of picking the right attempt under ambiguous timestamps.
func (o Oracle) Classify(item plan.Item) (Record, error) {
	entries, err := os.ReadDir(o.Root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{State: StateAbsent}, nil
		}
		return Record{}, fmt.Errorf("read experiments root %q: %w", o.Root, err)
	}

	pattern := matchPattern(item)
	var (
		bestName string
		bestTime time.Time
		found    bool
	)
	for _, entry := range entries {
		if !entry.IsDir() || !pattern.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return Record{}, fmt.Errorf("stat attempt directory %q: %w", entry.Name(), err)
		}
		mod := info.ModTime()
		switch {
		case !found,
			mod.After(bestTime),
			mod.Equal(bestTime) && entry.Name() > bestName:
			bestName = entry.Name()
			bestTime = mod
			found = true
		}
	}
	if !found {
		return Record{State: StateAbsent}, nil
	}

	dir := filepath.Join(o.Root, bestName)
	if _, err := os.Stat(filepath.Join(dir, o.TerminalArtifact)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{State: StateIncomplete, Dir: dir}, nil
		}
		return Record{}, fmt.Errorf("stat terminal artifact in %q: %w", dir, err)
	}
	return Record{State: StateComplete, Dir: dir}, nil
}

// matchPattern compiles the identity matcher for an item. Attempt directories
// are named <exp-name>_itr<K>[_<method>]_seed<S>_<stamp>; the underscore
// boundaries keep itr2 from matching itr20 and seed1 from matching seed10.
func matchPattern(item plan.Item) *regexp.Regexp {
	core := fmt.Sprintf("itr%d_", item.Itr)
	if item.Method != "" {
		core += regexp.QuoteMeta(item.Method) + "_"
	}
	core += fmt.Sprintf("seed%d", item.Seed)
	return regexp.MustCompile(`(^|_)` + core + `(_|$)`)
}

// AttemptDirName builds the canonical directory name for an attempt at the
// given timestamp. The trainer owns directory creation; this helper exists so
// tooling and tests agree with it on the convention.
func AttemptDirName(expName string, item plan.Item, stamp time.Time) string {
	return fmt.Sprintf("%s_%s_%s", expName, item.Key(), stamp.Format("20060102_150405"))
}
