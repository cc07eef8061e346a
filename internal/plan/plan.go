package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Item describes one unit of work: train from one checkpoint of one seed,
// optionally with a method tag. Items are value types and never mutated after
// enumeration.
type Item struct {
	Seed           int
	Itr            int
	CheckpointPath string
	SeedDir        string
	Method         string
}

// Key returns a stable identity string suitable for file names and log lines.
func (i Item) Key() string {
	if i.Method != "" {
		return fmt.Sprintf("itr%d_%s_seed%d", i.Itr, i.Method, i.Seed)
	}
	return fmt.Sprintf("itr%d_seed%d", i.Itr, i.Seed)
}

// Options controls enumeration.
type Options struct {
	DataRoot         string
	Gap              int
	MinItr           int
	MaxItr           int
	Methods          []string
	SkipLast         bool
	CheckpointPrefix string
	CheckpointSuffix string
}

// Enumerate expands the data root into the ordered list of work items.
//
// Seeds are visited in lexical directory order; checkpoints ascend by index
// within a seed. The gap stride counts every checkpoint of a seed (resetting
// per seed) and is applied before the inclusive [MinItr, MaxItr] filter, so a
// checkpoint excluded by range still advances the stride counter. With
// SkipLast, a seed's highest-indexed checkpoint is never emitted. Methods, if
// any, multiply each (seed, checkpoint) pair in configured order.
//
// All filesystem reads happen here; an unreadable data root or seed directory
// fails the whole enumeration so nothing is dispatched on partial knowledge.
func Enumerate(opts Options) ([]Item, error) {
	if opts.Gap < 1 {
		return nil, fmt.Errorf("gap must be >= 1, got %d", opts.Gap)
	}
	entries, err := os.ReadDir(opts.DataRoot)
	if err != nil {
		return nil, fmt.Errorf("read data root %q: %w", opts.DataRoot, err)
	}

	var items []Item
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		seed, ok := parseSeedID(entry.Name())
		if !ok {
			continue
		}
		seedDir := filepath.Join(opts.DataRoot, entry.Name())
		itrs, err := checkpointIndices(seedDir, opts.CheckpointPrefix, opts.CheckpointSuffix)
		if err != nil {
			return nil, fmt.Errorf("read seed directory %q: %w", seedDir, err)
		}
		if len(itrs) == 0 {
			continue
		}
		if opts.SkipLast {
			itrs = itrs[:len(itrs)-1]
		}
		for pos, itr := range itrs {
			if pos%opts.Gap != 0 {
				continue
			}
			if itr < opts.MinItr || itr > opts.MaxItr {
				continue
			}
			checkpoint := filepath.Join(seedDir, opts.CheckpointPrefix+strconv.Itoa(itr)+opts.CheckpointSuffix)
			if len(opts.Methods) == 0 {
				items = append(items, Item{Seed: seed, Itr: itr, CheckpointPath: checkpoint, SeedDir: seedDir})
				continue
			}
			for _, method := range opts.Methods {
				items = append(items, Item{Seed: seed, Itr: itr, CheckpointPath: checkpoint, SeedDir: seedDir, Method: method})
			}
		}
	}
	return items, nil
}

// parseSeedID extracts the integer seed id embedded in a seed directory name.
// Accepted forms: a bare integer ("10") or a trailing "_<int>" segment
// ("easy_10"). Directories without an id are ignored, not errors.
func parseSeedID(name string) (int, bool) {
	if id, err := strconv.Atoi(name); err == nil && id >= 0 {
		return id, true
	}
	idx := strings.LastIndexByte(name, '_')
	if idx < 0 || idx == len(name)-1 {
		return 0, false
	}
	id, err := strconv.Atoi(name[idx+1:])
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// checkpointIndices lists the checkpoint indices present in seedDir, ascending.
func checkpointIndices(seedDir, prefix, suffix string) ([]int, error) {
	entries, err := os.ReadDir(seedDir)
	if err != nil {
		return nil, err
	}
	var itrs []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		middle := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
		itr, err := strconv.Atoi(middle)
		if err != nil || itr < 0 {
			continue
		}
		itrs = append(itrs, itr)
	}
	sort.Ints(itrs)
	return itrs, nil
}
