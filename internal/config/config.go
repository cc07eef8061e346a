package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for a sweep.
type Paths struct {
	DataRoot        string `toml:"data_root"`
	ExperimentsRoot string `toml:"experiments_root"`
	QuarantineRoot  string `toml:"quarantine_root"`
	LogDir          string `toml:"log_dir"`
}

// Sweep controls which (seed, checkpoint, method) combinations are planned.
type Sweep struct {
	ExperimentName     string   `toml:"experiment_name"`
	Gap                int      `toml:"gap"`
	MinItr             int      `toml:"min_itr"`
	MaxItr             int      `toml:"max_itr"`
	Methods            []string `toml:"methods"`
	SkipLastCheckpoint bool     `toml:"skip_last_checkpoint"`
}

// Trainer describes the external training executable and its invocation
// template. Args entries may contain the placeholders {checkpoint}, {seed},
// {itr}, {method}, {companion}, and {exp_name}.
type Trainer struct {
	Binary            string   `toml:"binary"`
	Args              []string `toml:"args"`
	CompanionTemplate string   `toml:"companion_template"`
	TerminalArtifact  string   `toml:"terminal_artifact"`
	CheckpointPrefix  string   `toml:"checkpoint_prefix"`
	CheckpointSuffix  string   `toml:"checkpoint_suffix"`
}

// Dispatch contains parallelism and refill-policy configuration.
type Dispatch struct {
	MaxParallel  int    `toml:"max_parallel"`
	RefillPolicy string `toml:"refill_policy"`
	PollInterval int    `toml:"poll_interval"`
	StopFile     string `toml:"stop_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for sweeper.
//
// Configuration sections by subsystem:
//   - Paths: data, experiments, quarantine, and log directories
//   - Sweep: checkpoint stride, iteration range, and method list
//   - Trainer: external trainer binary and argument template
//   - Dispatch: max parallelism, refill policy, stop sentinel
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Sweep    Sweep    `toml:"sweep"`
	Trainer  Trainer  `toml:"trainer"`
	Dispatch Dispatch `toml:"dispatch"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sweeper/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sweeper.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into. The data root
// is deliberately left alone: it is read-only input and its absence is a
// planning error, not something to create on the fly.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ExperimentsRoot, c.Paths.QuarantineRoot, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JobLogDir returns the directory holding per-job output capture files.
func (c *Config) JobLogDir() string {
	return filepath.Join(c.Paths.LogDir, "jobs")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
