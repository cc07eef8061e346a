package config

const (
	defaultDataRoot        = "~/data/seeds"
	defaultExperimentsRoot = "~/data/experiments"
	defaultQuarantineRoot  = "~/data/quarantine"
	defaultLogDir          = "~/.local/share/sweeper/logs"

	defaultExperimentName   = "sweep"
	defaultGap              = 1
	defaultMaxItr           = 1 << 30
	defaultTerminalArtifact = "params.pkl"
	defaultCheckpointPrefix = "itr_"
	defaultCheckpointSuffix = ".pkl"

	defaultMaxParallel  = 2
	defaultRefillPolicy = PolicyEager
	defaultPollInterval = 5

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Refill policy names accepted by dispatch.refill_policy.
const (
	PolicyBatch = "batch"
	PolicyEager = "eager"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataRoot:        defaultDataRoot,
			ExperimentsRoot: defaultExperimentsRoot,
			QuarantineRoot:  defaultQuarantineRoot,
			LogDir:          defaultLogDir,
		},
		Sweep: Sweep{
			ExperimentName: defaultExperimentName,
			Gap:            defaultGap,
			MinItr:         0,
			MaxItr:         defaultMaxItr,
		},
		Trainer: Trainer{
			Binary:           "train",
			Args:             []string{"--checkpoint", "{checkpoint}", "--seed", "{seed}"},
			TerminalArtifact: defaultTerminalArtifact,
			CheckpointPrefix: defaultCheckpointPrefix,
			CheckpointSuffix: defaultCheckpointSuffix,
		},
		Dispatch: Dispatch{
			MaxParallel:  defaultMaxParallel,
			RefillPolicy: defaultRefillPolicy,
			PollInterval: defaultPollInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
