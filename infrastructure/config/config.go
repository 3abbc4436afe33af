package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/ledgersim/domain/consensus"
	"github.com/kaspanet/ledgersim/infrastructure/logger"
	"github.com/pkg/errors"
)

const (
	defaultLogFilename    = "ledgersim.log"
	defaultErrLogFilename = "ledgersim_err.log"
	defaultLogLevel       = "info"
	defaultNodes          = 4
	defaultBlocks         = 10
	defaultTransfers      = 3
	defaultTopology       = "ring"
)

var defaultLogDir = filepath.Join(os.TempDir(), "ledgersim", "logs")

// Flags defines the configuration options for ledgersim.
type Flags struct {
	ShowVersion   bool   `short:"V" long:"version" description:"Display version information and exit"`
	LogDir        string `long:"logdir" description:"Directory to log output."`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	SnapshotStore string `long:"snapshotstore" description:"Where nodes keep UTXO set snapshots" choice:"memory" choice:"leveldb"`
	Async         bool   `long:"async" description:"Relay through bounded per-node queues drained by goroutines"`
	Nodes         int    `short:"n" long:"nodes" description:"Number of nodes in the network"`
	Blocks        int    `short:"b" long:"blocks" description:"Number of blocks to mine"`
	Transfers     int    `long:"transfers" description:"Number of wallet transfers to make while mining"`
	Topology      string `long:"topology" description:"How nodes are linked" choice:"ring" choice:"line" choice:"mesh"`
	DumpState     bool   `long:"dumpstate" description:"Dump the best chain and the UTXO set of the first node when done"`
	Profile       string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65535"`
	NetworkFlags
}

// Config is the parsed and validated configuration
type Config struct {
	*Flags

	LogFile    string
	ErrLogFile string

	// ShowSubsystems is set when the debug level asks to list the
	// available subsystems instead of setting levels.
	ShowSubsystems bool
}

func defaultFlags() *Flags {
	return &Flags{
		LogDir:        defaultLogDir,
		DebugLevel:    defaultLogLevel,
		SnapshotStore: consensus.SnapshotStoreMemory,
		Nodes:         defaultNodes,
		Blocks:        defaultBlocks,
		Transfers:     defaultTransfers,
		Topology:      defaultTopology,
	}
}

// LoadConfig parses args, resolves the network and validates the result.
// Log levels are applied as a side effect.
func LoadConfig(args []string) (*Config, error) {
	cfgFlags := defaultFlags()
	parser := flags.NewParser(cfgFlags, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Flags:      cfgFlags,
		LogFile:    filepath.Join(cfgFlags.LogDir, defaultLogFilename),
		ErrLogFile: filepath.Join(cfgFlags.LogDir, defaultErrLogFilename),
	}
	if cfg.ShowVersion {
		return cfg, nil
	}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	if cfg.Nodes < 1 {
		return nil, errors.Errorf("--nodes must be at least 1, got %d", cfg.Nodes)
	}
	if cfg.Blocks < 0 {
		return nil, errors.Errorf("--blocks must not be negative, got %d", cfg.Blocks)
	}
	if cfg.Transfers < 0 {
		return nil, errors.Errorf("--transfers must not be negative, got %d", cfg.Transfers)
	}

	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return nil, errors.New("The profile port must be between 1024 and 65535")
		}
	}

	if cfg.DebugLevel == "show" {
		cfg.ShowSubsystems = true
		return cfg, nil
	}
	err = logger.ParseAndSetLogLevels(cfg.DebugLevel)
	if err != nil {
		return nil, err
	}

	log.Debugf("Loaded configuration for %s with %d nodes in a %s", cfg.NetParams().Name, cfg.Nodes, cfg.Topology)
	return cfg, nil
}
