package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaspanet/ledgersim/infrastructure/config"
	"github.com/kaspanet/ledgersim/infrastructure/logger"
	"github.com/kaspanet/ledgersim/util/panics"
	"github.com/kaspanet/ledgersim/version"
)

func main() {
	defer panics.HandlePanic(log, nil)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}

	if cfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}
	if cfg.ShowSubsystems {
		fmt.Println("Supported subsystems", logger.SupportedSubsystems())
		os.Exit(0)
	}

	err = logger.InitLog(cfg.LogFile, cfg.ErrLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing the logger: %s\n", err)
		os.Exit(1)
	}
	defer logger.BackendLog.Close()

	log.Infof("Version %s", version.Version())

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		startProfileServer(cfg.Profile)
	}

	done := make(chan error, 1)
	spawn(func() {
		done <- runSimulation(cfg)
	})
	err = <-done
	if err != nil {
		panics.Exit(log, fmt.Sprintf("Simulation failed: %+v", err))
	}
}
