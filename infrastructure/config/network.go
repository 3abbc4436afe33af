package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/ledgersim/domain/chainconfig"
	"github.com/pkg/errors"
)

const maxMiningDifficulty = 64

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Testnet            bool   `long:"testnet" description:"Use the test network"`
	Simnet             bool   `long:"simnet" description:"Use the simulation network (default)"`
	OverrideParamsFile string `long:"override-params-file" description:"Overrides chain params (allowed only on simnet)"`

	ActiveNetParams *chainconfig.Params
}

type overrideParamsConfig struct {
	MiningReward           *uint64 `json:"miningReward"`
	ConfirmationDepth      *uint64 `json:"confirmationDepth"`
	UTXOCheckpointInterval *uint64 `json:"utxoCheckpointInterval"`
	MiningDifficulty       *int    `json:"miningDifficulty"`
	SeenCacheSize          *int    `json:"seenCacheSize"`
	RouteCapacity          *int    `json:"routeCapacity"`
}

// ResolveNetwork parses the network command line argument and sets ActiveNetParams accordingly.
// It returns error if more than one network was selected, nil otherwise.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	// The active params are a copy so that overrides never leak into the
	// package level defaults.
	params := chainconfig.SimnetParams
	numNets := 0
	if networkFlags.Testnet {
		numNets++
		params = chainconfig.TestnetParams
	}
	if networkFlags.Simnet {
		numNets++
		params = chainconfig.SimnetParams
	}
	if numNets > 1 {
		message := "Multiple networks parameters (testnet, simnet) cannot be used " +
			"together. Please choose only one network"
		err := errors.Errorf(message)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return err
	}
	networkFlags.ActiveNetParams = &params

	err := networkFlags.overrideParams()
	if err != nil {
		return err
	}
	return validateParams(networkFlags.ActiveNetParams)
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *chainconfig.Params {
	return networkFlags.ActiveNetParams
}

func (networkFlags *NetworkFlags) overrideParams() error {
	if networkFlags.OverrideParamsFile == "" {
		return nil
	}

	if networkFlags.Testnet {
		return errors.Errorf("override-params-file is allowed only when using simnet")
	}

	overrideParamsFile, err := os.Open(networkFlags.OverrideParamsFile)
	if err != nil {
		return errors.WithStack(err)
	}
	defer overrideParamsFile.Close()

	decoder := json.NewDecoder(overrideParamsFile)
	decoder.DisallowUnknownFields()
	config := &overrideParamsConfig{}
	err = decoder.Decode(config)
	if err != nil {
		return errors.Wrapf(err, "failed parsing %s", networkFlags.OverrideParamsFile)
	}

	params := networkFlags.ActiveNetParams
	if config.MiningReward != nil {
		params.MiningReward = *config.MiningReward
	}
	if config.ConfirmationDepth != nil {
		params.ConfirmationDepth = *config.ConfirmationDepth
	}
	if config.UTXOCheckpointInterval != nil {
		params.UTXOCheckpointInterval = *config.UTXOCheckpointInterval
	}
	if config.MiningDifficulty != nil {
		params.MiningDifficulty = *config.MiningDifficulty
	}
	if config.SeenCacheSize != nil {
		params.SeenCacheSize = *config.SeenCacheSize
	}
	if config.RouteCapacity != nil {
		params.RouteCapacity = *config.RouteCapacity
	}

	log.Debugf("Overrode %s params from %s", params.Name, networkFlags.OverrideParamsFile)
	return nil
}

func validateParams(params *chainconfig.Params) error {
	if params.MiningDifficulty < 0 || params.MiningDifficulty > maxMiningDifficulty {
		return errors.Errorf("mining difficulty must be between 0 and %d, got %d",
			maxMiningDifficulty, params.MiningDifficulty)
	}
	if params.UTXOCheckpointInterval == 0 {
		return errors.New("the UTXO checkpoint interval must be positive")
	}
	if params.SeenCacheSize < 1 {
		return errors.Errorf("the seen cache size must be positive, got %d", params.SeenCacheSize)
	}
	if params.RouteCapacity < 1 {
		return errors.Errorf("the route capacity must be positive, got %d", params.RouteCapacity)
	}
	return nil
}
