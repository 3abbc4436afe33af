package miningmanager

import (
	"github.com/kaspanet/ledgersim/domain/consensus"
	"github.com/kaspanet/ledgersim/domain/miningmanager/blocktemplatebuilder"
	"github.com/kaspanet/ledgersim/domain/miningmanager/mempool"
)

// Factory instantiates new mining managers
type Factory interface {
	NewMiningManager(consensus consensus.Consensus) MiningManager
}

type factory struct{}

// NewMiningManager instantiate a new mining manager
func (f factory) NewMiningManager(consensus consensus.Consensus) MiningManager {
	mempool := mempool.New()
	blockTemplateBuilder := blocktemplatebuilder.New(consensus, mempool)

	return &miningManager{
		consensus:            consensus,
		mempool:              mempool,
		blockTemplateBuilder: blockTemplateBuilder,
	}
}

// NewFactory creates a new mining manager factory
func NewFactory() Factory {
	return factory{}
}
