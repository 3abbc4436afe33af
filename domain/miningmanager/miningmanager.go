package miningmanager

import (
	"github.com/kaspanet/ledgersim/domain/consensus"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/processes/transactionvalidator"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	miningmanagermodel "github.com/kaspanet/ledgersim/domain/miningmanager/model"
)

// MiningManager creates block templates for mining as well as maintaining
// known transactions that have no yet been added to any block
type MiningManager interface {
	GetBlockTemplate(rewardAddress externalapi.DomainAddress) (*externalapi.DomainBlock, error)
	SolveBlock(template *externalapi.DomainBlock) *externalapi.DomainBlock
	HandleNewBlock(block *externalapi.DomainBlock) []externalapi.DomainHash
	ValidateAndInsertTransaction(transaction *externalapi.DomainTransaction) (fee uint64, err error)
	HasTransaction(transactionHash externalapi.DomainHash) bool
	PendingClaims() transactionvalidator.ClaimedOutpoints
	AllTransactions() []*externalapi.DomainTransaction
	TransactionCount() int
}

type miningManager struct {
	consensus            consensus.Consensus
	mempool              miningmanagermodel.Mempool
	blockTemplateBuilder miningmanagermodel.BlockTemplateBuilder
}

// GetBlockTemplate creates a block template for a miner to consume
func (mm *miningManager) GetBlockTemplate(rewardAddress externalapi.DomainAddress) (*externalapi.DomainBlock, error) {
	return mm.blockTemplateBuilder.GetBlockTemplate(rewardAddress)
}

// SolveBlock searches for a nonce meeting the mining difficulty
func (mm *miningManager) SolveBlock(template *externalapi.DomainBlock) *externalapi.DomainBlock {
	return mm.blockTemplateBuilder.SolveBlock(template)
}

// HandleNewBlock drops the transactions of a newly admitted block, and
// those conflicting with it, from the mempool
func (mm *miningManager) HandleNewBlock(block *externalapi.DomainBlock) []externalapi.DomainHash {
	return mm.mempool.RemoveBlockTransactions(block)
}

// ValidateAndInsertTransaction validates the given transaction against the
// best tip and the rest of the mempool, and, if valid, adds it to the
// mempool
func (mm *miningManager) ValidateAndInsertTransaction(transaction *externalapi.DomainTransaction) (uint64, error) {
	transactionHash := consensushashing.TransactionHash(transaction)
	fee, err := mm.consensus.ValidateTransaction(transaction, mm.mempool.ClaimedOutpoints(&transactionHash))
	if err != nil {
		return 0, err
	}
	mm.mempool.Add(transaction)
	return fee, nil
}

// PendingClaims returns the outpoints spent by mempool transactions
func (mm *miningManager) PendingClaims() transactionvalidator.ClaimedOutpoints {
	return mm.mempool.ClaimedOutpoints(nil)
}

func (mm *miningManager) HasTransaction(transactionHash externalapi.DomainHash) bool {
	return mm.mempool.Has(transactionHash)
}

func (mm *miningManager) AllTransactions() []*externalapi.DomainTransaction {
	return mm.mempool.Transactions()
}

func (mm *miningManager) TransactionCount() int {
	return mm.mempool.Count()
}
