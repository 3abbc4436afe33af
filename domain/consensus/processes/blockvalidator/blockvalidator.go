package blockvalidator

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/processes/transactionvalidator"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/utxo"
)

// BlockIndex is the part of the ledger the block validator reads.
type BlockIndex interface {
	Size() int
	Has(hash externalapi.DomainHash) bool
}

// UTXOProvider computes the UTXO set as of an admitted block.
type UTXOProvider interface {
	UTXOAsOf(blockHash externalapi.DomainHash) (utxo.Collection, error)
}

// Validator decides whether a block may be admitted to the ledger.
type Validator struct {
	miningReward         uint64
	transactionValidator *transactionvalidator.Validator
	blockIndex           BlockIndex
	utxoProvider         UTXOProvider
}

// New instantiates a new Validator
func New(miningReward uint64,
	transactionValidator *transactionvalidator.Validator,
	blockIndex BlockIndex,
	utxoProvider UTXOProvider) *Validator {

	return &Validator{
		miningReward:         miningReward,
		transactionValidator: transactionValidator,
		blockIndex:           blockIndex,
		utxoProvider:         utxoProvider,
	}
}

// ValidateBlock checks block both in isolation and against the UTXO set of
// its parent. A transaction of block may not spend an outpoint that
// pendingClaims assigns to a different pending transaction. It does not
// check whether the block is already admitted.
func (v *Validator) ValidateBlock(block *externalapi.DomainBlock,
	pendingClaims transactionvalidator.ClaimedOutpoints) error {

	err := v.validateBodyInIsolation(block)
	if err != nil {
		return err
	}
	return v.validateBodyInContext(block, pendingClaims)
}
