package consensus

import (
	"github.com/kaspanet/ledgersim/domain/chainconfig"
	"github.com/kaspanet/ledgersim/domain/consensus/datastructures/utxosnapshotstore"
	"github.com/kaspanet/ledgersim/domain/consensus/ledger"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/processes/blockvalidator"
	"github.com/kaspanet/ledgersim/domain/consensus/processes/transactionvalidator"
	"github.com/kaspanet/ledgersim/domain/consensus/processes/utxotracker"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/utxo"
	"github.com/pkg/errors"
)

// Consensus maintains the current core state of the node: the block tree,
// the UTXO sets derived from it, and the rules deciding what may join it.
// Consensus is not safe for concurrent use.
type Consensus interface {
	ValidateTransaction(transaction *externalapi.DomainTransaction,
		claimed transactionvalidator.ClaimedOutpoints) (fee uint64, err error)
	ValidateAndInsertBlock(block *externalapi.DomainBlock, pendingClaims transactionvalidator.ClaimedOutpoints) error

	UTXOAsOfBestTip() (utxo.Collection, error)
	UTXOAsOf(blockHash externalapi.DomainHash) (utxo.Collection, error)
	UTXOCommitment(blockHash externalapi.DomainHash) (externalapi.DomainHash, error)

	HasBlock(blockHash externalapi.DomainHash) bool
	BlockCount() int
	GetBlock(blockHash externalapi.DomainHash) (*externalapi.DomainBlock, error)
	GetBlockHeight(blockHash externalapi.DomainHash) (uint64, error)
	GetHead() (*externalapi.DomainBlock, error)
	GetBestTip() (*externalapi.DomainBlock, error)
	GetBestTipHash() (externalapi.DomainHash, error)
	GetBestHeight() (uint64, error)
	GetTips() []externalapi.DomainHash
	GetBestChain() []externalapi.DomainHash
	IsInBestChain(blockHash externalapi.DomainHash) (bool, error)
	IsConfirmed(blockHash externalapi.DomainHash) (bool, error)

	GetTransaction(transactionHash externalapi.DomainHash) (*externalapi.DomainTransaction, error)
	GetContainingBlock(transactionHash externalapi.DomainHash) (*externalapi.DomainBlock, error)

	Params() *chainconfig.Params
	Close() error
}

type consensus struct {
	params *chainconfig.Params

	ledger               *ledger.Ledger
	utxoSnapshotStore    utxosnapshotstore.Store
	utxoTracker          *utxotracker.Tracker
	transactionValidator *transactionvalidator.Validator
	blockValidator       *blockvalidator.Validator
}

// ValidateTransaction validates transaction against the UTXO set of the best
// tip and the outpoints claimed by other pending transactions
func (s *consensus) ValidateTransaction(transaction *externalapi.DomainTransaction,
	claimed transactionvalidator.ClaimedOutpoints) (uint64, error) {

	utxoSet, err := s.UTXOAsOfBestTip()
	if err != nil {
		return 0, err
	}
	return s.transactionValidator.ValidateTransaction(transaction, utxoSet, claimed)
}

// ValidateAndInsertBlock validates the given block and, if valid, admits it
// to the ledger. pendingClaims are the outpoints spent by pending
// transactions; the block may spend them only through those same
// transactions.
func (s *consensus) ValidateAndInsertBlock(block *externalapi.DomainBlock,
	pendingClaims transactionvalidator.ClaimedOutpoints) error {

	blockHash := consensushashing.BlockHash(block)
	if s.ledger.Has(blockHash) {
		return errors.Wrapf(ledger.ErrDuplicateBlock, "block %s", blockHash)
	}

	err := s.blockValidator.ValidateBlock(block, pendingClaims)
	if err != nil {
		return err
	}

	err = s.ledger.AddBlock(block)
	if err != nil {
		return err
	}

	height, err := s.ledger.Height(blockHash)
	if err != nil {
		return err
	}
	log.Debugf("Inserted block %s at height %d with %d transactions",
		blockHash, height, block.TransactionCount())
	return nil
}

// UTXOAsOfBestTip returns the UTXO set as of the best tip, or an empty set
// if no block was admitted yet
func (s *consensus) UTXOAsOfBestTip() (utxo.Collection, error) {
	bestTipHash, err := s.ledger.BestTipHash()
	if errors.Is(err, ledger.ErrEmptyLedger) {
		return utxo.NewCollection(), nil
	}
	if err != nil {
		return nil, err
	}
	return s.utxoTracker.UTXOAsOf(bestTipHash)
}

func (s *consensus) UTXOAsOf(blockHash externalapi.DomainHash) (utxo.Collection, error) {
	return s.utxoTracker.UTXOAsOf(blockHash)
}

func (s *consensus) UTXOCommitment(blockHash externalapi.DomainHash) (externalapi.DomainHash, error) {
	return s.utxoTracker.Commitment(blockHash)
}

func (s *consensus) HasBlock(blockHash externalapi.DomainHash) bool {
	return s.ledger.Has(blockHash)
}

func (s *consensus) BlockCount() int {
	return s.ledger.Size()
}

func (s *consensus) GetBlock(blockHash externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	return s.ledger.Block(blockHash)
}

func (s *consensus) GetBlockHeight(blockHash externalapi.DomainHash) (uint64, error) {
	return s.ledger.Height(blockHash)
}

func (s *consensus) GetHead() (*externalapi.DomainBlock, error) {
	return s.ledger.Head()
}

func (s *consensus) GetBestTip() (*externalapi.DomainBlock, error) {
	return s.ledger.BestTip()
}

func (s *consensus) GetBestTipHash() (externalapi.DomainHash, error) {
	return s.ledger.BestTipHash()
}

func (s *consensus) GetBestHeight() (uint64, error) {
	return s.ledger.BestHeight()
}

func (s *consensus) GetTips() []externalapi.DomainHash {
	return s.ledger.Tips()
}

func (s *consensus) GetBestChain() []externalapi.DomainHash {
	return s.ledger.BestChain()
}

func (s *consensus) IsInBestChain(blockHash externalapi.DomainHash) (bool, error) {
	return s.ledger.IsInBestChain(blockHash)
}

// IsConfirmed returns whether blockHash is on the best chain with at least
// the network's confirmation depth of blocks built on top of it
func (s *consensus) IsConfirmed(blockHash externalapi.DomainHash) (bool, error) {
	return s.ledger.IsConfirmed(blockHash, s.params.ConfirmationDepth)
}

func (s *consensus) GetTransaction(transactionHash externalapi.DomainHash) (*externalapi.DomainTransaction, error) {
	return s.ledger.Transaction(transactionHash)
}

func (s *consensus) GetContainingBlock(transactionHash externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	return s.ledger.ContainingBlock(transactionHash)
}

func (s *consensus) Params() *chainconfig.Params {
	return s.params
}

func (s *consensus) Close() error {
	return s.utxoSnapshotStore.Close()
}
