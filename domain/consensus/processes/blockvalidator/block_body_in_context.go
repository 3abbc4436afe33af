package blockvalidator

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/processes/transactionvalidator"
	"github.com/kaspanet/ledgersim/domain/consensus/ruleerrors"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/transactionhelper"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/utxo"
	"github.com/kaspanet/ledgersim/infrastructure/logger"
	"github.com/pkg/errors"
)

func (v *Validator) validateBodyInContext(block *externalapi.DomainBlock,
	pendingClaims transactionvalidator.ClaimedOutpoints) error {

	onEnd := logger.LogAndMeasureExecutionTime(log, "validateBodyInContext")
	defer onEnd()

	parentUTXOSet, err := v.parentUTXOSet(block)
	if err != nil {
		return err
	}

	err = v.checkNoOverwrittenOutputs(block, parentUTXOSet)
	if err != nil {
		return err
	}

	fees, err := v.checkTransactionsInContext(block, parentUTXOSet, pendingClaims)
	if err != nil {
		return err
	}

	return v.checkCoinbaseAmount(block, fees)
}

// parentUTXOSet returns the UTXO set the transactions of block spend from.
// A block offered to an empty ledger becomes its root, so it spends from the
// empty set whatever parent it declares.
func (v *Validator) parentUTXOSet(block *externalapi.DomainBlock) (utxo.Collection, error) {
	if v.blockIndex.Size() == 0 {
		return utxo.NewCollection(), nil
	}
	parentHash := block.ParentHash()
	if !v.blockIndex.Has(parentHash) {
		return nil, ruleerrors.NewErrMissingParents([]externalapi.DomainHash{parentHash})
	}
	return v.utxoProvider.UTXOAsOf(parentHash)
}

// checkNoOverwrittenOutputs rejects blocks whose transactions create an
// outpoint that is already unspent, either in the parent's UTXO set or
// earlier in the same block. This happens when a transaction, typically a
// coinbase paying the same amount to the same address, is repeated.
func (v *Validator) checkNoOverwrittenOutputs(block *externalapi.DomainBlock, parentUTXOSet utxo.Collection) error {
	created := make(map[externalapi.DomainHash]struct{})
	for _, tx := range block.Transactions() {
		txHash := consensushashing.TransactionHash(tx)
		if _, exists := created[txHash]; exists {
			return errors.Wrapf(ruleerrors.ErrOverwriteTx, "block contains transaction %s "+
				"more than once", txHash)
		}
		created[txHash] = struct{}{}

		for i := 0; i < tx.OutputCount(); i++ {
			outpoint := externalapi.DomainOutpoint{TransactionID: txHash, Index: int32(i)}
			if parentUTXOSet.Contains(outpoint) {
				return errors.Wrapf(ruleerrors.ErrOverwriteTx, "transaction %s creates outpoint %s "+
					"which is already unspent", txHash, outpoint)
			}
		}
	}
	return nil
}

// checkTransactionsInContext validates every non-coinbase transaction of
// block against parentUTXOSet and the pending claims, and returns the sum of
// their fees. Outpoints spent earlier in the block count as claimed too.
func (v *Validator) checkTransactionsInContext(block *externalapi.DomainBlock,
	parentUTXOSet utxo.Collection, pendingClaims transactionvalidator.ClaimedOutpoints) (uint64, error) {

	claimed := make(transactionvalidator.ClaimedOutpoints, len(pendingClaims))
	for outpoint, claimer := range pendingClaims {
		claimed[outpoint] = claimer
	}
	claimedInBlock := make(map[externalapi.DomainOutpoint]struct{})

	fees := uint64(0)
	for _, tx := range block.Transactions()[1:] {
		txHash := consensushashing.TransactionHash(tx)
		fee, err := v.transactionValidator.ValidateTransaction(tx, parentUTXOSet, claimed)
		if err != nil {
			if errors.Is(err, ruleerrors.ErrDoubleSpendInMempool) && spendsAny(tx, claimedInBlock) {
				return 0, errors.Wrapf(ruleerrors.ErrDoubleSpendInSameBlock, "transaction %s: %s", txHash, err)
			}
			return 0, err
		}
		for _, input := range tx.Inputs() {
			claimed[input.PreviousOutpoint] = txHash
			claimedInBlock[input.PreviousOutpoint] = struct{}{}
		}

		fees, err = transactionhelper.AddValues(fees, fee)
		if err != nil {
			return 0, errors.Wrapf(ruleerrors.ErrBadCoinbaseAmount, "the fees of the block overflow: %s", err)
		}
		log.Tracef("Transaction %s pays a fee of %d", txHash, fee)
	}
	return fees, nil
}

func spendsAny(tx *externalapi.DomainTransaction, outpoints map[externalapi.DomainOutpoint]struct{}) bool {
	for _, input := range tx.Inputs() {
		if _, ok := outpoints[input.PreviousOutpoint]; ok {
			return true
		}
	}
	return false
}

func (v *Validator) checkCoinbaseAmount(block *externalapi.DomainBlock, fees uint64) error {
	coinbase := block.Transactions()[0]
	coinbaseValue, err := transactionhelper.TotalOutputValue(coinbase)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrBadTxOutValue, "total value of the coinbase outputs "+
			"overflows: %s", err)
	}

	expectedValue, err := transactionhelper.AddValues(v.miningReward, fees)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrBadCoinbaseAmount, "mining reward plus fees overflows: %s", err)
	}

	if coinbaseValue != expectedValue {
		return errors.Wrapf(ruleerrors.ErrBadCoinbaseAmount, "coinbase transaction for block pays %d "+
			"which is not equal to the expected value of %d (reward %d plus fees %d)",
			coinbaseValue, expectedValue, v.miningReward, fees)
	}
	return nil
}
