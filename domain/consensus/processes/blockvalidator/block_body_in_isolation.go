package blockvalidator

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/ruleerrors"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/merkle"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/transactionhelper"
	"github.com/pkg/errors"
)

func (v *Validator) validateBodyInIsolation(block *externalapi.DomainBlock) error {
	err := v.checkBlockContainsAtLeastOneTransaction(block)
	if err != nil {
		return err
	}

	err = v.checkBlockHashMerkleRoot(block)
	if err != nil {
		return err
	}

	err = v.checkFirstBlockTransactionIsCoinbase(block)
	if err != nil {
		return err
	}

	err = v.checkBlockContainsOnlyOneCoinbase(block)
	if err != nil {
		return err
	}

	return v.checkBlockDoubleSpends(block)
}

func (v *Validator) checkBlockContainsAtLeastOneTransaction(block *externalapi.DomainBlock) error {
	if block.TransactionCount() == 0 {
		return errors.Wrapf(ruleerrors.ErrNoTransactions, "block does not contain "+
			"any transactions")
	}
	return nil
}

func (v *Validator) checkBlockHashMerkleRoot(block *externalapi.DomainBlock) error {
	calculatedHashMerkleRoot := merkle.CalculateHashMerkleRoot(block.Transactions())
	if block.MerkleRoot() != calculatedHashMerkleRoot {
		return errors.Wrapf(ruleerrors.ErrBadMerkleRoot, "block hash merkle root is invalid - block "+
			"header indicates %s, but calculated value is %s",
			block.MerkleRoot(), calculatedHashMerkleRoot)
	}
	return nil
}

func (v *Validator) checkFirstBlockTransactionIsCoinbase(block *externalapi.DomainBlock) error {
	if !block.Transactions()[0].IsCoinbase() {
		return errors.Wrapf(ruleerrors.ErrFirstTxNotCoinbase, "first transaction in "+
			"block is not a coinbase")
	}
	return nil
}

func (v *Validator) checkBlockContainsOnlyOneCoinbase(block *externalapi.DomainBlock) error {
	for i, tx := range block.Transactions()[1:] {
		if transactionhelper.HasCoinbaseInput(tx) {
			return errors.Wrapf(ruleerrors.ErrMultipleCoinbases, "block contains second coinbase at "+
				"index %d", i+1)
		}
	}
	return nil
}

// checkBlockDoubleSpends rejects two transactions of the same block
// spending the same outpoint. Duplicates within a single transaction are
// left to the transaction validator.
func (v *Validator) checkBlockDoubleSpends(block *externalapi.DomainBlock) error {
	spentBy := make(map[externalapi.DomainOutpoint]int)
	for i, tx := range block.Transactions()[1:] {
		txIndex := i + 1
		for _, input := range tx.Inputs() {
			if firstIndex, exists := spentBy[input.PreviousOutpoint]; exists && firstIndex != txIndex {
				return errors.Wrapf(ruleerrors.ErrDoubleSpendInSameBlock, "transaction %s at index %d "+
					"spends outpoint %s, already spent by the transaction at index %d",
					consensushashing.TransactionHash(tx), txIndex, input.PreviousOutpoint, firstIndex)
			}
			spentBy[input.PreviousOutpoint] = txIndex
		}
	}
	return nil
}
