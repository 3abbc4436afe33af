package transactionvalidator

import (
	"bytes"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/ruleerrors"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/transactionhelper"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/utxo"
	"github.com/pkg/errors"
)

// validateTransactionInContext checks every input of tx against utxoSet
// and claimed, and returns the total value tx spends.
func (v *Validator) validateTransactionInContext(tx *externalapi.DomainTransaction, utxoSet utxo.Collection,
	claimed ClaimedOutpoints) (totalIn uint64, err error) {

	txHash := consensushashing.TransactionHash(tx)
	for i, input := range tx.Inputs() {
		spentOutput, err := v.validateInput(txHash, i, input, utxoSet, claimed)
		if err != nil {
			return 0, err
		}
		totalIn, err = transactionhelper.AddValues(totalIn, spentOutput.Value)
		if err != nil {
			return 0, errors.Wrapf(ruleerrors.ErrBadTxOutValue, "total value of all transaction "+
				"inputs of %s overflows: %s", txHash, err)
		}
	}
	return totalIn, nil
}

// validateInput returns the output spent by input, resolved through the
// ledger.
func (v *Validator) validateInput(txHash externalapi.DomainHash, inputIndex int,
	input *externalapi.DomainTransactionInput, utxoSet utxo.Collection,
	claimed ClaimedOutpoints) (*externalapi.DomainTransactionOutput, error) {

	outpoint := input.PreviousOutpoint
	if outpoint.IsCoinbase() {
		return nil, errors.Wrapf(ruleerrors.ErrCoinbaseInputInTransaction, "input %d of "+
			"transaction %s spends the coinbase sentinel", inputIndex, txHash)
	}

	if !utxoSet.Contains(outpoint) {
		return nil, errors.Wrapf(ruleerrors.NewErrMissingTxOut([]externalapi.DomainOutpoint{outpoint}),
			"input %d of transaction %s", inputIndex, txHash)
	}

	if claimer, ok := claimed[outpoint]; ok && claimer != txHash {
		return nil, errors.Wrapf(ruleerrors.ErrDoubleSpendInMempool, "output %s spent by input %d of "+
			"transaction %s is already claimed by transaction %s", outpoint, inputIndex, txHash, claimer)
	}

	spentOutput, err := v.resolveOutput(outpoint)
	if err != nil {
		return nil, err
	}

	address := v.cryptoProvider.Hash160(input.PublicKey)
	if !bytes.Equal(address[:], spentOutput.Address[:]) {
		return nil, errors.Wrapf(ruleerrors.ErrWrongAddress, "public key of input %d of transaction %s "+
			"hashes to %s, but the spent output pays %s", inputIndex, txHash, address, spentOutput.Address)
	}

	message := consensushashing.OutputHash(spentOutput)
	if !v.cryptoProvider.Verify(input.PublicKey, message, input.Signature) {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidSignature, "signature of input %d of "+
			"transaction %s does not verify", inputIndex, txHash)
	}

	return spentOutput, nil
}

// resolveOutput finds the output referenced by an outpoint that is in the
// UTXO set. Failing to do so is an internal inconsistency rather than a
// rule violation.
func (v *Validator) resolveOutput(outpoint externalapi.DomainOutpoint) (*externalapi.DomainTransactionOutput, error) {
	tx, err := v.transactions.Transaction(outpoint.TransactionID)
	if err != nil {
		return nil, errors.Wrapf(ruleerrors.ErrInternalInconsistency, "unspent output %s belongs to "+
			"an unknown transaction: %s", outpoint, err)
	}
	output, ok := tx.Output(outpoint.Index)
	if !ok {
		return nil, errors.Wrapf(ruleerrors.ErrInternalInconsistency, "unspent output %s is out of "+
			"range of its transaction's %d outputs", outpoint, tx.OutputCount())
	}
	return output, nil
}

func (v *Validator) checkFee(totalIn, totalOut uint64) (uint64, error) {
	if totalIn == 0 {
		return 0, errors.Wrapf(ruleerrors.ErrZeroInputValue, "total value of all transaction inputs is zero")
	}
	// Ensure the transaction does not spend more than its inputs.
	if totalIn < totalOut {
		return 0, errors.Wrapf(ruleerrors.ErrSpendTooHigh, "total value of all transaction inputs for "+
			"the transaction is %d which is less than the amount "+
			"spent of %d", totalIn, totalOut)
	}
	return totalIn - totalOut, nil
}
