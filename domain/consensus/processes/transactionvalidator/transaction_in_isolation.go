package transactionvalidator

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/ruleerrors"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/transactionhelper"
	"github.com/pkg/errors"
)

// validateTransactionInIsolation runs the checks that need nothing but the
// transaction itself, and returns its total output value.
func (v *Validator) validateTransactionInIsolation(tx *externalapi.DomainTransaction) (totalOut uint64, err error) {
	err = v.checkTransactionInputCount(tx)
	if err != nil {
		return 0, err
	}
	err = v.checkTransactionOutputCount(tx)
	if err != nil {
		return 0, err
	}
	totalOut, err = v.checkTransactionOutputAmounts(tx)
	if err != nil {
		return 0, err
	}
	err = v.checkDuplicateTransactionInputs(tx)
	if err != nil {
		return 0, err
	}
	return totalOut, nil
}

func (v *Validator) checkTransactionInputCount(tx *externalapi.DomainTransaction) error {
	if tx.InputCount() == 0 {
		return errors.Wrapf(ruleerrors.ErrNoTxInputs, "transaction %s has no inputs",
			consensushashing.TransactionHash(tx))
	}
	return nil
}

func (v *Validator) checkTransactionOutputCount(tx *externalapi.DomainTransaction) error {
	if tx.OutputCount() == 0 {
		return errors.Wrapf(ruleerrors.ErrNoTxOutputs, "transaction %s has no outputs",
			consensushashing.TransactionHash(tx))
	}
	return nil
}

func (v *Validator) checkTransactionOutputAmounts(tx *externalapi.DomainTransaction) (uint64, error) {
	totalOut, err := transactionhelper.TotalOutputValue(tx)
	if err != nil {
		return 0, errors.Wrapf(ruleerrors.ErrBadTxOutValue, "total value of all transaction "+
			"outputs of %s overflows: %s", consensushashing.TransactionHash(tx), err)
	}
	if totalOut == 0 {
		return 0, errors.Wrapf(ruleerrors.ErrZeroOutputValue, "total value of all transaction "+
			"outputs of %s is zero", consensushashing.TransactionHash(tx))
	}
	return totalOut, nil
}

func (v *Validator) checkDuplicateTransactionInputs(tx *externalapi.DomainTransaction) error {
	existingOutpoints := make(map[externalapi.DomainOutpoint]struct{})
	for _, input := range tx.Inputs() {
		if _, exists := existingOutpoints[input.PreviousOutpoint]; exists {
			return errors.Wrapf(ruleerrors.ErrDuplicateTxInputs, "transaction "+
				"contains duplicate inputs: %s", input.PreviousOutpoint)
		}
		existingOutpoints[input.PreviousOutpoint] = struct{}{}
	}
	return nil
}
