package transactionhelper

import (
	"math"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// ErrValueOverflow is returned when summing amounts overflows uint64.
var ErrValueOverflow = errors.New("amount overflows uint64")

// NewCoinbaseTransaction returns a transaction whose single input is the
// coinbase sentinel, paying outputs.
func NewCoinbaseTransaction(outputs ...*externalapi.DomainTransactionOutput) *externalapi.DomainTransaction {
	return externalapi.NewDomainTransaction(
		[]*externalapi.DomainTransactionInput{externalapi.NewCoinbaseInput()}, outputs)
}

// TotalOutputValue sums the output amounts of tx.
func TotalOutputValue(tx *externalapi.DomainTransaction) (uint64, error) {
	total := uint64(0)
	for _, output := range tx.Outputs() {
		var err error
		total, err = AddValues(total, output.Value)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// AddValues returns a+b, or ErrValueOverflow.
func AddValues(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, errors.Wrapf(ErrValueOverflow, "%d + %d", a, b)
	}
	return a + b, nil
}

// HasCoinbaseInput returns whether any input of tx is the coinbase sentinel.
func HasCoinbaseInput(tx *externalapi.DomainTransaction) bool {
	for _, input := range tx.Inputs() {
		if input.PreviousOutpoint.IsCoinbase() {
			return true
		}
	}
	return false
}
