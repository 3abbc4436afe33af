package transactionvalidator

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/crypto"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/utxo"
)

// TransactionLookup resolves admitted transactions by hash.
type TransactionLookup interface {
	Transaction(txHash externalapi.DomainHash) (*externalapi.DomainTransaction, error)
}

// ClaimedOutpoints maps an outpoint to the hash of the pending transaction
// that spends it.
type ClaimedOutpoints map[externalapi.DomainOutpoint]externalapi.DomainHash

// Validator decides whether a transaction may be admitted on top of a given
// UTXO set.
type Validator struct {
	cryptoProvider crypto.Provider
	transactions   TransactionLookup
}

// New instantiates a new Validator
func New(cryptoProvider crypto.Provider, transactions TransactionLookup) *Validator {
	return &Validator{
		cryptoProvider: cryptoProvider,
		transactions:   transactions,
	}
}

// ValidateTransaction checks tx against utxoSet and the outpoints already
// claimed by other pending transactions, and returns the fee it pays.
// Rule violations are returned as ruleerrors.RuleError. Any other error
// means the ledger's bookkeeping is broken.
func (v *Validator) ValidateTransaction(tx *externalapi.DomainTransaction, utxoSet utxo.Collection,
	claimed ClaimedOutpoints) (fee uint64, err error) {

	totalOut, err := v.validateTransactionInIsolation(tx)
	if err != nil {
		return 0, err
	}

	totalIn, err := v.validateTransactionInContext(tx, utxoSet, claimed)
	if err != nil {
		return 0, err
	}

	return v.checkFee(totalIn, totalOut)
}
