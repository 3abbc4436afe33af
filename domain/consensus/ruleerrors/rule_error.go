package ruleerrors

import (
	"fmt"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrNoTxInputs indicates a transaction does not have any inputs.
	ErrNoTxInputs = newRuleError("ErrNoTxInputs")

	// ErrNoTxOutputs indicates a transaction does not have any outputs.
	ErrNoTxOutputs = newRuleError("ErrNoTxOutputs")

	// ErrZeroOutputValue indicates the outputs of a transaction sum to zero.
	ErrZeroOutputValue = newRuleError("ErrZeroOutputValue")

	// ErrBadTxOutValue indicates an output value sum overflows.
	ErrBadTxOutValue = newRuleError("ErrBadTxOutValue")

	// ErrDuplicateTxInputs indicates a transaction references the same
	// input more than once.
	ErrDuplicateTxInputs = newRuleError("ErrDuplicateTxInputs")

	// ErrCoinbaseInputInTransaction indicates a transaction outside of a
	// block's first position spends the coinbase sentinel.
	ErrCoinbaseInputInTransaction = newRuleError("ErrCoinbaseInputInTransaction")

	// ErrDoubleSpendInMempool indicates an outpoint is already claimed by
	// another pending transaction.
	ErrDoubleSpendInMempool = newRuleError("ErrDoubleSpendInMempool")

	// ErrDoubleSpendInSameBlock indicates an outpoint is spent by two
	// transactions of the same block.
	ErrDoubleSpendInSameBlock = newRuleError("ErrDoubleSpendInSameBlock")

	// ErrWrongAddress indicates the public key of an input does not hash to
	// the address of the output it spends.
	ErrWrongAddress = newRuleError("ErrWrongAddress")

	// ErrInvalidSignature indicates an input signature does not verify
	// over the hash of the output it spends.
	ErrInvalidSignature = newRuleError("ErrInvalidSignature")

	// ErrZeroInputValue indicates the spent outputs sum to zero.
	ErrZeroInputValue = newRuleError("ErrZeroInputValue")

	// ErrSpendTooHigh indicates a transaction pays out more than it spends.
	ErrSpendTooHigh = newRuleError("ErrSpendTooHigh")

	// ErrNoTransactions indicates the block does not have a least one
	// transaction. A valid block must have at least the coinbase
	// transaction.
	ErrNoTransactions = newRuleError("ErrNoTransactions")

	// ErrBadMerkleRoot indicates the calculated merkle root does not match
	// the expected value.
	ErrBadMerkleRoot = newRuleError("ErrBadMerkleRoot")

	// ErrFirstTxNotCoinbase indicates the first transaction in a block
	// is not a coinbase transaction.
	ErrFirstTxNotCoinbase = newRuleError("ErrFirstTxNotCoinbase")

	// ErrMultipleCoinbases indicates a block contains more than one
	// coinbase input.
	ErrMultipleCoinbases = newRuleError("ErrMultipleCoinbases")

	// ErrBadCoinbaseAmount indicates the coinbase does not pay exactly the
	// mining reward plus the fees of the block.
	ErrBadCoinbaseAmount = newRuleError("ErrBadCoinbaseAmount")

	// ErrOverwriteTx indicates a block creates outputs that already exist
	// unspent, which happens when a transaction with the same hash is
	// included twice along a chain.
	ErrOverwriteTx = newRuleError("ErrOverwriteTx")
)

// ErrInternalInconsistency indicates the ledger's own bookkeeping is broken,
// e.g. an unspent output whose transaction cannot be found. It is
// deliberately not a RuleError: the input that hit it is not at fault.
var ErrInternalInconsistency = errors.New("internal inconsistency")

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or transaction failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// IsRuleError returns whether err was caused by a rule violation.
func IsRuleError(err error) bool {
	return errors.As(err, &RuleError{})
}

// ErrMissingTxOut indicates a transaction output referenced by an input
// either does not exist or has already been spent.
type ErrMissingTxOut struct {
	MissingOutpoints []externalapi.DomainOutpoint
}

func (e ErrMissingTxOut) Error() string {
	return fmt.Sprintf("missing the following outpoint: %v", e.MissingOutpoints)
}

// NewErrMissingTxOut Creates a new ErrMissingTxOut error wrapped in a RuleError
func NewErrMissingTxOut(missingOutpoints []externalapi.DomainOutpoint) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingTxOut",
		inner:   ErrMissingTxOut{missingOutpoints},
	})
}

// ErrMissingParents indicates a block points to an unknown parent.
type ErrMissingParents struct {
	MissingParentHashes []externalapi.DomainHash
}

func (e ErrMissingParents) Error() string {
	return fmt.Sprintf("missing the following parent hashes: %v", e.MissingParentHashes)
}

// NewErrMissingParents creates a new ErrMissingParents error wrapped in a RuleError
func NewErrMissingParents(missingParentHashes []externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingParents",
		inner:   ErrMissingParents{missingParentHashes},
	})
}
