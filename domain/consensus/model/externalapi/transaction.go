package externalapi

import (
	"fmt"
	"sync"
)

// CoinbaseOutpointIndex is the output index of the coinbase sentinel input.
const CoinbaseOutpointIndex int32 = -1

// DomainOutpoint references an output of a prior transaction
type DomainOutpoint struct {
	TransactionID DomainHash
	Index         int32
}

// CoinbaseOutpoint returns the sentinel outpoint carried by the single input
// of a coinbase transaction.
func CoinbaseOutpoint() DomainOutpoint {
	return DomainOutpoint{TransactionID: ZeroHash, Index: CoinbaseOutpointIndex}
}

// IsCoinbase returns whether op is the coinbase sentinel.
func (op DomainOutpoint) IsCoinbase() bool {
	return op.TransactionID.IsZero() && op.Index == CoinbaseOutpointIndex
}

// Less orders outpoints by transaction ID and then by index.
func (op DomainOutpoint) Less(other DomainOutpoint) bool {
	if op.TransactionID != other.TransactionID {
		return op.TransactionID.Less(other.TransactionID)
	}
	return op.Index < other.Index
}

// String stringifies an outpoint.
func (op DomainOutpoint) String() string {
	return fmt.Sprintf("%s:%d", op.TransactionID, op.Index)
}

// DomainTransactionInput spends PreviousOutpoint. Signature is made over
// the hash of the referenced output, PublicKey is the serialized key whose
// hash160 must match the output's address.
type DomainTransactionInput struct {
	PreviousOutpoint DomainOutpoint
	Signature        []byte
	PublicKey        []byte
}

// NewCoinbaseInput returns the sentinel input of a coinbase transaction.
func NewCoinbaseInput() *DomainTransactionInput {
	return &DomainTransactionInput{PreviousOutpoint: CoinbaseOutpoint()}
}

// Clone returns a deep copy of input
func (input *DomainTransactionInput) Clone() *DomainTransactionInput {
	return &DomainTransactionInput{
		PreviousOutpoint: input.PreviousOutpoint,
		Signature:        cloneBytes(input.Signature),
		PublicKey:        cloneBytes(input.PublicKey),
	}
}

// DomainTransactionOutput pays Value to Address
type DomainTransactionOutput struct {
	Value   uint64
	Address DomainAddress
}

// Clone returns a copy of output
func (output *DomainTransactionOutput) Clone() *DomainTransactionOutput {
	outputClone := *output
	return &outputClone
}

// DomainTransaction is an immutable list of inputs and outputs. Its identity
// hash is computed once, on first request, and never changes.
type DomainTransaction struct {
	inputs  []*DomainTransactionInput
	outputs []*DomainTransactionOutput

	hashOnce sync.Once
	hash     DomainHash
}

// NewDomainTransaction creates a transaction over copies of inputs and outputs.
func NewDomainTransaction(inputs []*DomainTransactionInput, outputs []*DomainTransactionOutput) *DomainTransaction {
	tx := &DomainTransaction{
		inputs:  make([]*DomainTransactionInput, len(inputs)),
		outputs: make([]*DomainTransactionOutput, len(outputs)),
	}
	for i, input := range inputs {
		tx.inputs[i] = input.Clone()
	}
	for i, output := range outputs {
		tx.outputs[i] = output.Clone()
	}
	return tx
}

// Inputs returns copies of the transaction inputs.
func (tx *DomainTransaction) Inputs() []*DomainTransactionInput {
	inputs := make([]*DomainTransactionInput, len(tx.inputs))
	for i, input := range tx.inputs {
		inputs[i] = input.Clone()
	}
	return inputs
}

// Outputs returns copies of the transaction outputs.
func (tx *DomainTransaction) Outputs() []*DomainTransactionOutput {
	outputs := make([]*DomainTransactionOutput, len(tx.outputs))
	for i, output := range tx.outputs {
		outputs[i] = output.Clone()
	}
	return outputs
}

// InputCount returns the number of inputs.
func (tx *DomainTransaction) InputCount() int {
	return len(tx.inputs)
}

// OutputCount returns the number of outputs.
func (tx *DomainTransaction) OutputCount() int {
	return len(tx.outputs)
}

// Output returns a copy of the output at index, and false if there is none.
func (tx *DomainTransaction) Output(index int32) (*DomainTransactionOutput, bool) {
	if index < 0 || int(index) >= len(tx.outputs) {
		return nil, false
	}
	return tx.outputs[index].Clone(), true
}

// MemoizedHash returns the transaction hash, calling computeHash only the
// first time it is requested. Callers should go through
// consensushashing.TransactionHash rather than use this directly.
func (tx *DomainTransaction) MemoizedHash(computeHash func(tx *DomainTransaction) DomainHash) DomainHash {
	tx.hashOnce.Do(func() {
		tx.hash = computeHash(tx)
	})
	return tx.hash
}

// IsCoinbase returns whether tx has exactly one input and that input is the
// coinbase sentinel.
func (tx *DomainTransaction) IsCoinbase() bool {
	return len(tx.inputs) == 1 && tx.inputs[0].PreviousOutpoint.IsCoinbase()
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	clone := make([]byte, len(b))
	copy(clone, b)
	return clone
}
