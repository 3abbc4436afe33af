package serialization

import (
	"io"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
)

// SerializeBlockHeader writes the identity encoding of a block:
// parent hash, merkle root, timestamp, nonce. Transactions are committed to
// through the merkle root only.
func SerializeBlockHeader(w io.Writer, block *externalapi.DomainBlock) error {
	return WriteElements(w, block.ParentHash(), block.MerkleRoot(), block.TimeInSeconds(), block.Nonce())
}

// SerializeTransaction writes the identity encoding of a transaction: its
// inputs followed by its outputs, without counts or length prefixes.
func SerializeTransaction(w io.Writer, tx *externalapi.DomainTransaction) error {
	for _, input := range tx.Inputs() {
		err := SerializeInput(w, input)
		if err != nil {
			return err
		}
	}
	for _, output := range tx.Outputs() {
		err := SerializeOutput(w, output)
		if err != nil {
			return err
		}
	}
	return nil
}

// SerializeInput writes the previous outpoint of input, followed by the
// signature and public key unless input is the coinbase sentinel.
func SerializeInput(w io.Writer, input *externalapi.DomainTransactionInput) error {
	err := WriteElements(w, input.PreviousOutpoint.TransactionID, input.PreviousOutpoint.Index)
	if err != nil {
		return err
	}
	if input.PreviousOutpoint.IsCoinbase() {
		return nil
	}
	return WriteElements(w, input.Signature, input.PublicKey)
}

// SerializeOutput writes the 8 byte amount followed by the 20 byte address.
func SerializeOutput(w io.Writer, output *externalapi.DomainTransactionOutput) error {
	return WriteElements(w, output.Value, output.Address)
}
