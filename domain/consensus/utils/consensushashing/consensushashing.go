package consensushashing

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/hashes"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// BlockHash returns the given block's hash. It is computed once per block.
func BlockHash(block *externalapi.DomainBlock) externalapi.DomainHash {
	return block.MemoizedHash(calculateBlockHash)
}

func calculateBlockHash(block *externalapi.DomainBlock) externalapi.DomainHash {
	writer := hashes.NewDoubleSHA256Writer()
	err := serialization.SerializeBlockHeader(writer, block)
	if err != nil {
		// It seems like this could only happen if the writer returned an error.
		// and this writer should never return an error (no allocations or possible failures)
		// the only non-writer error path here is unknown types in `WriteElement`
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	return writer.Finalize()
}

// TransactionHash returns the given transaction's hash. It is computed once
// per transaction.
func TransactionHash(tx *externalapi.DomainTransaction) externalapi.DomainHash {
	return tx.MemoizedHash(calculateTransactionHash)
}

func calculateTransactionHash(tx *externalapi.DomainTransaction) externalapi.DomainHash {
	writer := hashes.NewDoubleSHA256Writer()
	err := serialization.SerializeTransaction(writer, tx)
	if err != nil {
		panic(errors.Wrap(err, "TransactionHash() failed. this should never fail for structurally-valid transactions"))
	}
	return writer.Finalize()
}

// OutputHash returns the hash of an output's encoding. This is the message
// an input signs when it spends the output.
func OutputHash(output *externalapi.DomainTransactionOutput) externalapi.DomainHash {
	writer := hashes.NewDoubleSHA256Writer()
	err := serialization.SerializeOutput(writer, output)
	if err != nil {
		panic(errors.Wrap(err, "OutputHash() failed. this should never happen"))
	}
	return writer.Finalize()
}
