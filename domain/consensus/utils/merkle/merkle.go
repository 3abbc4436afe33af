package merkle

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/hashes"
)

// hashMerkleBranches takes two hashes, treated as the left and right tree
// nodes, and returns the double SHA-256 of their concatenation.
func hashMerkleBranches(left, right externalapi.DomainHash) externalapi.DomainHash {
	writer := hashes.NewDoubleSHA256Writer()
	writer.InfallibleWrite(left[:])
	writer.InfallibleWrite(right[:])
	return writer.Finalize()
}

// CalculateHashMerkleRoot returns the merkle root over the hashes of
// transactions. The range [start, end) is split at (start+end)/2, so an odd
// number of leaves leaves the larger half on the right. A single transaction
// is its own root. An empty list yields the zero hash.
func CalculateHashMerkleRoot(transactions []*externalapi.DomainTransaction) externalapi.DomainHash {
	if len(transactions) == 0 {
		return externalapi.ZeroHash
	}
	leaves := make([]externalapi.DomainHash, len(transactions))
	for i, tx := range transactions {
		leaves[i] = consensushashing.TransactionHash(tx)
	}
	return merkleRange(leaves, 0, len(leaves))
}

func merkleRange(leaves []externalapi.DomainHash, start, end int) externalapi.DomainHash {
	if end <= start+1 {
		return leaves[start]
	}
	middle := (start + end) / 2
	return hashMerkleBranches(merkleRange(leaves, start, middle), merkleRange(leaves, middle, end))
}

// ValidateMerkleRoot returns whether the declared merkle root of block
// matches the root calculated from its transactions.
func ValidateMerkleRoot(block *externalapi.DomainBlock) bool {
	return block.MerkleRoot() == CalculateHashMerkleRoot(block.Transactions())
}
