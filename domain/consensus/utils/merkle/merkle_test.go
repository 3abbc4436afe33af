package merkle

import (
	"testing"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
)

func transactions(count int) []*externalapi.DomainTransaction {
	txs := make([]*externalapi.DomainTransaction, count)
	for i := range txs {
		txs[i] = externalapi.NewDomainTransaction(
			[]*externalapi.DomainTransactionInput{externalapi.NewCoinbaseInput()},
			[]*externalapi.DomainTransactionOutput{{Value: uint64(i + 1)}},
		)
	}
	return txs
}

func TestCalculateHashMerkleRoot(t *testing.T) {
	txs := transactions(3)
	h0 := consensushashing.TransactionHash(txs[0])
	h1 := consensushashing.TransactionHash(txs[1])
	h2 := consensushashing.TransactionHash(txs[2])

	tests := []struct {
		name     string
		txs      []*externalapi.DomainTransaction
		expected externalapi.DomainHash
	}{
		{name: "empty", txs: nil, expected: externalapi.ZeroHash},
		{name: "single leaf", txs: txs[:1], expected: h0},
		{name: "two leaves", txs: txs[:2], expected: hashMerkleBranches(h0, h1)},
		// [0,3) splits at 1: h0 on the left, (h1,h2) on the right.
		{name: "three leaves", txs: txs, expected: hashMerkleBranches(h0, hashMerkleBranches(h1, h2))},
	}

	for _, test := range tests {
		result := CalculateHashMerkleRoot(test.txs)
		if result != test.expected {
			t.Errorf("%s: got %s, want %s", test.name, result, test.expected)
		}
	}
}

func TestValidateMerkleRoot(t *testing.T) {
	txs := transactions(4)
	root := CalculateHashMerkleRoot(txs)

	valid := externalapi.NewDomainBlock(externalapi.ZeroHash, root, 0, 0, txs)
	if !ValidateMerkleRoot(valid) {
		t.Fatalf("TestValidateMerkleRoot: a correct root was rejected")
	}
	invalid := externalapi.NewDomainBlock(externalapi.ZeroHash, root, 0, 0, txs[:3])
	if ValidateMerkleRoot(invalid) {
		t.Fatalf("TestValidateMerkleRoot: a stale root was accepted")
	}
}
