package mempool

import (
	"testing"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/merkle"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/transactionhelper"
)

func spendingTransaction(value uint64, outpoints ...externalapi.DomainOutpoint) *externalapi.DomainTransaction {
	inputs := make([]*externalapi.DomainTransactionInput, len(outpoints))
	for i, outpoint := range outpoints {
		inputs[i] = &externalapi.DomainTransactionInput{PreviousOutpoint: outpoint}
	}
	return externalapi.NewDomainTransaction(inputs,
		[]*externalapi.DomainTransactionOutput{{Value: value, Address: externalapi.DomainAddress{0x01}}})
}

func outpoint(id byte, index int32) externalapi.DomainOutpoint {
	return externalapi.DomainOutpoint{TransactionID: externalapi.DomainHash{id}, Index: index}
}

func TestAddAndTransactionsOrder(t *testing.T) {
	mp := New()
	var expected []externalapi.DomainHash
	for i := 0; i < 20; i++ {
		transaction := spendingTransaction(uint64(i+1), outpoint(byte(i), 0))
		if !mp.Add(transaction) {
			t.Fatalf("TestAddAndTransactionsOrder: transaction %d was not added", i)
		}
		expected = append(expected, consensushashing.TransactionHash(transaction))
	}

	duplicate := spendingTransaction(1, outpoint(0, 0))
	if mp.Add(duplicate) {
		t.Fatalf("TestAddAndTransactionsOrder: a duplicate transaction was added")
	}
	if mp.Count() != 20 {
		t.Fatalf("TestAddAndTransactionsOrder: got %d transactions, want 20", mp.Count())
	}

	for i, transaction := range mp.Transactions() {
		if consensushashing.TransactionHash(transaction) != expected[i] {
			t.Fatalf("TestAddAndTransactionsOrder: transaction %d is out of insertion order", i)
		}
	}
}

func TestClaimedOutpoints(t *testing.T) {
	mp := New()
	first := spendingTransaction(5, outpoint(1, 0), outpoint(1, 1))
	second := spendingTransaction(5, outpoint(2, 0))
	mp.Add(first)
	mp.Add(second)
	firstHash := consensushashing.TransactionHash(first)

	claimed := mp.ClaimedOutpoints(nil)
	if len(claimed) != 3 || claimed[outpoint(1, 1)] != firstHash {
		t.Fatalf("TestClaimedOutpoints: unexpected claims %v", claimed)
	}

	claimed = mp.ClaimedOutpoints(&firstHash)
	if len(claimed) != 1 {
		t.Fatalf("TestClaimedOutpoints: claims of the excepted transaction were kept: %v", claimed)
	}

	if mp.Remove(firstHash, externalapi.DomainHash{0x99}) != 1 {
		t.Fatalf("TestClaimedOutpoints: Remove reported a wrong count")
	}
	if mp.Has(firstHash) || len(mp.ClaimedOutpoints(nil)) != 1 {
		t.Fatalf("TestClaimedOutpoints: removing a transaction did not release its claims")
	}
}

func TestRemoveBlockTransactions(t *testing.T) {
	mp := New()
	included := spendingTransaction(5, outpoint(1, 0))
	conflicting := spendingTransaction(5, outpoint(2, 0))
	unrelated := spendingTransaction(5, outpoint(3, 0))
	mp.Add(included)
	mp.Add(conflicting)
	mp.Add(unrelated)

	transactions := []*externalapi.DomainTransaction{
		transactionhelper.NewCoinbaseTransaction(&externalapi.DomainTransactionOutput{Value: 50}),
		included,
		spendingTransaction(4, outpoint(2, 0)),
	}
	block := externalapi.NewDomainBlock(externalapi.ZeroHash, merkle.CalculateHashMerkleRoot(transactions),
		0, 0, transactions)

	removed := mp.RemoveBlockTransactions(block)
	if len(removed) != 2 {
		t.Fatalf("TestRemoveBlockTransactions: removed %d transactions, want 2", len(removed))
	}
	if mp.Count() != 1 || !mp.Has(consensushashing.TransactionHash(unrelated)) {
		t.Fatalf("TestRemoveBlockTransactions: the unrelated transaction must be the only one left")
	}
}
