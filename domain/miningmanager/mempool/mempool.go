package mempool

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/processes/transactionvalidator"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/miningmanager/model"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type mempoolTransaction struct {
	transaction *externalapi.DomainTransaction
	addedOrder  uint64
}

// mempool holds validated transactions that no admitted block contains yet.
// It does not validate anything itself and is not safe for concurrent use.
type mempool struct {
	pool      map[externalapi.DomainHash]*mempoolTransaction
	claimedBy map[externalapi.DomainOutpoint]externalapi.DomainHash
	nextOrder uint64
}

// New creates a new, empty mempool
func New() model.Mempool {
	return &mempool{
		pool:      make(map[externalapi.DomainHash]*mempoolTransaction),
		claimedBy: make(map[externalapi.DomainOutpoint]externalapi.DomainHash),
	}
}

// Has returns whether the mempool holds the transaction with the given hash
func (mp *mempool) Has(transactionHash externalapi.DomainHash) bool {
	_, ok := mp.pool[transactionHash]
	return ok
}

// Add inserts transaction and returns true, or returns false if a
// transaction with the same hash is already in the pool
func (mp *mempool) Add(transaction *externalapi.DomainTransaction) bool {
	transactionHash := consensushashing.TransactionHash(transaction)
	if mp.Has(transactionHash) {
		return false
	}
	mp.pool[transactionHash] = &mempoolTransaction{
		transaction: transaction,
		addedOrder:  mp.nextOrder,
	}
	mp.nextOrder++
	for _, input := range transaction.Inputs() {
		mp.claimedBy[input.PreviousOutpoint] = transactionHash
	}
	log.Debugf("Added transaction %s to the mempool (%d transactions)", transactionHash, len(mp.pool))
	return true
}

// Remove drops the given transactions from the pool and returns how many of
// them were in it
func (mp *mempool) Remove(transactionHashes ...externalapi.DomainHash) int {
	removed := 0
	for _, transactionHash := range transactionHashes {
		entry, ok := mp.pool[transactionHash]
		if !ok {
			continue
		}
		for _, input := range entry.transaction.Inputs() {
			if mp.claimedBy[input.PreviousOutpoint] == transactionHash {
				delete(mp.claimedBy, input.PreviousOutpoint)
			}
		}
		delete(mp.pool, transactionHash)
		removed++
	}
	return removed
}

// RemoveBlockTransactions drops every pooled transaction that block contains
// and every pooled transaction spending an outpoint block spends. It returns
// the hashes of the dropped transactions.
func (mp *mempool) RemoveBlockTransactions(block *externalapi.DomainBlock) []externalapi.DomainHash {
	var toRemove []externalapi.DomainHash
	for _, transaction := range block.Transactions() {
		transactionHash := consensushashing.TransactionHash(transaction)
		if mp.Has(transactionHash) {
			toRemove = append(toRemove, transactionHash)
			continue
		}
		for _, input := range transaction.Inputs() {
			conflicting, ok := mp.claimedBy[input.PreviousOutpoint]
			if ok && !slices.Contains(toRemove, conflicting) {
				log.Debugf("Transaction %s conflicts with transaction %s of block %s",
					conflicting, transactionHash, consensushashing.BlockHash(block))
				toRemove = append(toRemove, conflicting)
			}
		}
	}
	mp.Remove(toRemove...)
	return toRemove
}

// Transactions returns the pooled transactions in insertion order
func (mp *mempool) Transactions() []*externalapi.DomainTransaction {
	entries := maps.Values(mp.pool)
	slices.SortFunc(entries, func(a, b *mempoolTransaction) bool {
		return a.addedOrder < b.addedOrder
	})
	transactions := make([]*externalapi.DomainTransaction, len(entries))
	for i, entry := range entries {
		transactions[i] = entry.transaction
	}
	return transactions
}

// Count returns the number of pooled transactions
func (mp *mempool) Count() int {
	return len(mp.pool)
}

// ClaimedOutpoints maps every outpoint spent by a pooled transaction to that
// transaction's hash. Outpoints claimed by except, if given, are left out.
func (mp *mempool) ClaimedOutpoints(except *externalapi.DomainHash) transactionvalidator.ClaimedOutpoints {
	claimed := make(transactionvalidator.ClaimedOutpoints, len(mp.claimedBy))
	for outpoint, transactionHash := range mp.claimedBy {
		if except != nil && transactionHash == *except {
			continue
		}
		claimed[outpoint] = transactionHash
	}
	return claimed
}
