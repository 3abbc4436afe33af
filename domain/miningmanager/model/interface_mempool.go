package model

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/processes/transactionvalidator"
)

// Mempool maintains a set of known transactions that
// are intended to be mined into new blocks
type Mempool interface {
	Has(transactionHash externalapi.DomainHash) bool
	Add(transaction *externalapi.DomainTransaction) bool
	Remove(transactionHashes ...externalapi.DomainHash) int
	RemoveBlockTransactions(block *externalapi.DomainBlock) []externalapi.DomainHash
	Transactions() []*externalapi.DomainTransaction
	Count() int
	ClaimedOutpoints(except *externalapi.DomainHash) transactionvalidator.ClaimedOutpoints
}
