package externalapi

import (
	"sync"
	"time"
)

// DomainBlock is an immutable block. Mining a different nonce produces a new
// DomainBlock through WithNonce, so a block's hash never changes once it is
// known.
type DomainBlock struct {
	parentHash   DomainHash
	merkleRoot   DomainHash
	timestamp    int32
	nonce        int32
	transactions []*DomainTransaction

	hashOnce sync.Once
	hash     DomainHash
}

// NewDomainBlock creates a block with the given header fields over a copy
// of the transaction list. merkleRoot is taken as given: use
// merkle.CalculateHashMerkleRoot to derive it from transactions.
func NewDomainBlock(parentHash, merkleRoot DomainHash, timestamp int32, nonce int32,
	transactions []*DomainTransaction) *DomainBlock {

	transactionsCopy := make([]*DomainTransaction, len(transactions))
	copy(transactionsCopy, transactions)
	return &DomainBlock{
		parentHash:   parentHash,
		merkleRoot:   merkleRoot,
		timestamp:    timestamp,
		nonce:        nonce,
		transactions: transactionsCopy,
	}
}

// ParentHash returns the hash of the parent block, or ZeroHash for a genesis block.
func (block *DomainBlock) ParentHash() DomainHash {
	return block.parentHash
}

// MerkleRoot returns the declared merkle root of the block transactions.
func (block *DomainBlock) MerkleRoot() DomainHash {
	return block.merkleRoot
}

// TimeInSeconds returns the block timestamp in Unix seconds.
func (block *DomainBlock) TimeInSeconds() int32 {
	return block.timestamp
}

// Time returns the block timestamp.
func (block *DomainBlock) Time() time.Time {
	return time.Unix(int64(block.timestamp), 0)
}

// Nonce returns the block nonce.
func (block *DomainBlock) Nonce() int32 {
	return block.nonce
}

// Transactions returns the block transactions. The returned slice may be
// modified freely. The transactions themselves are immutable.
func (block *DomainBlock) Transactions() []*DomainTransaction {
	transactions := make([]*DomainTransaction, len(block.transactions))
	copy(transactions, block.transactions)
	return transactions
}

// TransactionCount returns the number of transactions in the block.
func (block *DomainBlock) TransactionCount() int {
	return len(block.transactions)
}

// IsGenesis returns whether the block declares no parent.
func (block *DomainBlock) IsGenesis() bool {
	return block.parentHash.IsZero()
}

// WithNonce returns a copy of the block with a different nonce and timestamp.
func (block *DomainBlock) WithNonce(timestamp int32, nonce int32) *DomainBlock {
	return NewDomainBlock(block.parentHash, block.merkleRoot, timestamp, nonce, block.transactions)
}

// MemoizedHash returns the block hash, calling computeHash only the first
// time it is requested. Callers should go through
// consensushashing.BlockHash rather than use this directly.
func (block *DomainBlock) MemoizedHash(computeHash func(block *DomainBlock) DomainHash) DomainHash {
	block.hashOnce.Do(func() {
		block.hash = computeHash(block)
	})
	return block.hash
}
