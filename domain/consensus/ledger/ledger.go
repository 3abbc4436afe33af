package ledger

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

var (
	// ErrEmptyLedger is returned by queries that need at least one block.
	ErrEmptyLedger = errors.New("the ledger is empty")

	// ErrUnknownBlock is returned for a block hash that was never admitted.
	ErrUnknownBlock = errors.New("unknown block")

	// ErrUnknownTransaction is returned for a transaction hash that no
	// admitted block contains.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrUnknownParent is returned by AddBlock when the parent of a
	// non-root block was never admitted.
	ErrUnknownParent = errors.New("unknown parent")

	// ErrDuplicateBlock is returned by AddBlock for a block that was already
	// admitted.
	ErrDuplicateBlock = errors.New("duplicate block")
)

// Ledger is a tree of admitted blocks. The first admitted block is the
// root, every later block must extend a known block. Ledger is not safe for
// concurrent use.
type Ledger struct {
	index            blockSet
	root             *blockNode
	tips             blockSet
	bestTip          *blockNode
	transactionIndex map[externalapi.DomainHash]*blockNode
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		index:            newBlockSet(),
		tips:             newBlockSet(),
		transactionIndex: make(map[externalapi.DomainHash]*blockNode),
	}
}

// AddBlock admits block. The first block admitted to an empty ledger
// becomes the root regardless of its declared parent.
func (l *Ledger) AddBlock(block *externalapi.DomainBlock) error {
	hash := consensushashing.BlockHash(block)

	var parent *blockNode
	if l.root != nil {
		if _, ok := l.index[hash]; ok {
			return errors.Wrapf(ErrDuplicateBlock, "block %s", hash)
		}
		var ok bool
		parent, ok = l.index[block.ParentHash()]
		if !ok {
			return errors.Wrapf(ErrUnknownParent, "parent %s of block %s", block.ParentHash(), hash)
		}
	}

	node := newBlockNode(block, hash, parent)
	l.index.add(node)
	if parent == nil {
		l.root = node
	} else {
		l.tips.remove(parent)
	}
	l.tips.add(node)
	if node.isBetterTipThan(l.bestTip) {
		l.bestTip = node
	}

	for _, tx := range block.Transactions() {
		txHash := consensushashing.TransactionHash(tx)
		if _, ok := l.transactionIndex[txHash]; !ok {
			l.transactionIndex[txHash] = node
		}
	}

	log.Debugf("Added block %s, best tip is %s with %d tips", node, l.bestTip, len(l.tips))
	return nil
}

// Size returns the number of admitted blocks.
func (l *Ledger) Size() int {
	return len(l.index)
}

// Has returns whether a block with hash was admitted.
func (l *Ledger) Has(hash externalapi.DomainHash) bool {
	_, ok := l.index[hash]
	return ok
}

// Head returns the root block.
func (l *Ledger) Head() (*externalapi.DomainBlock, error) {
	if l.root == nil {
		return nil, errors.WithStack(ErrEmptyLedger)
	}
	return l.root.block, nil
}

// BestTip returns the highest tip, the one with the smallest hash among
// tips of equal height.
func (l *Ledger) BestTip() (*externalapi.DomainBlock, error) {
	if l.bestTip == nil {
		return nil, errors.WithStack(ErrEmptyLedger)
	}
	return l.bestTip.block, nil
}

// BestTipHash returns the hash of BestTip.
func (l *Ledger) BestTipHash() (externalapi.DomainHash, error) {
	if l.bestTip == nil {
		return externalapi.DomainHash{}, errors.WithStack(ErrEmptyLedger)
	}
	return l.bestTip.hash, nil
}

// BestHeight returns the height of BestTip.
func (l *Ledger) BestHeight() (uint64, error) {
	if l.bestTip == nil {
		return 0, errors.WithStack(ErrEmptyLedger)
	}
	return l.bestTip.height, nil
}

// Tips returns the hashes of all blocks without admitted children, highest
// first.
func (l *Ledger) Tips() []externalapi.DomainHash {
	nodes := l.tips.toSlice()
	slices.SortFunc(nodes, func(a, b *blockNode) bool {
		return a.isBetterTipThan(b)
	})
	hashes := make([]externalapi.DomainHash, len(nodes))
	for i, node := range nodes {
		hashes[i] = node.hash
	}
	return hashes
}

func (l *Ledger) node(hash externalapi.DomainHash) (*blockNode, error) {
	node, ok := l.index[hash]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBlock, "block %s", hash)
	}
	return node, nil
}

// Block returns the admitted block with hash.
func (l *Ledger) Block(hash externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	node, err := l.node(hash)
	if err != nil {
		return nil, err
	}
	return node.block, nil
}

// Height returns the height of the admitted block with hash. The root has
// height 0.
func (l *Ledger) Height(hash externalapi.DomainHash) (uint64, error) {
	node, err := l.node(hash)
	if err != nil {
		return 0, err
	}
	return node.height, nil
}

// Parent returns the parent hash of the admitted block with hash. isRoot
// is true for the root, which has no admitted parent.
func (l *Ledger) Parent(hash externalapi.DomainHash) (parentHash externalapi.DomainHash, isRoot bool, err error) {
	node, err := l.node(hash)
	if err != nil {
		return externalapi.DomainHash{}, false, err
	}
	if node.parent == nil {
		return externalapi.DomainHash{}, true, nil
	}
	return node.parent.hash, false, nil
}

// Transaction returns the admitted transaction with txHash.
func (l *Ledger) Transaction(txHash externalapi.DomainHash) (*externalapi.DomainTransaction, error) {
	node, ok := l.transactionIndex[txHash]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTransaction, "transaction %s", txHash)
	}
	for _, tx := range node.block.Transactions() {
		if consensushashing.TransactionHash(tx) == txHash {
			return tx, nil
		}
	}
	return nil, errors.Errorf("transaction %s is indexed under block %s which does not contain it",
		txHash, node.hash)
}

// ContainingBlock returns the first admitted block that contains txHash.
func (l *Ledger) ContainingBlock(txHash externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	node, ok := l.transactionIndex[txHash]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTransaction, "transaction %s", txHash)
	}
	return node.block, nil
}

// IsInBestChain returns whether the block with hash is the best tip or one
// of its ancestors.
func (l *Ledger) IsInBestChain(hash externalapi.DomainHash) (bool, error) {
	node, err := l.node(hash)
	if err != nil {
		return false, err
	}
	return l.bestTip.ancestorAtHeight(node.height) == node, nil
}

// IsConfirmed returns whether the block with hash is on the best chain with
// at least depth blocks on top of it. A confirmed block becomes unconfirmed
// again if another fork overtakes the best chain.
func (l *Ledger) IsConfirmed(hash externalapi.DomainHash, depth uint64) (bool, error) {
	node, err := l.node(hash)
	if err != nil {
		return false, err
	}
	if l.bestTip.height < node.height || l.bestTip.height-node.height < depth {
		return false, nil
	}
	return l.bestTip.ancestorAtHeight(node.height) == node, nil
}

// BestChain returns the hashes from the root to the best tip.
func (l *Ledger) BestChain() []externalapi.DomainHash {
	if l.bestTip == nil {
		return nil
	}
	chain := make([]externalapi.DomainHash, l.bestTip.height+1)
	for current := l.bestTip; current != nil; current = current.parent {
		chain[current.height] = current.hash
	}
	return chain
}
