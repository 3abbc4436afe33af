package ledger

import (
	"fmt"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
)

// blockNode is an admitted block together with its position in the tree.
// It is created once, on admission, and never re-parented.
type blockNode struct {
	block  *externalapi.DomainBlock
	hash   externalapi.DomainHash
	parent *blockNode
	height uint64
}

func newBlockNode(block *externalapi.DomainBlock, hash externalapi.DomainHash, parent *blockNode) *blockNode {
	node := &blockNode{
		block:  block,
		hash:   hash,
		parent: parent,
	}
	if parent != nil {
		node.height = parent.height + 1
	}
	return node
}

// isBetterTipThan orders tips by height, and by the lexicographically
// smaller hash between tips of equal height.
func (node *blockNode) isBetterTipThan(other *blockNode) bool {
	if other == nil {
		return true
	}
	if node.height != other.height {
		return node.height > other.height
	}
	return node.hash.Less(other.hash)
}

// ancestorAtHeight walks up from node to its ancestor at height. It returns
// nil if height is above node.
func (node *blockNode) ancestorAtHeight(height uint64) *blockNode {
	if height > node.height {
		return nil
	}
	current := node
	for current != nil && current.height > height {
		current = current.parent
	}
	return current
}

func (node *blockNode) String() string {
	return fmt.Sprintf("%s (height %d)", node.hash, node.height)
}

// blockSet implements a basic unsorted set of blocks
type blockSet map[externalapi.DomainHash]*blockNode

func newBlockSet() blockSet {
	return map[externalapi.DomainHash]*blockNode{}
}

func (bs blockSet) add(node *blockNode) {
	bs[node.hash] = node
}

// remove removes a block from this set, if exists
func (bs blockSet) remove(node *blockNode) {
	delete(bs, node.hash)
}

func (bs blockSet) toSlice() []*blockNode {
	slice := make([]*blockNode, 0, len(bs))
	for _, node := range bs {
		slice = append(slice, node)
	}
	return slice
}
