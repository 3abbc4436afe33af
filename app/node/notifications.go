package node

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
)

// BlockAddedHandler is called with every block a node accepts
type BlockAddedHandler func(block *externalapi.DomainBlock)

// TransactionAcceptedHandler is called with every transaction a node
// accepts into its mempool
type TransactionAcceptedHandler func(transaction *externalapi.DomainTransaction)

// RegisterBlockAddedHandler registers a handler called after the node
// accepts a block. Handlers run without the node's lock held, so they may
// query the node.
func (n *Node) RegisterBlockAddedHandler(handler BlockAddedHandler) {
	n.handlersLock.Lock()
	defer n.handlersLock.Unlock()
	n.blockAddedHandlers = append(n.blockAddedHandlers, handler)
}

// RegisterTransactionAcceptedHandler registers a handler called after the
// node accepts a transaction into its mempool
func (n *Node) RegisterTransactionAcceptedHandler(handler TransactionAcceptedHandler) {
	n.handlersLock.Lock()
	defer n.handlersLock.Unlock()
	n.transactionAcceptedHandlers = append(n.transactionAcceptedHandlers, handler)
}

func (n *Node) notifyBlockAdded(block *externalapi.DomainBlock) {
	n.handlersLock.RLock()
	handlers := make([]BlockAddedHandler, len(n.blockAddedHandlers))
	copy(handlers, n.blockAddedHandlers)
	n.handlersLock.RUnlock()

	for _, handler := range handlers {
		handler(block)
	}
}

func (n *Node) notifyTransactionAccepted(transaction *externalapi.DomainTransaction) {
	n.handlersLock.RLock()
	handlers := make([]TransactionAcceptedHandler, len(n.transactionAcceptedHandlers))
	copy(handlers, n.transactionAcceptedHandlers)
	n.handlersLock.RUnlock()

	for _, handler := range handlers {
		handler(transaction)
	}
}
