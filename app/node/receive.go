package node

import (
	"github.com/kaspanet/ledgersim/app/appmessage"
	"github.com/kaspanet/ledgersim/domain/consensus/ledger"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/ruleerrors"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

// ReceiveTransaction offers a transaction to the node. An accepted
// transaction enters the node's mempool and is flooded to the network.
// A non-nil error means the node's own state is broken.
func (n *Node) ReceiveTransaction(transaction *externalapi.DomainTransaction) (Acceptance, error) {
	acceptance, err := n.handleTransaction(transaction)
	if err != nil || !acceptance.IsAccepted() {
		return acceptance, err
	}
	n.relay(appmessage.NewMsgTransaction(n.id, transaction))
	return acceptance, nil
}

// ReceiveBlock offers a block to the node. An accepted block is admitted to
// the node's ledger, its transactions leave the mempool and it is flooded to
// the network.
// A non-nil error means the node's own state is broken.
func (n *Node) ReceiveBlock(block *externalapi.DomainBlock) (Acceptance, error) {
	acceptance, err := n.handleBlock(block)
	if err != nil || !acceptance.IsAccepted() {
		return acceptance, err
	}
	n.relay(appmessage.NewMsgBlock(n.id, block))
	return acceptance, nil
}

// handleTransaction processes transaction and notifies the registered
// handlers if it was accepted. It does not relay.
func (n *Node) handleTransaction(transaction *externalapi.DomainTransaction) (Acceptance, error) {
	acceptance, err := n.processTransaction(transaction)
	if err != nil || !acceptance.IsAccepted() {
		return acceptance, err
	}
	n.notifyTransactionAccepted(transaction)
	return acceptance, nil
}

func (n *Node) processTransaction(transaction *externalapi.DomainTransaction) (Acceptance, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	transactionHash := consensushashing.TransactionHash(transaction)
	key := seenKey{command: appmessage.CmdTransaction, hash: transactionHash}
	if n.seen.has(key) || n.miningManager.HasTransaction(transactionHash) {
		return alreadyKnown, nil
	}

	fee, err := n.miningManager.ValidateAndInsertTransaction(transaction)
	if err != nil {
		if ruleerrors.IsRuleError(err) {
			log.Debugf("Node %s rejected transaction %s: %s", n.id, transactionHash, err)
			return rejected(err), nil
		}
		log.Criticalf("Node %s failed to validate transaction %s: %+v", n.id, transactionHash, err)
		return Acceptance{}, err
	}

	n.seen.add(key)
	log.Debugf("Node %s accepted transaction %s with fee %d", n.id, transactionHash, fee)
	return accepted, nil
}

// handleBlock processes block and notifies the registered handlers if it
// was accepted. It does not relay.
func (n *Node) handleBlock(block *externalapi.DomainBlock) (Acceptance, error) {
	acceptance, err := n.processBlock(block)
	if err != nil || !acceptance.IsAccepted() {
		return acceptance, err
	}
	n.notifyBlockAdded(block)
	return acceptance, nil
}

func (n *Node) processBlock(block *externalapi.DomainBlock) (Acceptance, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	blockHash := consensushashing.BlockHash(block)
	key := seenKey{command: appmessage.CmdBlock, hash: blockHash}
	if n.seen.has(key) || n.consensus.HasBlock(blockHash) {
		return alreadyKnown, nil
	}

	err := n.consensus.ValidateAndInsertBlock(block, n.miningManager.PendingClaims())
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateBlock):
			return alreadyKnown, nil
		case ruleerrors.IsRuleError(err), errors.Is(err, ledger.ErrUnknownParent):
			log.Debugf("Node %s rejected block %s: %s", n.id, blockHash, err)
			return rejected(err), nil
		default:
			log.Criticalf("Node %s failed to validate block %s: %+v", n.id, blockHash, err)
			return Acceptance{}, err
		}
	}

	removed := n.miningManager.HandleNewBlock(block)
	for _, transactionHash := range removed {
		n.seen.remove(seenKey{command: appmessage.CmdTransaction, hash: transactionHash})
	}
	n.seen.add(key)

	height, err := n.consensus.GetBlockHeight(blockHash)
	if err != nil {
		return Acceptance{}, err
	}
	log.Infof("Node %s accepted block %s at height %d (%d transactions, %d left the mempool)",
		n.id, blockHash, height, block.TransactionCount(), len(removed))
	return accepted, nil
}
