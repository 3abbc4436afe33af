package node

import (
	"sync/atomic"
	"time"

	"github.com/kaspanet/ledgersim/app/appmessage"
	"github.com/kaspanet/ledgersim/infrastructure/network/router"
	"github.com/pkg/errors"
)

const idlePollInterval = time.Millisecond

// relayTracker counts the relayed messages that were enqueued to some node
// but not yet handled by it. Nodes of one network share a tracker.
type relayTracker struct {
	inFlight int64
}

func (t *relayTracker) add() {
	atomic.AddInt64(&t.inFlight, 1)
}

func (t *relayTracker) done() {
	atomic.AddInt64(&t.inFlight, -1)
}

func (t *relayTracker) isIdle() bool {
	return atomic.LoadInt64(&t.inFlight) == 0
}

func (t *relayTracker) waitUntilIdle(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for !t.isIdle() {
		if time.Now().After(deadline) {
			return errors.Wrapf(router.ErrTimeout, "%d relayed messages still in flight after %s",
				atomic.LoadInt64(&t.inFlight), timeout)
		}
		time.Sleep(idlePollInterval)
	}
	return nil
}

// WaitUntilIdle blocks until every message relayed through the node's
// network was handled, or returns an error once timeout expires.
// It returns immediately for synchronous nodes.
func (n *Node) WaitUntilIdle(timeout time.Duration) error {
	return n.tracker.waitUntilIdle(timeout)
}

func (n *Node) relay(message appmessage.Message) {
	if n.async {
		n.relayAsynchronously(message)
		return
	}
	n.floodSynchronously(message)
}

// floodSynchronously delivers message breadth first, starting from n's
// peers. Only nodes that accept the message forward it further, so the
// flood stops on cycles once every node saw it.
func (n *Node) floodSynchronously(message appmessage.Message) {
	queue := []*Node{n}
	for len(queue) > 0 {
		sender := queue[0]
		queue = queue[1:]

		for _, peer := range sender.Peers() {
			relayLog.Tracef("Relaying %s from %s to %s", message.Command(), sender.id, peer.id)
			isAccepted, err := peer.handleRelayedMessage(message)
			if err != nil {
				relayLog.Errorf("Node %s failed handling %s relayed by %s: %+v",
					peer.id, message.Command(), sender.id, err)
				continue
			}
			if isAccepted {
				queue = append(queue, peer)
			}
		}
	}
}

// relayAsynchronously enqueues message to the route of every peer except
// the one that sent it. A full route drops the message.
func (n *Node) relayAsynchronously(message appmessage.Message) {
	senderID := messageSenderID(message)
	for _, peer := range n.Peers() {
		if peer.id == senderID {
			continue
		}
		if peer.route == nil {
			relayLog.Warnf("Node %s cannot relay to synchronous peer %s", n.id, peer.id)
			continue
		}

		forwarded, err := messageFrom(n.id, message)
		if err != nil {
			relayLog.Errorf("Node %s: %s", n.id, err)
			return
		}
		n.tracker.add()
		err = peer.route.Enqueue(forwarded)
		if err != nil {
			n.tracker.done()
			if errors.Is(err, router.ErrRouteCapacityReached) {
				relayLog.Warnf("Dropping %s from %s to %s (%d dropped so far): %s", message.Command(),
					n.id, peer.id, peer.route.Dropped(), err)
				continue
			}
			relayLog.Debugf("Could not relay %s from %s to %s: %s", message.Command(), n.id, peer.id, err)
		}
	}
}

func (n *Node) handleIncomingMessages() {
	defer n.wg.Done()

	for {
		message, err := n.route.Dequeue()
		if err != nil {
			relayLog.Tracef("Node %s stopped handling incoming messages: %s", n.id, err)
			return
		}
		n.handleIncomingMessage(message)
		n.tracker.done()
	}
}

func (n *Node) handleIncomingMessage(message appmessage.Message) {
	relayLog.Tracef("Node %s handling %s from %s, queued for %s", n.id, message.Command(),
		messageSenderID(message), time.Since(message.ReceivedAt()))

	isAccepted, err := n.handleRelayedMessage(message)
	if err != nil {
		relayLog.Errorf("Node %s failed handling %s: %+v", n.id, message.Command(), err)
		return
	}
	if isAccepted {
		n.relayAsynchronously(message)
	}
}

// handleRelayedMessage processes a message received from a peer and
// returns whether the node accepted it.
func (n *Node) handleRelayedMessage(message appmessage.Message) (bool, error) {
	var acceptance Acceptance
	var err error
	switch message := message.(type) {
	case *appmessage.MsgTransaction:
		acceptance, err = n.handleTransaction(message.Transaction)
	case *appmessage.MsgBlock:
		acceptance, err = n.handleBlock(message.Block)
	default:
		return false, errors.Errorf("unexpected message %s", message.Command())
	}
	if err != nil {
		return false, err
	}
	return acceptance.IsAccepted(), nil
}

func messageSenderID(message appmessage.Message) string {
	switch message := message.(type) {
	case *appmessage.MsgTransaction:
		return message.SenderID
	case *appmessage.MsgBlock:
		return message.SenderID
	}
	return ""
}

// messageFrom returns a copy of message sent by senderID.
func messageFrom(senderID string, message appmessage.Message) (appmessage.Message, error) {
	switch message := message.(type) {
	case *appmessage.MsgTransaction:
		return appmessage.NewMsgTransaction(senderID, message.Transaction), nil
	case *appmessage.MsgBlock:
		return appmessage.NewMsgBlock(senderID, message.Block), nil
	}
	return nil, errors.Errorf("cannot relay message %s", message.Command())
}
