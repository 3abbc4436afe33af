package node

import (
	"time"

	"github.com/pkg/errors"
)

// Topology names a way of linking the nodes of a network
type Topology string

// Supported topologies
const (
	TopologyRing Topology = "ring"
	TopologyLine Topology = "line"
	TopologyMesh Topology = "mesh"
)

// Network is a group of nodes sharing relay bookkeeping, so that
// WaitUntilIdle covers messages travelling between any of them.
type Network struct {
	nodes   []*Node
	tracker *relayTracker
}

// NewNetwork returns an empty network
func NewNetwork() *Network {
	return &Network{tracker: &relayTracker{}}
}

// AddNode creates a node as part of the network. The node is not linked to
// any peer.
func (net *Network) AddNode(cfg *Config) (*Node, error) {
	n, err := newNode(cfg, net.tracker)
	if err != nil {
		return nil, err
	}
	net.nodes = append(net.nodes, n)
	return n, nil
}

// Nodes returns the network's nodes in the order they were added
func (net *Network) Nodes() []*Node {
	nodes := make([]*Node, len(net.nodes))
	copy(nodes, net.nodes)
	return nodes
}

// Connect links the network's nodes according to topology
func (net *Network) Connect(topology Topology) error {
	switch topology {
	case TopologyLine, TopologyRing:
		for i := 1; i < len(net.nodes); i++ {
			net.nodes[i-1].AddPeer(net.nodes[i])
		}
		if topology == TopologyRing && len(net.nodes) > 2 {
			net.nodes[len(net.nodes)-1].AddPeer(net.nodes[0])
		}
	case TopologyMesh:
		for i := range net.nodes {
			for j := i + 1; j < len(net.nodes); j++ {
				net.nodes[i].AddPeer(net.nodes[j])
			}
		}
	default:
		return errors.Errorf("unknown topology %q", topology)
	}
	log.Debugf("Connected %d nodes in a %s", len(net.nodes), topology)
	return nil
}

// Start starts every node of the network
func (net *Network) Start() {
	for _, n := range net.nodes {
		n.Start()
	}
}

// WaitUntilIdle blocks until no relayed message is in flight between the
// network's nodes
func (net *Network) WaitUntilIdle(timeout time.Duration) error {
	return net.tracker.waitUntilIdle(timeout)
}

// Close stops and closes every node, returning the first error met
func (net *Network) Close() error {
	var firstErr error
	for _, n := range net.nodes {
		err := n.Close()
		if err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "failed closing node %s", n.id)
		}
	}
	return firstErr
}
