package node

import (
	"sync"
	"sync/atomic"

	"github.com/kaspanet/ledgersim/domain/chainconfig"
	"github.com/kaspanet/ledgersim/domain/consensus"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/crypto"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/utxo"
	"github.com/kaspanet/ledgersim/domain/miningmanager"
	"github.com/kaspanet/ledgersim/infrastructure/network/router"
	"github.com/sasha-s/go-deadlock"
)

// Config holds everything needed to create a Node.
type Config struct {
	ID             string
	Params         *chainconfig.Params
	SnapshotStore  string
	CryptoProvider crypto.Provider

	// Async makes the node receive relayed messages through its own
	// bounded route, drained by a goroutine started with Start.
	Async bool
}

// Node is a single participant in the simulated network. It owns a
// consensus instance and a mempool, and floods every transaction and block
// it accepts to its peers.
type Node struct {
	id     string
	params *chainconfig.Params

	lock          deadlock.Mutex
	consensus     consensus.Consensus
	miningManager miningmanager.MiningManager
	seen          *seenCache

	peersLock deadlock.RWMutex
	peers     []*Node

	handlersLock                deadlock.RWMutex
	blockAddedHandlers          []BlockAddedHandler
	transactionAcceptedHandlers []TransactionAcceptedHandler

	async   bool
	route   *router.Route
	tracker *relayTracker
	started uint32
	stopped uint32
	wg      sync.WaitGroup
}

// New creates a node without peers.
func New(cfg *Config) (*Node, error) {
	return newNode(cfg, &relayTracker{})
}

func newNode(cfg *Config, tracker *relayTracker) (*Node, error) {
	consensusInstance, err := consensus.NewFactory().NewConsensus(cfg.Params, cfg.SnapshotStore, cfg.CryptoProvider)
	if err != nil {
		return nil, err
	}

	n := &Node{
		id:            cfg.ID,
		params:        cfg.Params,
		consensus:     consensusInstance,
		miningManager: miningmanager.NewFactory().NewMiningManager(consensusInstance),
		seen:          newSeenCache(cfg.Params.SeenCacheSize),
		async:         cfg.Async,
		tracker:       tracker,
	}
	if cfg.Async {
		n.route = router.NewRoute(cfg.ID, cfg.Params.RouteCapacity)
	}
	return n, nil
}

// ID returns the node's identifier
func (n *Node) ID() string {
	return n.id
}

// Params returns the network parameters the node runs with
func (n *Node) Params() *chainconfig.Params {
	return n.params
}

// AddPeer links n to peer in both directions. Linking a node to itself or
// linking two nodes twice does nothing.
func (n *Node) AddPeer(peer *Node) {
	if peer == n {
		return
	}
	n.addPeer(peer)
	peer.addPeer(n)
}

func (n *Node) addPeer(peer *Node) {
	n.peersLock.Lock()
	defer n.peersLock.Unlock()

	for _, existing := range n.peers {
		if existing == peer {
			return
		}
	}
	n.peers = append(n.peers, peer)
	log.Debugf("Connected %s to %s", n.id, peer.id)
}

// Peers returns a copy of the node's peer list
func (n *Node) Peers() []*Node {
	n.peersLock.RLock()
	defer n.peersLock.RUnlock()

	peers := make([]*Node, len(n.peers))
	copy(peers, n.peers)
	return peers
}

// Start starts the message handling goroutine of an asynchronous node.
// It does nothing for a synchronous node.
func (n *Node) Start() {
	if !n.async {
		return
	}
	if atomic.AddUint32(&n.started, 1) != 1 {
		return
	}

	log.Tracef("Starting node %s", n.id)
	n.wg.Add(1)
	spawn(n.handleIncomingMessages)
}

// Stop closes the node's route and waits for the messages already in it to
// be handled.
func (n *Node) Stop() {
	if atomic.AddUint32(&n.stopped, 1) != 1 {
		log.Warnf("Node %s is already stopped", n.id)
		return
	}
	if n.async {
		n.route.Close()
		n.wg.Wait()
		if dropped := n.route.Dropped(); dropped > 0 {
			log.Warnf("Node %s dropped %d relayed messages on a full route", n.id, dropped)
		}
	}
	log.Tracef("Node %s stopped", n.id)
}

// Close stops the node and releases its consensus resources
func (n *Node) Close() error {
	n.Stop()

	n.lock.Lock()
	defer n.lock.Unlock()
	return n.consensus.Close()
}

// BuildBlockTemplate returns an unsolved block on top of the node's best tip
// that carries every valid transaction of its mempool.
func (n *Node) BuildBlockTemplate(rewardAddress externalapi.DomainAddress) (*externalapi.DomainBlock, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	return n.miningManager.GetBlockTemplate(rewardAddress)
}

// MineBlock builds a block template, solves it and offers the result to the
// node itself, which relays it if accepted.
func (n *Node) MineBlock(rewardAddress externalapi.DomainAddress) (*externalapi.DomainBlock, Acceptance, error) {
	template, err := n.BuildBlockTemplate(rewardAddress)
	if err != nil {
		return nil, Acceptance{}, err
	}
	block := n.miningManager.SolveBlock(template)
	acceptance, err := n.ReceiveBlock(block)
	if err != nil {
		return nil, Acceptance{}, err
	}
	return block, acceptance, nil
}

// HasBlock returns whether the node admitted the given block
func (n *Node) HasBlock(blockHash externalapi.DomainHash) bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.consensus.HasBlock(blockHash)
}

// BlockCount returns the number of blocks the node admitted
func (n *Node) BlockCount() int {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.consensus.BlockCount()
}

// Block returns an admitted block by hash
func (n *Node) Block(blockHash externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.consensus.GetBlock(blockHash)
}

// BestTipHash returns the hash of the tip of the node's best chain
func (n *Node) BestTipHash() (externalapi.DomainHash, error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.consensus.GetBestTipHash()
}

// BestHeight returns the height of the node's best tip
func (n *Node) BestHeight() (uint64, error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.consensus.GetBestHeight()
}

// BestChain returns the node's best chain, from its root to its best tip
func (n *Node) BestChain() []externalapi.DomainHash {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.consensus.GetBestChain()
}

// Tips returns the hashes of all blocks without children
func (n *Node) Tips() []externalapi.DomainHash {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.consensus.GetTips()
}

// IsConfirmed returns whether blockHash is buried deep enough in the node's
// best chain
func (n *Node) IsConfirmed(blockHash externalapi.DomainHash) (bool, error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.consensus.IsConfirmed(blockHash)
}

// ContainingBlock returns the admitted block holding the given transaction
func (n *Node) ContainingBlock(transactionHash externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.consensus.GetContainingBlock(transactionHash)
}

// UTXOAsOfBestTip returns a copy of the UTXO set at the node's best tip
func (n *Node) UTXOAsOfBestTip() (utxo.Collection, error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.consensus.UTXOAsOfBestTip()
}

// UTXOCommitment returns the commitment to the UTXO set at blockHash
func (n *Node) UTXOCommitment(blockHash externalapi.DomainHash) (externalapi.DomainHash, error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.consensus.UTXOCommitment(blockHash)
}

// HasTransaction returns whether the given transaction waits in the node's
// mempool
func (n *Node) HasTransaction(transactionHash externalapi.DomainHash) bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.miningManager.HasTransaction(transactionHash)
}

// MempoolTransactions returns the node's pending transactions in arrival
// order
func (n *Node) MempoolTransactions() []*externalapi.DomainTransaction {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.miningManager.AllTransactions()
}

// MempoolCount returns the number of the node's pending transactions
func (n *Node) MempoolCount() int {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.miningManager.TransactionCount()
}
