package node

import (
	"testing"
	"time"

	"github.com/kaspanet/ledgersim/domain/chainconfig"
	"github.com/kaspanet/ledgersim/domain/consensus"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/ruleerrors"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/crypto"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/merkle"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/transactionhelper"
	"github.com/pkg/errors"
)

func testParams() *chainconfig.Params {
	params := chainconfig.SimnetParams
	params.MiningDifficulty = 1
	return &params
}

func newTestNetwork(t *testing.T, nodeCount int, async bool, topology Topology) *Network {
	params := testParams()
	provider := crypto.NewSecp256k1Provider()
	network := NewNetwork()
	for i := 0; i < nodeCount; i++ {
		_, err := network.AddNode(&Config{
			ID:             string(rune('a' + i)),
			Params:         params,
			SnapshotStore:  consensus.SnapshotStoreMemory,
			CryptoProvider: provider,
			Async:          async,
		})
		if err != nil {
			t.Fatalf("AddNode: %+v", err)
		}
	}
	err := network.Connect(topology)
	if err != nil {
		t.Fatalf("Connect: %+v", err)
	}
	network.Start()
	t.Cleanup(func() {
		err := network.Close()
		if err != nil {
			t.Errorf("Close: %+v", err)
		}
	})
	return network
}

func generateKey(t *testing.T) (*crypto.KeyPair, externalapi.DomainAddress) {
	provider := crypto.NewSecp256k1Provider()
	key, err := provider.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %+v", err)
	}
	return key, provider.Hash160(key.PublicKey)
}

// spendOutput returns a transaction moving output index of spent to the
// given outputs.
func spendOutput(t *testing.T, key *crypto.KeyPair, spent *externalapi.DomainTransaction, index int32,
	outputs ...*externalapi.DomainTransactionOutput) *externalapi.DomainTransaction {

	output, ok := spent.Output(index)
	if !ok {
		t.Fatalf("spendOutput: transaction has no output %d", index)
	}
	signature, err := crypto.NewSecp256k1Provider().Sign(key.PrivateKey, consensushashing.OutputHash(output))
	if err != nil {
		t.Fatalf("Sign: %+v", err)
	}
	input := &externalapi.DomainTransactionInput{
		PreviousOutpoint: externalapi.DomainOutpoint{TransactionID: consensushashing.TransactionHash(spent), Index: index},
		Signature:        signature,
		PublicKey:        key.PublicKey,
	}
	return externalapi.NewDomainTransaction([]*externalapi.DomainTransactionInput{input}, outputs)
}

func mineAccepted(t *testing.T, miner *Node, rewardAddress externalapi.DomainAddress) *externalapi.DomainBlock {
	block, acceptance, err := miner.MineBlock(rewardAddress)
	if err != nil {
		t.Fatalf("MineBlock: %+v", err)
	}
	if !acceptance.IsAccepted() {
		t.Fatalf("MineBlock: node %s did not accept its own block: %s", miner.ID(), acceptance)
	}
	return block
}

func TestSynchronousRingFlood(t *testing.T) {
	network := newTestNetwork(t, 4, false, TopologyRing)
	nodes := network.Nodes()

	minerKey, minerAddress := generateKey(t)
	genesis := mineAccepted(t, nodes[0], minerAddress)
	genesisHash := consensushashing.BlockHash(genesis)
	for _, n := range nodes {
		if !n.HasBlock(genesisHash) {
			t.Fatalf("TestSynchronousRingFlood: node %s missed the genesis block", n.ID())
		}
	}

	_, recipient := generateKey(t)
	coinbase := genesis.Transactions()[0]
	payment := spendOutput(t, minerKey, coinbase, 0,
		&externalapi.DomainTransactionOutput{Value: 30, Address: recipient},
		&externalapi.DomainTransactionOutput{Value: 15, Address: minerAddress})
	paymentHash := consensushashing.TransactionHash(payment)

	acceptance, err := nodes[2].ReceiveTransaction(payment)
	if err != nil {
		t.Fatalf("ReceiveTransaction: %+v", err)
	}
	if acceptance.Status != Accepted {
		t.Fatalf("TestSynchronousRingFlood: payment was not accepted: %s", acceptance)
	}
	for _, n := range nodes {
		if !n.HasTransaction(paymentHash) {
			t.Fatalf("TestSynchronousRingFlood: node %s missed the payment", n.ID())
		}
	}

	acceptance, err = nodes[1].ReceiveTransaction(payment)
	if err != nil {
		t.Fatalf("ReceiveTransaction: %+v", err)
	}
	if acceptance.Status != AlreadyKnown {
		t.Fatalf("TestSynchronousRingFlood: got %s for a known transaction", acceptance)
	}

	_, secondMinerAddress := generateKey(t)
	block := mineAccepted(t, nodes[3], secondMinerAddress)
	if block.TransactionCount() != 2 {
		t.Fatalf("TestSynchronousRingFlood: mined block holds %d transactions, want 2", block.TransactionCount())
	}
	coinbaseOutputs := block.Transactions()[0].Outputs()
	if coinbaseOutputs[0].Value != testParams().MiningReward+5 {
		t.Fatalf("TestSynchronousRingFlood: coinbase pays %d, want the reward plus a fee of 5",
			coinbaseOutputs[0].Value)
	}

	blockHash := consensushashing.BlockHash(block)
	for _, n := range nodes {
		bestTipHash, err := n.BestTipHash()
		if err != nil {
			t.Fatalf("BestTipHash: %+v", err)
		}
		if bestTipHash != blockHash {
			t.Fatalf("TestSynchronousRingFlood: node %s has best tip %s, want %s", n.ID(), bestTipHash, blockHash)
		}
		if n.MempoolCount() != 0 {
			t.Fatalf("TestSynchronousRingFlood: node %s still holds %d pending transactions",
				n.ID(), n.MempoolCount())
		}
	}
}

func TestFloodTerminatesOnCycles(t *testing.T) {
	for _, topology := range []Topology{TopologyRing, TopologyMesh, TopologyLine} {
		network := newTestNetwork(t, 5, false, topology)

		counts := make(map[string]int)
		for _, n := range network.Nodes() {
			n := n
			n.RegisterBlockAddedHandler(func(*externalapi.DomainBlock) {
				counts[n.ID()]++
			})
		}

		_, address := generateKey(t)
		mineAccepted(t, network.Nodes()[2], address)
		for _, n := range network.Nodes() {
			if counts[n.ID()] != 1 {
				t.Fatalf("TestFloodTerminatesOnCycles: %s: node %s was notified %d times, want once",
					topology, n.ID(), counts[n.ID()])
			}
		}
	}
}

func TestAsynchronousRingFlood(t *testing.T) {
	network := newTestNetwork(t, 5, true, TopologyRing)
	nodes := network.Nodes()

	var blockHashes []externalapi.DomainHash
	for i := 0; i < 3; i++ {
		_, address := generateKey(t)
		block := mineAccepted(t, nodes[i], address)
		blockHashes = append(blockHashes, consensushashing.BlockHash(block))

		err := network.WaitUntilIdle(10 * time.Second)
		if err != nil {
			t.Fatalf("WaitUntilIdle: %+v", err)
		}
	}

	for _, n := range nodes {
		if n.BlockCount() != len(blockHashes) {
			t.Fatalf("TestAsynchronousRingFlood: node %s holds %d blocks, want %d",
				n.ID(), n.BlockCount(), len(blockHashes))
		}
		height, err := n.BestHeight()
		if err != nil {
			t.Fatalf("BestHeight: %+v", err)
		}
		if height != 2 {
			t.Fatalf("TestAsynchronousRingFlood: node %s is at height %d, want 2", n.ID(), height)
		}
	}
}

func TestRejections(t *testing.T) {
	network := newTestNetwork(t, 2, false, TopologyLine)
	nodes := network.Nodes()

	_, address := generateKey(t)
	genesis := mineAccepted(t, nodes[0], address)

	noInputs := externalapi.NewDomainTransaction(nil,
		[]*externalapi.DomainTransactionOutput{{Value: 10, Address: address}})
	acceptance, err := nodes[0].ReceiveTransaction(noInputs)
	if err != nil {
		t.Fatalf("ReceiveTransaction: %+v", err)
	}
	if acceptance.Status != Rejected || !errors.Is(acceptance.RejectReason, ruleerrors.ErrNoTxInputs) {
		t.Fatalf("TestRejections: got %s for a transaction without inputs", acceptance)
	}
	if nodes[1].HasTransaction(consensushashing.TransactionHash(noInputs)) {
		t.Fatalf("TestRejections: a rejected transaction was relayed")
	}

	coinbase := transactionhelper.NewCoinbaseTransaction(
		&externalapi.DomainTransactionOutput{Value: testParams().MiningReward, Address: address})
	transactions := []*externalapi.DomainTransaction{coinbase}

	orphan := externalapi.NewDomainBlock(externalapi.DomainHash{0x11}, merkle.CalculateHashMerkleRoot(transactions),
		genesis.TimeInSeconds()+1, 0, transactions)
	acceptance, err = nodes[1].ReceiveBlock(orphan)
	if err != nil {
		t.Fatalf("ReceiveBlock: %+v", err)
	}
	var missingParentsErr ruleerrors.ErrMissingParents
	if acceptance.Status != Rejected || !errors.As(acceptance.RejectReason, &missingParentsErr) {
		t.Fatalf("TestRejections: got %s for a block with an unknown parent", acceptance)
	}

	badRoot := externalapi.NewDomainBlock(consensushashing.BlockHash(genesis), externalapi.DomainHash{0x22},
		genesis.TimeInSeconds()+1, 0, transactions)
	acceptance, err = nodes[1].ReceiveBlock(badRoot)
	if err != nil {
		t.Fatalf("ReceiveBlock: %+v", err)
	}
	if acceptance.Status != Rejected || !errors.Is(acceptance.RejectReason, ruleerrors.ErrBadMerkleRoot) {
		t.Fatalf("TestRejections: got %s for a block with a bad merkle root", acceptance)
	}
	if nodes[0].BlockCount() != 1 || nodes[1].BlockCount() != 1 {
		t.Fatalf("TestRejections: a rejected block was admitted")
	}

	acceptance, err = nodes[1].ReceiveBlock(genesis)
	if err != nil {
		t.Fatalf("ReceiveBlock: %+v", err)
	}
	if acceptance.Status != AlreadyKnown {
		t.Fatalf("TestRejections: got %s for a known block", acceptance)
	}
}

func TestBlockConflictingWithPendingTransaction(t *testing.T) {
	network := newTestNetwork(t, 1, false, TopologyLine)
	node := network.Nodes()[0]

	minerKey, minerAddress := generateKey(t)
	genesis := mineAccepted(t, node, minerAddress)
	coinbase := genesis.Transactions()[0]

	_, recipient := generateKey(t)
	pending := spendOutput(t, minerKey, coinbase, 0,
		&externalapi.DomainTransactionOutput{Value: 40, Address: recipient})
	acceptance, err := node.ReceiveTransaction(pending)
	if err != nil {
		t.Fatalf("ReceiveTransaction: %+v", err)
	}
	if acceptance.Status != Accepted {
		t.Fatalf("TestBlockConflictingWithPendingTransaction: pending transaction was not accepted: %s", acceptance)
	}

	conflicting := spendOutput(t, minerKey, coinbase, 0,
		&externalapi.DomainTransactionOutput{Value: 30, Address: minerAddress})
	blockCoinbase := transactionhelper.NewCoinbaseTransaction(
		&externalapi.DomainTransactionOutput{Value: testParams().MiningReward + 20, Address: minerAddress})
	transactions := []*externalapi.DomainTransaction{blockCoinbase, conflicting}
	block := externalapi.NewDomainBlock(consensushashing.BlockHash(genesis), merkle.CalculateHashMerkleRoot(transactions),
		genesis.TimeInSeconds()+1, 0, transactions)

	acceptance, err = node.ReceiveBlock(block)
	if err != nil {
		t.Fatalf("ReceiveBlock: %+v", err)
	}
	if acceptance.Status != Rejected || !errors.Is(acceptance.RejectReason, ruleerrors.ErrDoubleSpendInMempool) {
		t.Fatalf("TestBlockConflictingWithPendingTransaction: got %s for a block spending a pending outpoint", acceptance)
	}
	if node.BlockCount() != 1 {
		t.Fatalf("TestBlockConflictingWithPendingTransaction: the conflicting block was admitted")
	}
	if !node.HasTransaction(consensushashing.TransactionHash(pending)) {
		t.Fatalf("TestBlockConflictingWithPendingTransaction: the pending transaction was evicted")
	}

	mined := mineAccepted(t, node, minerAddress)
	if mined.TransactionCount() != 2 || node.MempoolCount() != 0 {
		t.Fatalf("TestBlockConflictingWithPendingTransaction: a block carrying the pending transaction itself "+
			"was not admitted cleanly")
	}
}

func TestResubmitMinedTransaction(t *testing.T) {
	network := newTestNetwork(t, 2, false, TopologyLine)
	nodes := network.Nodes()

	minerKey, minerAddress := generateKey(t)
	genesis := mineAccepted(t, nodes[0], minerAddress)

	payment := spendOutput(t, minerKey, genesis.Transactions()[0], 0,
		&externalapi.DomainTransactionOutput{Value: 45, Address: minerAddress})
	paymentHash := consensushashing.TransactionHash(payment)
	acceptance, err := nodes[0].ReceiveTransaction(payment)
	if err != nil {
		t.Fatalf("ReceiveTransaction: %+v", err)
	}
	if acceptance.Status != Accepted {
		t.Fatalf("TestResubmitMinedTransaction: payment was not accepted: %s", acceptance)
	}

	block := mineAccepted(t, nodes[1], minerAddress)
	if block.TransactionCount() != 2 {
		t.Fatalf("TestResubmitMinedTransaction: mined block holds %d transactions, want 2", block.TransactionCount())
	}

	for _, n := range nodes {
		if n.HasTransaction(paymentHash) {
			t.Fatalf("TestResubmitMinedTransaction: node %s still holds the mined payment", n.ID())
		}
		acceptance, err := n.ReceiveTransaction(payment)
		if err != nil {
			t.Fatalf("ReceiveTransaction: %+v", err)
		}
		var missingErr ruleerrors.ErrMissingTxOut
		if acceptance.Status != Rejected || !errors.As(acceptance.RejectReason, &missingErr) {
			t.Fatalf("TestResubmitMinedTransaction: node %s got %s for a mined transaction, want a missing output",
				n.ID(), acceptance)
		}
		if n.HasTransaction(paymentHash) {
			t.Fatalf("TestResubmitMinedTransaction: node %s pooled a mined transaction again", n.ID())
		}
	}
}

func TestAcceptanceStatusString(t *testing.T) {
	tests := []struct {
		status   AcceptanceStatus
		expected string
	}{
		{Accepted, "Accepted"},
		{AlreadyKnown, "AlreadyKnown"},
		{Rejected, "Rejected"},
		{AcceptanceStatus(42), "Unknown"},
	}
	for _, test := range tests {
		if test.status.String() != test.expected {
			t.Fatalf("TestAcceptanceStatusString: got %s, want %s", test.status, test.expected)
		}
	}
}
