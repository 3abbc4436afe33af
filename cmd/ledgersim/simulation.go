package main

import (
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/kaspanet/ledgersim/app/node"
	"github.com/kaspanet/ledgersim/app/wallet"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/crypto"
	"github.com/kaspanet/ledgersim/infrastructure/config"
	"github.com/kaspanet/ledgersim/infrastructure/logger"
	"github.com/kaspanet/ledgersim/util"
	"github.com/pkg/errors"
)

const (
	relayTimeout = 30 * time.Second
	transferFee  = 1
)

type simulation struct {
	cfg     *config.Config
	network *node.Network
	nodes   []*node.Node
	wallets []*wallet.Wallet

	transfersDone int
}

func runSimulation(cfg *config.Config) (err error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "runSimulation")
	defer onEnd()

	s, err := newSimulation(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := s.network.Close()
		if err == nil {
			err = closeErr
		}
	}()

	s.network.Start()
	for i := 0; i < cfg.Blocks; i++ {
		err := s.mineNextBlock(i)
		if err != nil {
			return err
		}
		if s.transfersDone < cfg.Transfers {
			err = s.transfer(i)
			if err != nil {
				return err
			}
		}
	}

	err = s.checkAgreement()
	if err != nil {
		return err
	}
	return s.report()
}

func newSimulation(cfg *config.Config) (*simulation, error) {
	provider := crypto.NewSecp256k1Provider()
	s := &simulation{
		cfg:     cfg,
		network: node.NewNetwork(),
	}

	for i := 0; i < cfg.Nodes; i++ {
		n, err := s.network.AddNode(&node.Config{
			ID:             fmt.Sprintf("node%d", i),
			Params:         cfg.NetParams(),
			SnapshotStore:  cfg.SnapshotStore,
			CryptoProvider: provider,
			Async:          cfg.Async,
		})
		if err != nil {
			return nil, err
		}

		mnemonic, err := wallet.CreateMnemonic()
		if err != nil {
			return nil, err
		}
		w, err := wallet.New(n, provider, mnemonic)
		if err != nil {
			return nil, err
		}
		s.nodes = append(s.nodes, n)
		s.wallets = append(s.wallets, w)
	}

	err := s.network.Connect(node.Topology(cfg.Topology))
	if err != nil {
		return nil, err
	}
	log.Infof("Created %d %s nodes in a %s", cfg.Nodes, cfg.NetParams().Name, cfg.Topology)
	return s, nil
}

// waitForRelay blocks until the network settled in asynchronous mode
func (s *simulation) waitForRelay() error {
	if !s.cfg.Async {
		return nil
	}
	return s.network.WaitUntilIdle(relayTimeout)
}

// mineNextBlock mines on the nodes in turn, paying the miner's wallet
func (s *simulation) mineNextBlock(round int) error {
	minerIndex := round % len(s.nodes)
	rewardAddress, err := s.wallets[minerIndex].GenerateAddress()
	if err != nil {
		return err
	}

	block, acceptance, err := s.nodes[minerIndex].MineBlock(rewardAddress)
	if err != nil {
		return err
	}
	if !acceptance.IsAccepted() {
		return errors.Errorf("node %s did not accept its own block: %s", s.nodes[minerIndex].ID(), acceptance)
	}
	log.Infof("Node %s mined a block with %d transactions paying %s", s.nodes[minerIndex].ID(),
		block.TransactionCount(), util.EncodeAddress(rewardAddress))
	return s.waitForRelay()
}

// transfer sends half the balance of the first wallet that can afford it to
// the next wallet. Not finding such a wallet is not an error: coinbases
// need to be buried before they are spendable.
func (s *simulation) transfer(round int) error {
	for offset := 0; offset < len(s.wallets); offset++ {
		senderIndex := (round + offset) % len(s.wallets)
		recipientIndex := (senderIndex + 1) % len(s.wallets)

		balance, err := s.wallets[senderIndex].Balance()
		if err != nil {
			return err
		}
		if balance < 2+transferFee {
			continue
		}

		recipientAddress, err := s.wallets[recipientIndex].GenerateAddress()
		if err != nil {
			return err
		}
		amount := (balance - transferFee) / 2
		transaction, acceptance, err := s.wallets[senderIndex].Send(recipientAddress, amount, transferFee)
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			continue
		}
		if err != nil {
			return err
		}
		if !acceptance.IsAccepted() {
			log.Warnf("Transfer from wallet %d was not accepted: %s", senderIndex, acceptance)
			continue
		}

		s.transfersDone++
		log.Infof("Wallet %d sent %d to wallet %d in transaction %s", senderIndex, amount, recipientIndex,
			consensushashing.TransactionHash(transaction))
		return s.waitForRelay()
	}
	log.Debugf("No wallet can afford a transfer after round %d", round)
	return nil
}

// checkAgreement verifies that every node ended on the same best tip with
// the same UTXO set
func (s *simulation) checkAgreement() error {
	if len(s.nodes) == 0 || s.cfg.Blocks == 0 {
		return nil
	}
	expectedTip, err := s.nodes[0].BestTipHash()
	if err != nil {
		return err
	}
	expectedCommitment, err := s.nodes[0].UTXOCommitment(expectedTip)
	if err != nil {
		return err
	}

	for _, n := range s.nodes[1:] {
		tip, err := n.BestTipHash()
		if err != nil {
			return err
		}
		if tip != expectedTip {
			return errors.Errorf("node %s ended on %s while %s ended on %s", n.ID(), tip, s.nodes[0].ID(), expectedTip)
		}
		commitment, err := n.UTXOCommitment(tip)
		if err != nil {
			return err
		}
		if commitment != expectedCommitment {
			return errors.Errorf("node %s has UTXO commitment %s while %s has %s", n.ID(), commitment,
				s.nodes[0].ID(), expectedCommitment)
		}
	}
	log.Infof("All %d nodes agree on best tip %s with UTXO commitment %s", len(s.nodes), expectedTip,
		expectedCommitment)
	return nil
}

func (s *simulation) report() error {
	bestChain := s.nodes[0].BestChain()
	fmt.Printf("Best chain of %s (%d blocks):\n", s.nodes[0].ID(), len(bestChain))
	for height, hash := range bestChain {
		fmt.Printf("  %4d %s\n", height, hash)
	}

	fmt.Printf("Transfers: %d\n", s.transfersDone)
	for i, w := range s.wallets {
		balance, err := w.Balance()
		if err != nil {
			return err
		}
		fmt.Printf("Wallet %d (%s): balance %d over %d addresses\n", i, s.nodes[i].ID(), balance,
			len(w.Addresses()))
	}

	if s.cfg.DumpState {
		utxoSet, err := s.nodes[0].UTXOAsOfBestTip()
		if err != nil {
			return err
		}
		spew.Fdump(os.Stdout, bestChain)
		spew.Fdump(os.Stdout, utxoSet)
	}
	return nil
}
