package blocktemplatebuilder

import (
	"math"
	"strings"
	"time"

	"github.com/kaspanet/ledgersim/domain/consensus"
	"github.com/kaspanet/ledgersim/domain/consensus/ledger"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/processes/transactionvalidator"
	"github.com/kaspanet/ledgersim/domain/consensus/ruleerrors"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/merkle"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/transactionhelper"
	"github.com/kaspanet/ledgersim/domain/miningmanager/model"
	"github.com/pkg/errors"
)

// blockTemplateBuilder creates block templates for a miner to consume
type blockTemplateBuilder struct {
	consensus consensus.Consensus
	mempool   model.Mempool
	now       func() time.Time
}

// New creates a new blockTemplateBuilder
func New(consensus consensus.Consensus, mempool model.Mempool) model.BlockTemplateBuilder {
	return newWithTimeSource(consensus, mempool, time.Now)
}

func newWithTimeSource(consensus consensus.Consensus, mempool model.Mempool,
	now func() time.Time) *blockTemplateBuilder {

	return &blockTemplateBuilder{
		consensus: consensus,
		mempool:   mempool,
		now:       now,
	}
}

// GetBlockTemplate builds a block on top of the best tip holding every
// pooled transaction that is still valid there, and a coinbase paying the
// mining reward plus their fees to rewardAddress. On an empty ledger the
// template is a genesis candidate.
//
// The coinbase is identified by its amount and address alone, so callers
// should use a fresh reward address for every template.
func (btb *blockTemplateBuilder) GetBlockTemplate(rewardAddress externalapi.DomainAddress) (*externalapi.DomainBlock, error) {
	parentHash, err := btb.consensus.GetBestTipHash()
	if errors.Is(err, ledger.ErrEmptyLedger) {
		parentHash = externalapi.ZeroHash
	} else if err != nil {
		return nil, err
	}

	selected, fees, err := btb.selectTransactions()
	if err != nil {
		return nil, err
	}

	coinbaseValue, err := transactionhelper.AddValues(btb.consensus.Params().MiningReward, fees)
	if err != nil {
		return nil, err
	}
	coinbase := transactionhelper.NewCoinbaseTransaction(&externalapi.DomainTransactionOutput{
		Value:   coinbaseValue,
		Address: rewardAddress,
	})
	transactions := append([]*externalapi.DomainTransaction{coinbase}, selected...)

	template := externalapi.NewDomainBlock(parentHash, merkle.CalculateHashMerkleRoot(transactions),
		int32(btb.now().Unix()), 0, transactions)
	log.Debugf("Built a block template on top of %s with %d transactions and %d in fees",
		parentHash, len(selected), fees)
	return template, nil
}

func (btb *blockTemplateBuilder) selectTransactions() ([]*externalapi.DomainTransaction, uint64, error) {
	claimed := make(transactionvalidator.ClaimedOutpoints)
	var selected []*externalapi.DomainTransaction
	fees := uint64(0)
	for _, transaction := range btb.mempool.Transactions() {
		transactionHash := consensushashing.TransactionHash(transaction)
		fee, err := btb.consensus.ValidateTransaction(transaction, claimed)
		if err != nil {
			if ruleerrors.IsRuleError(err) {
				log.Debugf("Skipping transaction %s: %s", transactionHash, err)
				continue
			}
			return nil, 0, err
		}
		newFees, err := transactionhelper.AddValues(fees, fee)
		if err != nil {
			log.Debugf("Skipping transaction %s: %s", transactionHash, err)
			continue
		}
		fees = newFees
		for _, input := range transaction.Inputs() {
			claimed[input.PreviousOutpoint] = transactionHash
		}
		selected = append(selected, transaction)
	}
	return selected, fees, nil
}

// SolveBlock increments the nonce of template until its hash has the
// network's mining difficulty of leading zero hex digits. The difficulty
// is a target for miners only: blocks are not validated against it.
func (btb *blockTemplateBuilder) SolveBlock(template *externalapi.DomainBlock) *externalapi.DomainBlock {
	prefix := strings.Repeat("0", btb.consensus.Params().MiningDifficulty)
	block := template
	for attempts := 1; ; attempts++ {
		if strings.HasPrefix(consensushashing.BlockHash(block).String(), prefix) {
			log.Tracef("Solved block %s after %d attempts", consensushashing.BlockHash(block), attempts)
			return block
		}
		block = btb.incrementNonce(block)
	}
}

// incrementNonce walks the nonce through every int32 value starting at
// zero. Once it wraps back to zero the timestamp is moved forward so that
// the same nonces yield new hashes.
func (btb *blockTemplateBuilder) incrementNonce(block *externalapi.DomainBlock) *externalapi.DomainBlock {
	nonce := block.Nonce()
	timestamp := block.TimeInSeconds()
	switch nonce {
	case math.MaxInt32:
		nonce = math.MinInt32
	case -1:
		nonce = 0
		timestamp = btb.nextTimestamp(timestamp)
	default:
		nonce++
	}
	return block.WithNonce(timestamp, nonce)
}

func (btb *blockTemplateBuilder) nextTimestamp(timestamp int32) int32 {
	now := int32(btb.now().Unix())
	if timestamp < now {
		return now
	}
	return timestamp + 1
}
