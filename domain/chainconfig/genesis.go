package chainconfig

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/merkle"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/transactionhelper"
)

// NewGenesisBlock returns a block without a parent whose single coinbase
// pays the mining reward to rewardAddress.
func (p *Params) NewGenesisBlock(rewardAddress externalapi.DomainAddress, timestamp int32) *externalapi.DomainBlock {
	coinbase := transactionhelper.NewCoinbaseTransaction(&externalapi.DomainTransactionOutput{
		Value:   p.MiningReward,
		Address: rewardAddress,
	})
	transactions := []*externalapi.DomainTransaction{coinbase}
	return externalapi.NewDomainBlock(externalapi.ZeroHash, merkle.CalculateHashMerkleRoot(transactions),
		timestamp, 0, transactions)
}
