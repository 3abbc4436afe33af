package consensus

import (
	"testing"

	"github.com/kaspanet/ledgersim/domain/chainconfig"
	"github.com/kaspanet/ledgersim/domain/consensus/ledger"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/ruleerrors"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/crypto"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/merkle"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/transactionhelper"
	"github.com/pkg/errors"
)

func newTestConsensus(t *testing.T, snapshotStoreKind string) Consensus {
	params := chainconfig.SimnetParams
	tc, err := NewFactory().NewConsensus(&params, snapshotStoreKind, crypto.NewSecp256k1Provider())
	if err != nil {
		t.Fatalf("NewConsensus: %+v", err)
	}
	return tc
}

func addBlock(t *testing.T, tc Consensus, parent externalapi.DomainHash, rewardAddress externalapi.DomainAddress,
	fees uint64, transactions ...*externalapi.DomainTransaction) *externalapi.DomainBlock {

	coinbase := transactionhelper.NewCoinbaseTransaction(&externalapi.DomainTransactionOutput{
		Value:   tc.Params().MiningReward + fees,
		Address: rewardAddress,
	})
	transactions = append([]*externalapi.DomainTransaction{coinbase}, transactions...)
	block := externalapi.NewDomainBlock(parent, merkle.CalculateHashMerkleRoot(transactions), 1600000000, 0, transactions)
	err := tc.ValidateAndInsertBlock(block, nil)
	if err != nil {
		t.Fatalf("ValidateAndInsertBlock: %+v", err)
	}
	return block
}

func TestConsensusFlow(t *testing.T) {
	for _, storeKind := range []string{SnapshotStoreMemory, SnapshotStoreLevelDB} {
		tc := newTestConsensus(t, storeKind)
		provider := crypto.NewSecp256k1Provider()
		key, err := provider.GenerateKeyPair()
		if err != nil {
			t.Fatalf("GenerateKeyPair: %+v", err)
		}
		address := provider.Hash160(key.PublicKey)

		utxoSet, err := tc.UTXOAsOfBestTip()
		if err != nil {
			t.Fatalf("UTXOAsOfBestTip: %+v", err)
		}
		if utxoSet.Len() != 0 {
			t.Fatalf("TestConsensusFlow: %s: empty ledger has a non-empty UTXO set", storeKind)
		}

		genesis := tc.Params().NewGenesisBlock(address, 1600000000)
		err = tc.ValidateAndInsertBlock(genesis, nil)
		if err != nil {
			t.Fatalf("ValidateAndInsertBlock: %+v", err)
		}
		err = tc.ValidateAndInsertBlock(genesis, nil)
		if !errors.Is(err, ledger.ErrDuplicateBlock) {
			t.Fatalf("TestConsensusFlow: %s: expected ErrDuplicateBlock, got %+v", storeKind, err)
		}

		genesisCoinbase := genesis.Transactions()[0]
		spentOutput, _ := genesisCoinbase.Output(0)
		signature, err := provider.Sign(key.PrivateKey, consensushashing.OutputHash(spentOutput))
		if err != nil {
			t.Fatalf("Sign: %+v", err)
		}
		spend := externalapi.NewDomainTransaction([]*externalapi.DomainTransactionInput{{
			PreviousOutpoint: externalapi.DomainOutpoint{
				TransactionID: consensushashing.TransactionHash(genesisCoinbase), Index: 0},
			Signature: signature,
			PublicKey: key.PublicKey,
		}}, []*externalapi.DomainTransactionOutput{
			{Value: 30, Address: externalapi.DomainAddress{0xb0}},
			{Value: 18, Address: address},
		})
		fee, err := tc.ValidateTransaction(spend, nil)
		if err != nil {
			t.Fatalf("ValidateTransaction: %+v", err)
		}
		if fee != 2 {
			t.Fatalf("TestConsensusFlow: %s: got fee %d, want 2", storeKind, fee)
		}

		block1 := addBlock(t, tc, consensushashing.BlockHash(genesis), externalapi.DomainAddress{0x01}, fee, spend)
		_, err = tc.ValidateTransaction(spend, nil)
		var missingErr ruleerrors.ErrMissingTxOut
		if !errors.As(err, &missingErr) {
			t.Fatalf("TestConsensusFlow: %s: expected a spent output to be missing, got %+v", storeKind, err)
		}

		block1Hash := consensushashing.BlockHash(block1)
		confirmed, err := tc.IsConfirmed(block1Hash)
		if err != nil {
			t.Fatalf("IsConfirmed: %+v", err)
		}
		if confirmed {
			t.Fatalf("TestConsensusFlow: %s: a tip cannot be confirmed", storeKind)
		}
		parent := block1Hash
		for i := 0; i < 2; i++ {
			parent = consensushashing.BlockHash(addBlock(t, tc, parent, externalapi.DomainAddress{0x02, byte(i)}, 0))
		}
		confirmed, err = tc.IsConfirmed(block1Hash)
		if err != nil {
			t.Fatalf("IsConfirmed: %+v", err)
		}
		if !confirmed {
			t.Fatalf("TestConsensusFlow: %s: block 1 must be confirmed two blocks deep", storeKind)
		}

		utxoSet, err = tc.UTXOAsOfBestTip()
		if err != nil {
			t.Fatalf("UTXOAsOfBestTip: %+v", err)
		}
		// Three coinbases of the later blocks plus the two outputs of spend.
		if utxoSet.Len() != 5 || utxoSet.TotalAmount() != 3*50+2+48 {
			t.Fatalf("TestConsensusFlow: %s: unexpected UTXO set of %d entries worth %d",
				storeKind, utxoSet.Len(), utxoSet.TotalAmount())
		}
		if len(utxoSet.FilterByAddress(address)) != 1 {
			t.Fatalf("TestConsensusFlow: %s: expected a single change output", storeKind)
		}

		containing, err := tc.GetContainingBlock(consensushashing.TransactionHash(spend))
		if err != nil {
			t.Fatalf("GetContainingBlock: %+v", err)
		}
		if consensushashing.BlockHash(containing) != block1Hash {
			t.Fatalf("TestConsensusFlow: %s: spend is indexed under the wrong block", storeKind)
		}

		err = tc.Close()
		if err != nil {
			t.Fatalf("Close: %+v", err)
		}
	}
}

func TestValidateAndInsertBlockRejectsInvalid(t *testing.T) {
	tc := newTestConsensus(t, SnapshotStoreMemory)
	genesis := tc.Params().NewGenesisBlock(externalapi.DomainAddress{0x0a}, 0)
	err := tc.ValidateAndInsertBlock(genesis, nil)
	if err != nil {
		t.Fatalf("ValidateAndInsertBlock: %+v", err)
	}

	transactions := []*externalapi.DomainTransaction{transactionhelper.NewCoinbaseTransaction(
		&externalapi.DomainTransactionOutput{Value: 51, Address: externalapi.DomainAddress{0x0b}})}
	block := externalapi.NewDomainBlock(consensushashing.BlockHash(genesis),
		merkle.CalculateHashMerkleRoot(transactions), 0, 0, transactions)
	err = tc.ValidateAndInsertBlock(block, nil)
	if !errors.Is(err, ruleerrors.ErrBadCoinbaseAmount) {
		t.Fatalf("TestValidateAndInsertBlockRejectsInvalid: expected ErrBadCoinbaseAmount, got %+v", err)
	}
	if tc.BlockCount() != 1 || tc.HasBlock(consensushashing.BlockHash(block)) {
		t.Fatalf("TestValidateAndInsertBlockRejectsInvalid: a rejected block was admitted")
	}
}

func TestNewConsensusUnknownStore(t *testing.T) {
	params := chainconfig.SimnetParams
	_, err := NewFactory().NewConsensus(&params, "bolt", crypto.NewSecp256k1Provider())
	if err == nil {
		t.Fatalf("TestNewConsensusUnknownStore: expected an error for an unknown snapshot store")
	}
}
