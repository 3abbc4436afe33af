package miningmanager_test

import (
	"testing"

	"github.com/kaspanet/ledgersim/domain/chainconfig"
	"github.com/kaspanet/ledgersim/domain/consensus"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/ruleerrors"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/crypto"
	"github.com/kaspanet/ledgersim/domain/miningmanager"
	"github.com/pkg/errors"
)

// TestValidateAndInsertTransaction verifies that valid transactions enter the
// mempool, conflicting ones are rejected, and mined ones leave it.
func TestValidateAndInsertTransaction(t *testing.T) {
	params := chainconfig.SimnetParams
	params.MiningDifficulty = 0
	provider := crypto.NewSecp256k1Provider()
	tc, err := consensus.NewFactory().NewConsensus(&params, consensus.SnapshotStoreMemory, provider)
	if err != nil {
		t.Fatalf("Error setting up consensus: %+v", err)
	}
	miningManager := miningmanager.NewFactory().NewMiningManager(tc)

	key, err := provider.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %+v", err)
	}
	genesis, err := miningManager.GetBlockTemplate(provider.Hash160(key.PublicKey))
	if err != nil {
		t.Fatalf("GetBlockTemplate: %+v", err)
	}
	err = tc.ValidateAndInsertBlock(miningManager.SolveBlock(genesis), nil)
	if err != nil {
		t.Fatalf("ValidateAndInsertBlock: %+v", err)
	}

	coinbase := genesis.Transactions()[0]
	spentOutput, _ := coinbase.Output(0)
	signature, err := provider.Sign(key.PrivateKey, consensushashing.OutputHash(spentOutput))
	if err != nil {
		t.Fatalf("Sign: %+v", err)
	}
	spend := func(value uint64) *externalapi.DomainTransaction {
		return externalapi.NewDomainTransaction([]*externalapi.DomainTransactionInput{{
			PreviousOutpoint: externalapi.DomainOutpoint{TransactionID: consensushashing.TransactionHash(coinbase)},
			Signature:        signature,
			PublicKey:        key.PublicKey,
		}}, []*externalapi.DomainTransactionOutput{{Value: value, Address: externalapi.DomainAddress{0x0e}}})
	}

	fee, err := miningManager.ValidateAndInsertTransaction(spend(45))
	if err != nil {
		t.Fatalf("ValidateAndInsertTransaction: %v", err)
	}
	if fee != 5 || miningManager.TransactionCount() != 1 {
		t.Fatalf("Unexpected fee %d or mempool size %d", fee, miningManager.TransactionCount())
	}

	// Revalidating a pooled transaction does not trip over its own claims.
	_, err = miningManager.ValidateAndInsertTransaction(spend(45))
	if err != nil {
		t.Fatalf("ValidateAndInsertTransaction: revalidation: %v", err)
	}

	_, err = miningManager.ValidateAndInsertTransaction(spend(44))
	if !errors.Is(err, ruleerrors.ErrDoubleSpendInMempool) {
		t.Fatalf("Expected ErrDoubleSpendInMempool, got %+v", err)
	}

	template, err := miningManager.GetBlockTemplate(externalapi.DomainAddress{0x0f})
	if err != nil {
		t.Fatalf("GetBlockTemplate: %+v", err)
	}
	block := miningManager.SolveBlock(template)
	err = tc.ValidateAndInsertBlock(block, nil)
	if err != nil {
		t.Fatalf("ValidateAndInsertBlock: %+v", err)
	}
	removed := miningManager.HandleNewBlock(block)
	if len(removed) != 1 || miningManager.TransactionCount() != 0 {
		t.Fatalf("Mined transaction was not removed from the mempool")
	}
	if miningManager.HasTransaction(consensushashing.TransactionHash(spend(45))) {
		t.Fatalf("Mined transaction is still reported as pooled")
	}
}
