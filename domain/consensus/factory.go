package consensus

import (
	"github.com/kaspanet/ledgersim/domain/chainconfig"
	"github.com/kaspanet/ledgersim/domain/consensus/datastructures/utxosnapshotstore"
	"github.com/kaspanet/ledgersim/domain/consensus/ledger"
	"github.com/kaspanet/ledgersim/domain/consensus/processes/blockvalidator"
	"github.com/kaspanet/ledgersim/domain/consensus/processes/transactionvalidator"
	"github.com/kaspanet/ledgersim/domain/consensus/processes/utxotracker"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/crypto"
	"github.com/pkg/errors"
)

// Snapshot store kinds accepted by Factory.NewConsensus
const (
	SnapshotStoreMemory  = "memory"
	SnapshotStoreLevelDB = "leveldb"
)

// Factory instantiates new Consensuses
type Factory interface {
	NewConsensus(params *chainconfig.Params, snapshotStoreKind string,
		cryptoProvider crypto.Provider) (Consensus, error)
}

type factory struct{}

// NewFactory creates a new Consensus factory
func NewFactory() Factory {
	return &factory{}
}

// NewConsensus instantiates a new Consensus
func (f *factory) NewConsensus(params *chainconfig.Params, snapshotStoreKind string,
	cryptoProvider crypto.Provider) (Consensus, error) {

	// Data Structures
	utxoSnapshotStore, err := newUTXOSnapshotStore(snapshotStoreKind)
	if err != nil {
		return nil, err
	}
	blockLedger := ledger.New()

	// Processes
	utxoTracker := utxotracker.New(
		blockLedger,
		utxoSnapshotStore,
		params.UTXOCheckpointInterval)
	transactionValidator := transactionvalidator.New(
		cryptoProvider,
		blockLedger)
	blockValidator := blockvalidator.New(
		params.MiningReward,
		transactionValidator,
		blockLedger,
		utxoTracker)

	return &consensus{
		params: params,

		ledger:               blockLedger,
		utxoSnapshotStore:    utxoSnapshotStore,
		utxoTracker:          utxoTracker,
		transactionValidator: transactionValidator,
		blockValidator:       blockValidator,
	}, nil
}

func newUTXOSnapshotStore(kind string) (utxosnapshotstore.Store, error) {
	switch kind {
	case SnapshotStoreMemory, "":
		return utxosnapshotstore.NewMemoryStore(), nil
	case SnapshotStoreLevelDB:
		return utxosnapshotstore.NewLevelDBStore()
	default:
		return nil, errors.Errorf("unknown UTXO snapshot store %q", kind)
	}
}
