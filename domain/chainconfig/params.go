package chainconfig

// Params defines a network by its consensus and relay parameters.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// MiningReward is the amount a block's coinbase may create on top of
	// the fees of the block's transactions.
	MiningReward uint64

	// ConfirmationDepth is the number of blocks that must be built on top
	// of a block on the best chain before it is considered confirmed.
	ConfirmationDepth uint64

	// UTXOCheckpointInterval is the height interval at which full UTXO set
	// snapshots are stored. A snapshot is stored for every block whose
	// height is a multiple of the interval.
	UTXOCheckpointInterval uint64

	// MiningDifficulty is the number of leading zero hex digits a miner
	// aims for in a block hash. It is not a validation rule.
	MiningDifficulty int

	// SeenCacheSize bounds the number of relayed message hashes each node
	// remembers.
	SeenCacheSize int

	// RouteCapacity bounds each node's inbound queue in asynchronous relay.
	RouteCapacity int
}

// SimnetParams defines the network parameters for the simulation network.
var SimnetParams = Params{
	Name:                   "simnet",
	MiningReward:           50,
	ConfirmationDepth:      2,
	UTXOCheckpointInterval: 5,
	MiningDifficulty:       4,
	SeenCacheSize:          1000,
	RouteCapacity:          200,
}

// TestnetParams defines the network parameters for a larger test network
// with deeper confirmations and sparser snapshots.
var TestnetParams = Params{
	Name:                   "testnet",
	MiningReward:           50,
	ConfirmationDepth:      6,
	UTXOCheckpointInterval: 100,
	MiningDifficulty:       4,
	SeenCacheSize:          10000,
	RouteCapacity:          1000,
}
