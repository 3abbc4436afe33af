package utxotracker

import (
	"github.com/kaspanet/ledgersim/domain/consensus/datastructures/utxosnapshotstore"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/utxo"
	"github.com/kaspanet/ledgersim/infrastructure/logger"
)

// BlockIndex is the part of the ledger the tracker walks.
type BlockIndex interface {
	Block(hash externalapi.DomainHash) (*externalapi.DomainBlock, error)
	Height(hash externalapi.DomainHash) (uint64, error)
	Parent(hash externalapi.DomainHash) (parentHash externalapi.DomainHash, isRoot bool, err error)
}

// Tracker computes the UTXO set as of any admitted block. It stores a
// snapshot for every block whose height is a multiple of the checkpoint
// interval it walks through, so that later queries only replay the blocks
// above the nearest snapshot.
type Tracker struct {
	blockIndex         BlockIndex
	store              utxosnapshotstore.Store
	checkpointInterval uint64
}

// New instantiates a new Tracker. A zero checkpointInterval disables
// snapshots.
func New(blockIndex BlockIndex, store utxosnapshotstore.Store, checkpointInterval uint64) *Tracker {
	return &Tracker{
		blockIndex:         blockIndex,
		store:              store,
		checkpointInterval: checkpointInterval,
	}
}

// UTXOAsOf returns the outputs created and not spent along the chain
// ending at blockHash, blockHash's own transactions included. The returned
// collection belongs to the caller.
func (t *Tracker) UTXOAsOf(blockHash externalapi.DomainHash) (utxo.Collection, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "UTXOAsOf")
	defer onEnd()

	return t.utxoAsOf(blockHash, true)
}

// UTXOAsOfFromScratch is UTXOAsOf replaying every block from the root,
// without reading or writing snapshots.
func (t *Tracker) UTXOAsOfFromScratch(blockHash externalapi.DomainHash) (utxo.Collection, error) {
	return t.utxoAsOf(blockHash, false)
}

// Commitment returns the MuHash commitment of the UTXO set as of blockHash.
func (t *Tracker) Commitment(blockHash externalapi.DomainHash) (externalapi.DomainHash, error) {
	collection, err := t.UTXOAsOf(blockHash)
	if err != nil {
		return externalapi.DomainHash{}, err
	}
	return utxo.Commitment(collection)
}

func (t *Tracker) utxoAsOf(blockHash externalapi.DomainHash, useSnapshots bool) (utxo.Collection, error) {
	// Collect the blocks above the nearest snapshot, newest first.
	var pending []externalapi.DomainHash
	var collection utxo.Collection
	current := blockHash
	for {
		if useSnapshots {
			snapshot, found, err := t.store.Get(current)
			if err != nil {
				return nil, err
			}
			if found {
				collection = snapshot
				break
			}
		}

		pending = append(pending, current)
		parentHash, isRoot, err := t.blockIndex.Parent(current)
		if err != nil {
			return nil, err
		}
		if isRoot {
			collection = utxo.NewCollection()
			break
		}
		current = parentHash
	}
	log.Tracef("Replaying %d blocks to compute the UTXO set of %s", len(pending), blockHash)

	for i := len(pending) - 1; i >= 0; i-- {
		hash := pending[i]
		block, err := t.blockIndex.Block(hash)
		if err != nil {
			return nil, err
		}
		height, err := t.blockIndex.Height(hash)
		if err != nil {
			return nil, err
		}
		ApplyBlock(collection, block, height)

		if useSnapshots && t.isCheckpoint(height) {
			err := t.store.Put(hash, collection)
			if err != nil {
				return nil, err
			}
			log.Debugf("Stored a UTXO snapshot of %d entries for block %s at height %d",
				collection.Len(), hash, height)
		}
	}
	return collection, nil
}

func (t *Tracker) isCheckpoint(height uint64) bool {
	return t.checkpointInterval != 0 && height%t.checkpointInterval == 0
}

// ApplyBlock applies the transactions of block, found at height, to
// collection in order: every non-coinbase input removes the output it
// spends, then every output of the transaction is added.
func ApplyBlock(collection utxo.Collection, block *externalapi.DomainBlock, height uint64) {
	for _, tx := range block.Transactions() {
		ApplyTransaction(collection, tx, height)
	}
}

// ApplyTransaction applies a single transaction to collection. See ApplyBlock.
func ApplyTransaction(collection utxo.Collection, tx *externalapi.DomainTransaction, height uint64) {
	isCoinbase := tx.IsCoinbase()
	for _, input := range tx.Inputs() {
		if input.PreviousOutpoint.IsCoinbase() {
			continue
		}
		if !collection.Remove(input.PreviousOutpoint) {
			log.Debugf("Input %s of transaction %s spends an output that is not in the set",
				input.PreviousOutpoint, consensushashing.TransactionHash(tx))
		}
	}

	txHash := consensushashing.TransactionHash(tx)
	for i, output := range tx.Outputs() {
		outpoint := externalapi.DomainOutpoint{TransactionID: txHash, Index: int32(i)}
		collection.Add(outpoint, &externalapi.UTXOEntry{
			Amount:      output.Value,
			Address:     output.Address,
			IsCoinbase:  isCoinbase,
			BlockHeight: height,
		})
	}
}
