package utxosnapshotstore

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/utxo"
)

type memoryStore struct {
	snapshots map[externalapi.DomainHash]utxo.Collection
}

// NewMemoryStore returns a Store keeping snapshots in a map.
func NewMemoryStore() Store {
	return &memoryStore{snapshots: make(map[externalapi.DomainHash]utxo.Collection)}
}

func (ms *memoryStore) Put(blockHash externalapi.DomainHash, collection utxo.Collection) error {
	ms.snapshots[blockHash] = collection.Clone()
	return nil
}

func (ms *memoryStore) Get(blockHash externalapi.DomainHash) (utxo.Collection, bool, error) {
	collection, ok := ms.snapshots[blockHash]
	if !ok {
		return nil, false, nil
	}
	return collection.Clone(), true, nil
}

func (ms *memoryStore) Has(blockHash externalapi.DomainHash) (bool, error) {
	_, ok := ms.snapshots[blockHash]
	return ok, nil
}

func (ms *memoryStore) Count() (int, error) {
	return len(ms.snapshots), nil
}

func (ms *memoryStore) Close() error {
	ms.snapshots = make(map[externalapi.DomainHash]utxo.Collection)
	return nil
}
