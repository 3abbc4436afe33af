package utxosnapshotstore

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/utxo"
	"github.com/kaspanet/ledgersim/infrastructure/db/ldb"
	"github.com/pkg/errors"
)

var snapshotBucket = []byte("utxo-snapshots/")

type levelDBStore struct {
	db *ldb.LevelDB
}

// NewLevelDBStore returns a Store serializing snapshots into an in-memory
// LevelDB instance.
func NewLevelDBStore() (Store, error) {
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		return nil, err
	}
	return &levelDBStore{db: db}, nil
}

func (ls *levelDBStore) hashAsKey(blockHash externalapi.DomainHash) []byte {
	key := make([]byte, 0, len(snapshotBucket)+externalapi.DomainHashSize)
	key = append(key, snapshotBucket...)
	return append(key, blockHash[:]...)
}

func (ls *levelDBStore) Put(blockHash externalapi.DomainHash, collection utxo.Collection) error {
	collectionBytes, err := utxo.SerializeCollection(collection)
	if err != nil {
		return err
	}
	return ls.db.Put(ls.hashAsKey(blockHash), collectionBytes)
}

func (ls *levelDBStore) Get(blockHash externalapi.DomainHash) (utxo.Collection, bool, error) {
	collectionBytes, err := ls.db.Get(ls.hashAsKey(blockHash))
	if err != nil {
		return nil, false, err
	}
	if collectionBytes == nil {
		return nil, false, nil
	}
	collection, err := utxo.DeserializeCollection(collectionBytes)
	if err != nil {
		return nil, false, errors.Wrapf(err, "corrupted UTXO snapshot of block %s", blockHash)
	}
	return collection, true, nil
}

func (ls *levelDBStore) Has(blockHash externalapi.DomainHash) (bool, error) {
	return ls.db.Has(ls.hashAsKey(blockHash))
}

func (ls *levelDBStore) Count() (int, error) {
	return ls.db.CountKeys(snapshotBucket)
}

func (ls *levelDBStore) Close() error {
	return ls.db.Close()
}
