package utxosnapshotstore

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/utxo"
)

// Store keeps full UTXO set snapshots keyed by the hash of the block they
// were taken at. Implementations hand out and keep their own copies: a
// collection passed to Put or returned by Get may be modified freely.
type Store interface {
	Put(blockHash externalapi.DomainHash, collection utxo.Collection) error
	Get(blockHash externalapi.DomainHash) (collection utxo.Collection, found bool, err error)
	Has(blockHash externalapi.DomainHash) (bool, error)
	Count() (int, error)
	Close() error
}
