package utxo

import (
	"github.com/kaspanet/go-muhash"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
)

// Commitment returns the MuHash of the serialized entries of collection.
// MuHash is order independent, so two collections have the same
// commitment iff they hold the same entries.
func Commitment(collection Collection) (externalapi.DomainHash, error) {
	multiset := muhash.NewMuHash()
	for outpoint, entry := range collection {
		serialized, err := SerializeUTXO(entry, outpoint)
		if err != nil {
			return externalapi.DomainHash{}, err
		}
		multiset.Add(serialized)
	}
	return externalapi.DomainHash(multiset.Finalize()), nil
}
