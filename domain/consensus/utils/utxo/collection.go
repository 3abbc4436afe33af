package utxo

import (
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Collection is a set of unspent outputs keyed by outpoint. Entries are
// shared between clones and must be treated as read-only.
type Collection map[externalapi.DomainOutpoint]*externalapi.UTXOEntry

// NewCollection returns an empty collection.
func NewCollection() Collection {
	return make(Collection)
}

// Add adds a new UTXO entry to this collection
func (c Collection) Add(outpoint externalapi.DomainOutpoint, entry *externalapi.UTXOEntry) {
	c[outpoint] = entry
}

// Remove removes a UTXO entry from this collection. It returns false if
// the outpoint was not in the collection.
func (c Collection) Remove(outpoint externalapi.DomainOutpoint) bool {
	_, ok := c[outpoint]
	delete(c, outpoint)
	return ok
}

// Get returns the UTXOEntry represented by provided outpoint,
// and a boolean value indicating if said UTXOEntry is in the set or not
func (c Collection) Get(outpoint externalapi.DomainOutpoint) (*externalapi.UTXOEntry, bool) {
	entry, ok := c[outpoint]
	return entry, ok
}

// Contains returns a boolean value indicating whether a UTXO entry is in the set
func (c Collection) Contains(outpoint externalapi.DomainOutpoint) bool {
	_, ok := c[outpoint]
	return ok
}

// Len returns the amount of entries in the collection
func (c Collection) Len() int {
	return len(c)
}

// Clone returns a copy of the collection that can be modified without
// affecting c.
func (c Collection) Clone() Collection {
	return maps.Clone(c)
}

// Equal returns whether both collections hold the same outpoints with equal entries.
func (c Collection) Equal(other Collection) bool {
	return maps.EqualFunc(c, other, func(entry, otherEntry *externalapi.UTXOEntry) bool {
		return entry.Equal(otherEntry)
	})
}

// TotalAmount returns the sum of all amounts in the collection.
func (c Collection) TotalAmount() uint64 {
	total := uint64(0)
	for _, entry := range c {
		total += entry.Amount
	}
	return total
}

// FilterByAddress returns the sub-collection paying address.
func (c Collection) FilterByAddress(address externalapi.DomainAddress) Collection {
	filtered := NewCollection()
	for outpoint, entry := range c {
		if entry.Address == address {
			filtered.Add(outpoint, entry)
		}
	}
	return filtered
}

// SortedOutpoints returns the outpoints of the collection ordered by
// transaction ID and then by index.
func (c Collection) SortedOutpoints() []externalapi.DomainOutpoint {
	outpoints := maps.Keys(c)
	slices.SortFunc(outpoints, func(a, b externalapi.DomainOutpoint) bool {
		return a.Less(b)
	})
	return outpoints
}
