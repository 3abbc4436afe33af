package externalapi

// UTXOEntry is an unspent output together with where it was created.
type UTXOEntry struct {
	Amount      uint64
	Address     DomainAddress
	IsCoinbase  bool
	BlockHeight uint64
}

// Equal returns whether entry equals to other
func (entry *UTXOEntry) Equal(other *UTXOEntry) bool {
	if entry == nil || other == nil {
		return entry == other
	}
	return *entry == *other
}
