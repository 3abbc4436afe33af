package externalapi

import (
	"bytes"
	"encoding/hex"

	"github.com/pkg/errors"
)

// DomainAddressSize is the size of a hash160 public key digest.
const DomainAddressSize = 20

// DomainAddress identifies the recipient of an output: the hash160 of the
// recipient's serialized public key.
type DomainAddress [DomainAddressSize]byte

// NewDomainAddressFromByteSlice copies addressBytes into a new DomainAddress.
func NewDomainAddressFromByteSlice(addressBytes []byte) (DomainAddress, error) {
	var address DomainAddress
	if len(addressBytes) != DomainAddressSize {
		return address, errors.Errorf("invalid address size. Want: %d, got: %d",
			DomainAddressSize, len(addressBytes))
	}
	copy(address[:], addressBytes)
	return address, nil
}

// String returns the hex form of the address. util.EncodeAddress gives
// the checksummed text form.
func (address DomainAddress) String() string {
	return hex.EncodeToString(address[:])
}

// Less returns true iff address is lexicographically smaller than other.
func (address DomainAddress) Less(other DomainAddress) bool {
	return bytes.Compare(address[:], other[:]) < 0
}
