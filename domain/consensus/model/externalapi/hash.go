package externalapi

import (
	"bytes"
	"encoding/hex"

	"github.com/pkg/errors"
)

// DomainHashSize of array used to store hashes.
const DomainHashSize = 32

// DomainHash is the identity hash of a block or a transaction. The zero
// value marks the parent of a genesis block and the source of a coinbase
// input.
type DomainHash [DomainHashSize]byte

// ZeroHash is the all-zero hash.
var ZeroHash DomainHash

// NewDomainHashFromByteSlice copies hashBytes into a new DomainHash.
func NewDomainHashFromByteSlice(hashBytes []byte) (DomainHash, error) {
	var hash DomainHash
	if len(hashBytes) != DomainHashSize {
		return hash, errors.Errorf("invalid hash size. Want: %d, got: %d",
			DomainHashSize, len(hashBytes))
	}
	copy(hash[:], hashBytes)
	return hash, nil
}

// NewDomainHashFromString parses a hex encoded hash.
func NewDomainHashFromString(hashString string) (DomainHash, error) {
	if len(hashString) != DomainHashSize*2 {
		return DomainHash{}, errors.Errorf("hash string length is %d, while it should be be %d",
			len(hashString), DomainHashSize*2)
	}
	hashBytes, err := hex.DecodeString(hashString)
	if err != nil {
		return DomainHash{}, errors.WithStack(err)
	}
	return NewDomainHashFromByteSlice(hashBytes)
}

// String returns the Hash as the hexadecimal string of the hash.
func (hash DomainHash) String() string {
	return hex.EncodeToString(hash[:])
}

// IsZero returns whether hash is the all-zero hash.
func (hash DomainHash) IsZero() bool {
	return hash == ZeroHash
}

// Less returns true iff hash is lexicographically smaller than other.
func (hash DomainHash) Less(other DomainHash) bool {
	return bytes.Compare(hash[:], other[:]) < 0
}
