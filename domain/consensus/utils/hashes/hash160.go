package hashes

import (
	"crypto/sha256"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"golang.org/x/crypto/ripemd160"
)

// Hash160 calculates RIPEMD-160(SHA-256(data)), the digest an address is
// derived from.
func Hash160(data []byte) externalapi.DomainAddress {
	sha := sha256.Sum256(data)
	hasher := ripemd160.New()
	HashWriter{hasher}.InfallibleWrite(sha[:])

	var address externalapi.DomainAddress
	copy(address[:], hasher.Sum(nil))
	return address
}
