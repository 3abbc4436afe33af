package hashes

import (
	"crypto/sha256"
	"hash"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// HashWriter is used to incrementally hash data without concatenating all of the data to a single buffer
// it exposes an io.Writer api and a Finalize function to get the resulting hash.
// Finalize applies SHA-256 a second time over the SHA-256 of everything written.
type HashWriter struct {
	hash.Hash
}

// NewDoubleSHA256Writer returns a new HashWriter whose result is
// SHA-256(SHA-256(data)).
func NewDoubleSHA256Writer() HashWriter {
	return HashWriter{sha256.New()}
}

// InfallibleWrite is just like write but doesn't return anything
func (h HashWriter) InfallibleWrite(p []byte) {
	// This write can never return an error, this is part of the hash.Hash interface contract.
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors."))
	}
}

// Finalize returns the resulting hash
func (h HashWriter) Finalize() externalapi.DomainHash {
	var first externalapi.DomainHash
	copy(first[:], h.Sum(first[:0]))
	return sha256.Sum256(first[:])
}

// DoubleSHA256 returns SHA-256(SHA-256(data)).
func DoubleSHA256(data []byte) externalapi.DomainHash {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}
