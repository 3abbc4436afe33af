package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// KeyPair holds a serialized private key and its serialized public key.
type KeyPair struct {
	PrivateKey []byte
	PublicKey  []byte
}

// Provider is the set of cryptographic primitives the ledger relies on.
// Implementations must be stateless and safe for concurrent use.
type Provider interface {
	// Hash returns a single 256-bit digest of data.
	Hash(data []byte) externalapi.DomainHash
	// Hash160 derives the address of a serialized public key.
	Hash160(data []byte) externalapi.DomainAddress
	Sign(privateKey []byte, message externalapi.DomainHash) ([]byte, error)
	Verify(publicKey []byte, message externalapi.DomainHash, signature []byte) bool
	EncodeHex(data []byte) string
	DecodeHex(hexString string) ([]byte, error)
	GenerateKeyPair() (*KeyPair, error)
}

// commonProvider implements the digest and hex parts of Provider.
type commonProvider struct{}

func (commonProvider) Hash(data []byte) externalapi.DomainHash {
	return sha256.Sum256(data)
}

func (commonProvider) EncodeHex(data []byte) string {
	return hex.EncodeToString(data)
}

func (commonProvider) DecodeHex(hexString string) ([]byte, error) {
	data, err := hex.DecodeString(hexString)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}
