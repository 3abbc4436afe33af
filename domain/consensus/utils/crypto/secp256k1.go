package crypto

import (
	"github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

type secp256k1Provider struct {
	commonProvider
}

// NewSecp256k1Provider returns a Provider signing with ECDSA over secp256k1.
// Public keys are 33 byte compressed points, signatures are 64 byte compact
// ECDSA signatures.
func NewSecp256k1Provider() Provider {
	return secp256k1Provider{}
}

func (secp256k1Provider) Hash160(data []byte) externalapi.DomainAddress {
	return hashes.Hash160(data)
}

func (secp256k1Provider) Sign(privateKey []byte, message externalapi.DomainHash) ([]byte, error) {
	key, err := secp256k1.DeserializeECDSAPrivateKeyFromSlice(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "malformed private key")
	}
	secpHash := secp256k1.Hash(message)
	signature, err := key.ECDSASign(&secpHash)
	if err != nil {
		return nil, errors.Wrap(err, "cannot sign message")
	}
	return signature.Serialize()[:], nil
}

func (secp256k1Provider) Verify(publicKey []byte, message externalapi.DomainHash, signature []byte) bool {
	key, err := secp256k1.DeserializeECDSAPubKey(publicKey)
	if err != nil {
		return false
	}
	parsedSignature, err := secp256k1.DeserializeECDSASignatureFromSlice(signature)
	if err != nil {
		return false
	}
	secpHash := secp256k1.Hash(message)
	return key.ECDSAVerify(&secpHash, parsedSignature)
}

func (secp256k1Provider) GenerateKeyPair() (*KeyPair, error) {
	privateKey, err := secp256k1.GenerateECDSAPrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate a private key")
	}
	return keyPairFromPrivateKey(privateKey)
}

// KeyPairFromPrivateKey rebuilds the key pair of a serialized private key.
func KeyPairFromPrivateKey(privateKey []byte) (*KeyPair, error) {
	key, err := secp256k1.DeserializeECDSAPrivateKeyFromSlice(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "malformed private key")
	}
	return keyPairFromPrivateKey(key)
}

func keyPairFromPrivateKey(privateKey *secp256k1.ECDSAPrivateKey) (*KeyPair, error) {
	publicKey, err := privateKey.ECDSAPublicKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive the public key")
	}
	serializedPublicKey, err := publicKey.Serialize()
	if err != nil {
		return nil, errors.Wrap(err, "error serializing public key")
	}
	return &KeyPair{
		PrivateKey: privateKey.Serialize()[:],
		PublicKey:  serializedPublicKey[:],
	}, nil
}
