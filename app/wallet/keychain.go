package wallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"hash"

	"github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

const hardenedIndexStart = 0x80000000

// accountPath is the hardened path, below the master key, of the account
// whose children are the wallet's keys: m/44'/111111'/0'
var accountPath = []uint32{
	hardenedIndexStart + 44,
	hardenedIndexStart + 111111,
	hardenedIndexStart + 0,
}

// ErrInvalidMnemonic is returned when a mnemonic has a bad checksum or
// contains words outside the BIP-39 word list
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// CreateMnemonic returns a new random 24 word mnemonic
func CreateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return bip39.NewMnemonic(entropy)
}

type extendedKey struct {
	privateKey *secp256k1.ECDSAPrivateKey
	chainCode  [32]byte
}

func newMaster(seed []byte) (*extendedKey, error) {
	mac := newHMACWriter([]byte("Bitcoin seed"))
	mac.InfallibleWrite(seed)
	I := mac.Sum(nil)

	var iL, iR [32]byte
	copy(iL[:], I[:32])
	copy(iR[:], I[32:])

	privateKey, err := secp256k1.DeserializeECDSAPrivateKeyFromSlice(iL[:])
	if err != nil {
		return nil, err
	}
	return &extendedKey{privateKey: privateKey, chainCode: iR}, nil
}

// hardenedChild derives the child of extKey at hardened index i.
// Only hardened derivation is supported; the wallet never shares public
// extended keys.
func (extKey *extendedKey) hardenedChild(i uint32) (*extendedKey, error) {
	if i < hardenedIndexStart {
		return nil, errors.Errorf("index %d is not a hardened index", i)
	}

	mac := newHMACWriter(extKey.chainCode[:])
	mac.InfallibleWrite([]byte{0x00})
	mac.InfallibleWrite(extKey.privateKey.Serialize()[:])
	mac.InfallibleWrite(serializeUint32(i))
	I := mac.Sum(nil)

	var iL, iR [32]byte
	copy(iL[:], I[:32])
	copy(iR[:], I[32:])

	childPrivateKey, err := privateKeyAdd(extKey.privateKey, iL)
	if err != nil {
		return nil, err
	}
	return &extendedKey{privateKey: childPrivateKey, chainCode: iR}, nil
}

func (extKey *extendedKey) path(indexes []uint32) (*extendedKey, error) {
	current := extKey
	for _, index := range indexes {
		var err error
		current, err = current.hardenedChild(index)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

func privateKeyAdd(k *secp256k1.ECDSAPrivateKey, tweak [32]byte) (*secp256k1.ECDSAPrivateKey, error) {
	kCopy := *k
	err := kCopy.Add(tweak)
	if err != nil {
		return nil, err
	}
	return &kCopy, nil
}

func serializeUint32(v uint32) []byte {
	serialized := make([]byte, 4)
	binary.BigEndian.PutUint32(serialized, v)
	return serialized
}

type hmacWriter struct {
	hash.Hash
}

func newHMACWriter(key []byte) hmacWriter {
	return hmacWriter{
		Hash: hmac.New(sha512.New, key),
	}
}

func (hw hmacWriter) InfallibleWrite(p []byte) {
	_, err := hw.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "writing to hmac should never fail"))
	}
}

// keychain hands out the wallet's keys in derivation order
type keychain struct {
	account   *extendedKey
	nextIndex uint32
}

func newKeychain(mnemonic string) (*keychain, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.WithStack(ErrInvalidMnemonic)
	}
	master, err := newMaster(bip39.NewSeed(mnemonic, ""))
	if err != nil {
		return nil, err
	}
	account, err := master.path(accountPath)
	if err != nil {
		return nil, err
	}
	return &keychain{account: account}, nil
}

func (kc *keychain) nextKeyPair() (*crypto.KeyPair, error) {
	child, err := kc.account.hardenedChild(hardenedIndexStart + kc.nextIndex)
	if err != nil {
		return nil, err
	}
	kc.nextIndex++
	return crypto.KeyPairFromPrivateKey(child.privateKey.Serialize()[:])
}
