package util

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// AddressVersion is the version byte prefixed to an address before it is
// base58check encoded.
const AddressVersion = 0x00

// ErrMalformedAddress describes an error where an address string could not
// be decoded: a bad checksum, an unknown version, or a wrong length.
var ErrMalformedAddress = errors.New("malformed address")

// EncodeAddress returns the base58check text form of address.
func EncodeAddress(address externalapi.DomainAddress) string {
	return base58.CheckEncode(address[:], AddressVersion)
}

// DecodeAddress parses the text form produced by EncodeAddress.
func DecodeAddress(encoded string) (externalapi.DomainAddress, error) {
	decoded, version, err := base58.CheckDecode(encoded)
	if err != nil {
		return externalapi.DomainAddress{}, errors.Wrapf(ErrMalformedAddress, "%s: %s", encoded, err)
	}
	if version != AddressVersion {
		return externalapi.DomainAddress{}, errors.Wrapf(ErrMalformedAddress,
			"%s: unknown address version %d", encoded, version)
	}
	address, err := externalapi.NewDomainAddressFromByteSlice(decoded)
	if err != nil {
		return externalapi.DomainAddress{}, errors.Wrapf(ErrMalformedAddress, "%s: %s", encoded, err)
	}
	return address, nil
}
