package utxo

import (
	"bytes"
	"io"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/kaspanet/ledgersim/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// SerializeUTXO returns the byte-slice representation for given UTXOEntry-outpoint pair
func SerializeUTXO(entry *externalapi.UTXOEntry, outpoint externalapi.DomainOutpoint) ([]byte, error) {
	w := &bytes.Buffer{}
	err := serializeUTXO(w, entry, outpoint)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DeserializeUTXO deserializes the given byte slice to UTXOEntry-outpoint pair
func DeserializeUTXO(utxoBytes []byte) (*externalapi.UTXOEntry, externalapi.DomainOutpoint, error) {
	return deserializeUTXO(bytes.NewReader(utxoBytes))
}

func serializeUTXO(w io.Writer, entry *externalapi.UTXOEntry, outpoint externalapi.DomainOutpoint) error {
	err := serialization.WriteElements(w, outpoint.TransactionID, outpoint.Index)
	if err != nil {
		return err
	}
	return serialization.WriteElements(w, entry.Amount, entry.Address, entry.IsCoinbase, entry.BlockHeight)
}

func deserializeUTXO(r io.Reader) (*externalapi.UTXOEntry, externalapi.DomainOutpoint, error) {
	var outpoint externalapi.DomainOutpoint
	err := serialization.ReadElements(r, &outpoint.TransactionID, &outpoint.Index)
	if err != nil {
		return nil, outpoint, err
	}

	entry := &externalapi.UTXOEntry{}
	err = serialization.ReadElements(r, &entry.Amount, &entry.Address, &entry.IsCoinbase, &entry.BlockHeight)
	if err != nil {
		return nil, outpoint, err
	}
	return entry, outpoint, nil
}

// SerializeCollection serializes a whole collection as an entry count
// followed by the entries in outpoint order, so equal collections serialize
// to equal bytes.
func SerializeCollection(collection Collection) ([]byte, error) {
	w := &bytes.Buffer{}
	err := serialization.WriteElement(w, uint64(collection.Len()))
	if err != nil {
		return nil, err
	}
	for _, outpoint := range collection.SortedOutpoints() {
		err := serializeUTXO(w, collection[outpoint], outpoint)
		if err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// DeserializeCollection is the inverse of SerializeCollection.
func DeserializeCollection(collectionBytes []byte) (Collection, error) {
	r := bytes.NewReader(collectionBytes)
	var count uint64
	err := serialization.ReadElement(r, &count)
	if err != nil {
		return nil, err
	}

	collection := NewCollection()
	for i := uint64(0); i < count; i++ {
		entry, outpoint, err := deserializeUTXO(r)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to deserialize UTXO %d of %d", i, count)
		}
		collection.Add(outpoint, entry)
	}
	if r.Len() != 0 {
		return nil, errors.Errorf("%d trailing bytes after a serialized UTXO collection", r.Len())
	}
	return collection, nil
}
