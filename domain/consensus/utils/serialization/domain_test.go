package serialization

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
)

func TestSerializeCoinbaseInput(t *testing.T) {
	var buf bytes.Buffer
	err := SerializeInput(&buf, externalapi.NewCoinbaseInput())
	if err != nil {
		t.Fatalf("SerializeInput: %+v", err)
	}
	expected := make([]byte, 36)
	copy(expected[32:], []byte{0xff, 0xff, 0xff, 0xff})
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Fatalf("TestSerializeCoinbaseInput: got %x, want %x", buf.Bytes(), expected)
	}
}

func TestSerializeInputAppendsSignatureAndKey(t *testing.T) {
	input := &externalapi.DomainTransactionInput{
		PreviousOutpoint: externalapi.DomainOutpoint{TransactionID: externalapi.DomainHash{0x01}, Index: 2},
		Signature:        []byte{0xaa, 0xbb},
		PublicKey:        []byte{0xcc},
	}
	var buf bytes.Buffer
	err := SerializeInput(&buf, input)
	if err != nil {
		t.Fatalf("SerializeInput: %+v", err)
	}
	serialized := buf.Bytes()
	if len(serialized) != 32+4+2+1 {
		t.Fatalf("TestSerializeInputAppendsSignatureAndKey: unexpected length %d", len(serialized))
	}
	if hex.EncodeToString(serialized[32:]) != "00000002aabbcc" {
		t.Fatalf("TestSerializeInputAppendsSignatureAndKey: unexpected tail %x", serialized[32:])
	}
}

func TestSerializeOutput(t *testing.T) {
	output := &externalapi.DomainTransactionOutput{Value: 0x0102, Address: externalapi.DomainAddress{0x09}}
	var buf bytes.Buffer
	err := SerializeOutput(&buf, output)
	if err != nil {
		t.Fatalf("SerializeOutput: %+v", err)
	}
	serialized := buf.Bytes()
	if len(serialized) != 28 {
		t.Fatalf("TestSerializeOutput: unexpected length %d", len(serialized))
	}
	if hex.EncodeToString(serialized[:9]) != "000000000000010209" {
		t.Fatalf("TestSerializeOutput: unexpected prefix %x", serialized[:9])
	}
}

func TestSerializeBlockHeader(t *testing.T) {
	block := externalapi.NewDomainBlock(externalapi.DomainHash{0x01}, externalapi.DomainHash{0x02}, -2, 7, nil)
	var buf bytes.Buffer
	err := SerializeBlockHeader(&buf, block)
	if err != nil {
		t.Fatalf("SerializeBlockHeader: %+v", err)
	}
	serialized := buf.Bytes()
	if len(serialized) != 72 {
		t.Fatalf("TestSerializeBlockHeader: unexpected length %d", len(serialized))
	}
	if serialized[0] != 0x01 || serialized[32] != 0x02 {
		t.Fatalf("TestSerializeBlockHeader: hashes are out of place: %x", serialized)
	}
	if hex.EncodeToString(serialized[64:]) != "fffffffe00000007" {
		t.Fatalf("TestSerializeBlockHeader: unexpected timestamp and nonce %x", serialized[64:])
	}
}

func TestReadElementsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	err := WriteElements(&buf, int32(-1), uint64(50), true, externalapi.DomainHash{0x07})
	if err != nil {
		t.Fatalf("WriteElements: %+v", err)
	}

	var index int32
	var amount uint64
	var flag bool
	var hash externalapi.DomainHash
	err = ReadElements(&buf, &index, &amount, &flag, &hash)
	if err != nil {
		t.Fatalf("ReadElements: %+v", err)
	}
	if index != -1 || amount != 50 || !flag || hash != (externalapi.DomainHash{0x07}) {
		t.Fatalf("TestReadElementsRoundTrip: got %d %d %t %s", index, amount, flag, hash)
	}

	err = ReadElement(&buf, &amount)
	if !IsMalformedError(err) {
		t.Fatalf("TestReadElementsRoundTrip: expected a malformed error on an empty reader, got %v", err)
	}
}
