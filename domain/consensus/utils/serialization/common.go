package serialization

import (
	"encoding/binary"
	"io"

	"github.com/kaspanet/ledgersim/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// errNoEncodingForType signifies that there's no encoding for the given type.
var errNoEncodingForType = errors.New("there's no encoding for this type")

var errMalformed = errors.New("errMalformed")

// WriteElement writes the big endian representation of element to w.
// Signed integers are written in two's complement.
func WriteElement(w io.Writer, element interface{}) error {
	var buf [8]byte
	switch e := element.(type) {
	case int32:
		binary.BigEndian.PutUint32(buf[:4], uint32(e))
		return write(w, buf[:4])

	case uint32:
		binary.BigEndian.PutUint32(buf[:4], e)
		return write(w, buf[:4])

	case int64:
		binary.BigEndian.PutUint64(buf[:], uint64(e))
		return write(w, buf[:])

	case uint64:
		binary.BigEndian.PutUint64(buf[:], e)
		return write(w, buf[:])

	case bool:
		if e {
			buf[0] = 0x01
		}
		return write(w, buf[:1])

	case []byte:
		return write(w, e)

	case externalapi.DomainHash:
		return write(w, e[:])

	case *externalapi.DomainHash:
		return write(w, e[:])

	case externalapi.DomainAddress:
		return write(w, e[:])
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write type %T", element)
}

// WriteElements writes multiple items to w. It is equivalent to multiple
// calls to WriteElement.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := WriteElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

func write(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return errors.WithStack(err)
}

// ReadElement reads the big endian representation of the type pointed to
// by element from r.
func ReadElement(r io.Reader, element interface{}) error {
	var buf [8]byte
	switch e := element.(type) {
	case *int32:
		if err := readFull(r, buf[:4]); err != nil {
			return err
		}
		*e = int32(binary.BigEndian.Uint32(buf[:4]))
		return nil

	case *uint32:
		if err := readFull(r, buf[:4]); err != nil {
			return err
		}
		*e = binary.BigEndian.Uint32(buf[:4])
		return nil

	case *int64:
		if err := readFull(r, buf[:]); err != nil {
			return err
		}
		*e = int64(binary.BigEndian.Uint64(buf[:]))
		return nil

	case *uint64:
		if err := readFull(r, buf[:]); err != nil {
			return err
		}
		*e = binary.BigEndian.Uint64(buf[:])
		return nil

	case *bool:
		if err := readFull(r, buf[:1]); err != nil {
			return err
		}
		switch buf[0] {
		case 0x00:
			*e = false
		case 0x01:
			*e = true
		default:
			return errors.Wrapf(errMalformed, "in order to keep serialization canonical, true has to"+
				" always be 0x01")
		}
		return nil

	case *externalapi.DomainHash:
		return readFull(r, e[:])

	case *externalapi.DomainAddress:
		return readFull(r, e[:])
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to read type %T", element)
}

// ReadElements reads multiple items from r. It is equivalent to multiple
// calls to ReadElement.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := ReadElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	return errors.WithStack(err)
}

// IsMalformedError returns whether the error indicates a malformed data source
func IsMalformedError(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) || errors.Is(err, errMalformed)
}
