package tx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/goodnatureofminers/chainspend/pkg/safe"
)

// ErrMalformedTransaction reports bytes that are not a canonical legacy transaction.
var ErrMalformedTransaction = errors.New("malformed transaction")

// ParseHex decodes a hex string and parses it with Parse.
func ParseHex(s string) (*Transaction, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w: %w", ErrMalformedTransaction, err)
	}
	return Parse(raw)
}

// Parse decodes a legacy transaction. It is the inverse of Serialize and rejects
// witness-flagged encodings, non-minimal length prefixes and trailing bytes.
func Parse(raw []byte) (*Transaction, error) {
	r := bytes.NewReader(raw)
	t := &Transaction{}

	version, err := readUint32(r)
	if err != nil {
		return nil, malformed("version", err)
	}
	t.Version = int32(version)

	inCount, err := readCompactSize(r)
	if err != nil {
		return nil, malformed("input count", err)
	}
	if inCount == 0 {
		return nil, fmt.Errorf("no inputs or witness marker: %w", ErrMalformedTransaction)
	}
	// smallest input is 41 bytes
	if inCount > uint64(r.Len())/41 {
		return nil, fmt.Errorf("input count %d exceeds remaining bytes: %w", inCount, ErrMalformedTransaction)
	}
	t.TxIn = make([]*TxIn, 0, inCount)
	for i := uint64(0); i < inCount; i++ {
		in, err := readTxIn(r)
		if err != nil {
			return nil, malformed(fmt.Sprintf("input %d", i), err)
		}
		t.TxIn = append(t.TxIn, in)
	}

	outCount, err := readCompactSize(r)
	if err != nil {
		return nil, malformed("output count", err)
	}
	// smallest output is 9 bytes
	if outCount > uint64(r.Len())/9 {
		return nil, fmt.Errorf("output count %d exceeds remaining bytes: %w", outCount, ErrMalformedTransaction)
	}
	t.TxOut = make([]*TxOut, 0, outCount)
	for i := uint64(0); i < outCount; i++ {
		out, err := readTxOut(r)
		if err != nil {
			return nil, malformed(fmt.Sprintf("output %d", i), err)
		}
		t.TxOut = append(t.TxOut, out)
	}

	if t.LockTime, err = readUint32(r); err != nil {
		return nil, malformed("lock time", err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes: %w", r.Len(), ErrMalformedTransaction)
	}
	return t, nil
}

func readTxIn(r *bytes.Reader) (*TxIn, error) {
	in := &TxIn{}
	if _, err := io.ReadFull(r, in.PreviousOutPoint.Hash[:]); err != nil {
		return nil, err
	}
	var err error
	if in.PreviousOutPoint.Index, err = readUint32(r); err != nil {
		return nil, err
	}
	if in.SignatureScript, err = readVarBytes(r); err != nil {
		return nil, err
	}
	if in.Sequence, err = readUint32(r); err != nil {
		return nil, err
	}
	return in, nil
}

func readTxOut(r *bytes.Reader) (*TxOut, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, err
	}
	value := binary.LittleEndian.Uint64(b[:])
	if _, err := safe.Int64(value); err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	script, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	return &TxOut{Value: value, PkScript: script}, nil
}

func readVarBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readCompactSize(r)
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Len()) {
		return nil, fmt.Errorf("length %d exceeds remaining %d bytes", n, r.Len())
	}
	if n == 0 {
		return nil, nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func readCompactSize(r *bytes.Reader) (uint64, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		return 0, err
	}

	var n, least uint64
	switch prefix {
	case 0xfd:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		n, least = uint64(binary.LittleEndian.Uint16(b[:])), 0xfd
	case 0xfe:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		n, least = uint64(binary.LittleEndian.Uint32(b[:])), math.MaxUint16+1
	case 0xff:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		n, least = binary.LittleEndian.Uint64(b[:]), math.MaxUint32+1
	default:
		return uint64(prefix), nil
	}
	if n < least {
		return 0, fmt.Errorf("non-canonical compact size 0x%02x for %d", prefix, n)
	}
	return n, nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func malformed(field string, err error) error {
	return fmt.Errorf("%s: %w: %w", field, ErrMalformedTransaction, err)
}
