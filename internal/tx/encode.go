package tx

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/goodnatureofminers/chainspend/pkg/safe"
)

// ErrEncoding reports a field value that does not fit its encoded width.
var ErrEncoding = errors.New("encoding error")

// maxPayloadSize bounds any length prefix, matching the p2p message payload limit.
const maxPayloadSize = 32 * 1024 * 1024

// Serialize returns the canonical legacy encoding: version, inputs, outputs, lock
// time. No witness marker or flag is written.
func (t *Transaction) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(t.serializeSizeHint())

	putUint32(&buf, uint32(t.Version))

	if err := writeCompactSize(&buf, uint64(len(t.TxIn))); err != nil {
		return nil, fmt.Errorf("input count: %w", err)
	}
	for i, in := range t.TxIn {
		if err := writeTxIn(&buf, in); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}

	if err := writeCompactSize(&buf, uint64(len(t.TxOut))); err != nil {
		return nil, fmt.Errorf("output count: %w", err)
	}
	for i, out := range t.TxOut {
		if err := writeTxOut(&buf, out); err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
	}

	putUint32(&buf, t.LockTime)
	return buf.Bytes(), nil
}

// ToHex returns the lowercase hex encoding of Serialize.
func (t *Transaction) ToHex() (string, error) {
	raw, err := t.Serialize()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func writeTxIn(buf *bytes.Buffer, in *TxIn) error {
	buf.Write(in.PreviousOutPoint.Hash[:])
	putUint32(buf, in.PreviousOutPoint.Index)
	if err := writeVarBytes(buf, in.SignatureScript); err != nil {
		return fmt.Errorf("unlocking script: %w", err)
	}
	putUint32(buf, in.Sequence)
	return nil
}

func writeTxOut(buf *bytes.Buffer, out *TxOut) error {
	// amounts are signed 64-bit on the wire
	value, err := safe.Int64(out.Value)
	if err != nil {
		return fmt.Errorf("output amount: %w: %w", ErrEncoding, err)
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(value))
	buf.Write(b[:])
	if err := writeVarBytes(buf, out.PkScript); err != nil {
		return fmt.Errorf("locking script: %w", err)
	}
	return nil
}

func writeVarBytes(buf *bytes.Buffer, b []byte) error {
	if err := writeCompactSize(buf, uint64(len(b))); err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// writeCompactSize writes n using the shortest of the 1, 3, 5 or 9 byte forms.
func writeCompactSize(buf *bytes.Buffer, n uint64) error {
	if n > maxPayloadSize {
		return fmt.Errorf("length %d exceeds %d: %w", n, maxPayloadSize, ErrEncoding)
	}
	switch {
	case n < 0xfd:
		buf.WriteByte(byte(n))
	case n <= math.MaxUint16:
		var b [3]byte
		b[0] = 0xfd
		binary.LittleEndian.PutUint16(b[1:], uint16(n))
		buf.Write(b[:])
	case n <= math.MaxUint32:
		var b [5]byte
		b[0] = 0xfe
		binary.LittleEndian.PutUint32(b[1:], uint32(n))
		buf.Write(b[:])
	default:
		var b [9]byte
		b[0] = 0xff
		binary.LittleEndian.PutUint64(b[1:], n)
		buf.Write(b[:])
	}
	return nil
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func (t *Transaction) serializeSizeHint() int {
	n := 4 + 9 + 9 + 4
	for _, in := range t.TxIn {
		n += 32 + 4 + 9 + len(in.SignatureScript) + 4
	}
	for _, out := range t.TxOut {
		n += 8 + 9 + len(out.PkScript)
	}
	return n
}
