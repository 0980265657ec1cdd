// Package sighash computes the legacy (pre-segwit) signature hash.
package sighash

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/chainspend/internal/tx"
)

var (
	// ErrUnsupportedHashType is returned for any type other than SIGHASH_ALL.
	ErrUnsupportedHashType = errors.New("unsupported sighash type")
	// ErrInputIndex is returned when the input index is out of range.
	ErrInputIndex = errors.New("input index out of range")
)

// Legacy returns the SIGHASH_ALL digest for input idx. scriptCode is the locking
// script that guards the coin being spent by that input.
//
// The transaction is copied, every unlocking script is cleared and the one at idx
// is replaced by scriptCode. The copy is serialized, the hash type is appended as
// 4 little-endian bytes and the result is double SHA-256 hashed.
func Legacy(t *tx.Transaction, idx int, scriptCode []byte, hashType txscript.SigHashType) (chainhash.Hash, error) {
	if hashType != txscript.SigHashAll {
		return chainhash.Hash{}, fmt.Errorf("type 0x%02x: %w", uint32(hashType), ErrUnsupportedHashType)
	}
	if idx < 0 || idx >= len(t.TxIn) {
		return chainhash.Hash{}, fmt.Errorf("index %d of %d inputs: %w", idx, len(t.TxIn), ErrInputIndex)
	}

	stripped := t.Copy()
	for i, in := range stripped.TxIn {
		if i == idx {
			in.SignatureScript = append([]byte(nil), scriptCode...)
			continue
		}
		in.SignatureScript = nil
	}

	preimage, err := stripped.Serialize()
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("serialize sighash preimage: %w", err)
	}
	preimage = binary.LittleEndian.AppendUint32(preimage, uint32(hashType))

	return chainhash.DoubleHashH(preimage), nil
}
