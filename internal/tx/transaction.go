// Package tx implements the legacy (non-witness) Bitcoin transaction model and its
// canonical byte encoding.
package tx

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// Version is the transaction version emitted by New.
	Version int32 = 2
	// MaxSequence disables relative lock-time semantics for an input.
	MaxSequence uint32 = 0xffffffff
)

// OutPoint identifies a spendable output of a prior transaction.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// String returns the outpoint as txid:index with the txid in display order.
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash, o.Index)
}

// TxIn references an outpoint and carries the unlocking script that spends it.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// TxOut locks Value satoshis to PkScript.
type TxOut struct {
	Value    uint64
	PkScript []byte
}

// Transaction is a legacy transaction. Field order mirrors the wire encoding.
type Transaction struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// New returns a version 2 transaction with lock time 0 spending prev into out.
// The input's unlocking script is empty until signed.
func New(prev OutPoint, out TxOut) *Transaction {
	return &Transaction{
		Version: Version,
		TxIn: []*TxIn{{
			PreviousOutPoint: prev,
			Sequence:         MaxSequence,
		}},
		TxOut: []*TxOut{{
			Value:    out.Value,
			PkScript: cloneBytes(out.PkScript),
		}},
		LockTime: 0,
	}
}

// Copy returns a deep copy of the transaction.
func (t *Transaction) Copy() *Transaction {
	c := &Transaction{
		Version:  t.Version,
		TxIn:     make([]*TxIn, 0, len(t.TxIn)),
		TxOut:    make([]*TxOut, 0, len(t.TxOut)),
		LockTime: t.LockTime,
	}
	for _, in := range t.TxIn {
		c.TxIn = append(c.TxIn, &TxIn{
			PreviousOutPoint: in.PreviousOutPoint,
			SignatureScript:  cloneBytes(in.SignatureScript),
			Sequence:         in.Sequence,
		})
	}
	for _, out := range t.TxOut {
		c.TxOut = append(c.TxOut, &TxOut{
			Value:    out.Value,
			PkScript: cloneBytes(out.PkScript),
		})
	}
	return c
}

// TxID returns the double SHA-256 of the serialized transaction. Its String form is
// the reversed, display-order txid.
func (t *Transaction) TxID() (chainhash.Hash, error) {
	raw, err := t.Serialize()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.DoubleHashH(raw), nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
