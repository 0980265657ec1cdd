// Package signer produces ECDSA signatures over secp256k1 and assembles the
// unlocking script of a pay-to-public-key-hash input.
package signer

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	asn1Sequence = 0x30
	asn1Integer  = 0x02

	compactSigLen = 65
)

var (
	// ErrSigning reports a failure to produce a signature.
	ErrSigning = errors.New("signing failed")
	// ErrInvalidSignature reports a signature component outside [1, N-1].
	ErrInvalidSignature = errors.New("invalid signature")
)

// RawSignature holds the r and s scalars of an ECDSA signature.
type RawSignature struct {
	R secp256k1.ModNScalar
	S secp256k1.ModNScalar
}

// Sign signs hash with key. The nonce is derived per RFC 6979, so the call keeps no
// state and is safe for concurrent use with a shared key.
func Sign(hash chainhash.Hash, key *btcec.PrivateKey) (RawSignature, error) {
	if key == nil {
		return RawSignature{}, fmt.Errorf("nil private key: %w", ErrSigning)
	}
	compact := ecdsa.SignCompact(key, hash[:], true)
	if len(compact) != compactSigLen {
		return RawSignature{}, fmt.Errorf("compact signature length %d: %w", len(compact), ErrSigning)
	}

	var sig RawSignature
	if overflow := sig.R.SetByteSlice(compact[1:33]); overflow || sig.R.IsZero() {
		return RawSignature{}, fmt.Errorf("r out of range: %w", ErrSigning)
	}
	if overflow := sig.S.SetByteSlice(compact[33:65]); overflow || sig.S.IsZero() {
		return RawSignature{}, fmt.Errorf("s out of range: %w", ErrSigning)
	}
	return sig, nil
}

// EncodeDER returns the DER SEQUENCE { INTEGER r, INTEGER s }. A high s is replaced
// by N-s first, so the output is always in low-S form.
func EncodeDER(sig RawSignature) ([]byte, error) {
	if sig.R.IsZero() || sig.S.IsZero() {
		return nil, fmt.Errorf("zero component: %w", ErrInvalidSignature)
	}

	s := sig.S
	if s.IsOverHalfOrder() {
		s.Negate()
	}

	rBytes := sig.R.Bytes()
	sBytes := s.Bytes()
	r := derInteger(rBytes[:])
	sv := derInteger(sBytes[:])

	bodyLen := 2 + len(r) + 2 + len(sv)
	if bodyLen > 0x7f {
		return nil, fmt.Errorf("der body length %d: %w", bodyLen, ErrInvalidSignature)
	}

	der := make([]byte, 0, 2+bodyLen)
	der = append(der, asn1Sequence, byte(bodyLen))
	der = append(der, asn1Integer, byte(len(r)))
	der = append(der, r...)
	der = append(der, asn1Integer, byte(len(sv)))
	der = append(der, sv...)
	return der, nil
}

// derInteger strips leading zero bytes and prepends one zero byte when the high
// bit is set, so the INTEGER stays positive.
func derInteger(b []byte) []byte {
	for len(b) > 1 && b[0] == 0x00 {
		b = b[1:]
	}
	if b[0]&0x80 != 0 {
		return append([]byte{0x00}, b...)
	}
	return append([]byte(nil), b...)
}
