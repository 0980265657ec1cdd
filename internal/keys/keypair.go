// Package keys holds the signing key pair and the pay-to-public-key-hash script
// derived from it.
package keys

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// ErrInvalidKey reports unusable private key material.
var ErrInvalidKey = errors.New("invalid private key")

// KeyPair is an immutable secp256k1 key pair with its P2PKH address.
type KeyPair struct {
	priv          *btcec.PrivateKey
	pubCompressed []byte
	address       *btcutil.AddressPubKeyHash
	lockingScript []byte
}

// FromWIF decodes a WIF private key for the given network. The public key is
// always used in compressed form.
func FromWIF(wif string, params *chaincfg.Params) (*KeyPair, error) {
	decoded, err := btcutil.DecodeWIF(wif)
	if err != nil {
		return nil, fmt.Errorf("decode wif: %w: %w", ErrInvalidKey, err)
	}
	if !decoded.IsForNet(params) {
		return nil, fmt.Errorf("wif is not for network %s: %w", params.Name, ErrInvalidKey)
	}
	return newKeyPair(decoded.PrivKey, params)
}

// FromBytes builds a key pair from a raw 32-byte scalar.
func FromBytes(secret []byte, params *chaincfg.Params) (*KeyPair, error) {
	if len(secret) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("secret is %d bytes, want %d: %w", len(secret), btcec.PrivKeyBytesLen, ErrInvalidKey)
	}
	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(secret); overflow {
		return nil, fmt.Errorf("secret not below curve order: %w", ErrInvalidKey)
	}
	return newKeyPair(btcec.PrivKeyFromScalar(&scalar), params)
}

func newKeyPair(priv *btcec.PrivateKey, params *chaincfg.Params) (*KeyPair, error) {
	if priv == nil || priv.Key.IsZero() {
		return nil, fmt.Errorf("zero scalar: %w", ErrInvalidKey)
	}
	pub := priv.PubKey().SerializeCompressed()

	address, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(pub), params)
	if err != nil {
		return nil, fmt.Errorf("derive address: %w", err)
	}
	script, err := txscript.PayToAddrScript(address)
	if err != nil {
		return nil, fmt.Errorf("derive locking script: %w", err)
	}

	return &KeyPair{
		priv:          priv,
		pubCompressed: pub,
		address:       address,
		lockingScript: script,
	}, nil
}

// PrivateKey returns the signing key.
func (k *KeyPair) PrivateKey() *btcec.PrivateKey {
	return k.priv
}

// PublicKey returns the 33-byte compressed public key.
func (k *KeyPair) PublicKey() []byte {
	return append([]byte(nil), k.pubCompressed...)
}

// Address returns the P2PKH address of the public key.
func (k *KeyPair) Address() *btcutil.AddressPubKeyHash {
	return k.address
}

// LockingScript returns OP_DUP OP_HASH160 <hash160(pubkey)> OP_EQUALVERIFY OP_CHECKSIG.
func (k *KeyPair) LockingScript() []byte {
	return append([]byte(nil), k.lockingScript...)
}
