package signer

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
)

var (
	// ErrOversizedPush reports a script element above txscript.MaxScriptElementSize.
	ErrOversizedPush = errors.New("script push exceeds maximum element size")
	// ErrInvalidPublicKey reports a public key that is not 33-byte compressed.
	ErrInvalidPublicKey = errors.New("invalid compressed public key")
)

// BuildUnlockingScript returns <der || hashType> <pubKey> using minimal pushes.
func BuildUnlockingScript(der []byte, hashType txscript.SigHashType, pubKey []byte) ([]byte, error) {
	if len(pubKey) != btcec.PubKeyBytesLenCompressed || (pubKey[0] != 0x02 && pubKey[0] != 0x03) {
		return nil, fmt.Errorf("%d bytes: %w", len(pubKey), ErrInvalidPublicKey)
	}

	sig := make([]byte, 0, len(der)+1)
	sig = append(sig, der...)
	sig = append(sig, byte(hashType))

	script := make([]byte, 0, len(sig)+len(pubKey)+6)
	script, err := appendPush(script, sig)
	if err != nil {
		return nil, fmt.Errorf("push signature: %w", err)
	}
	script, err = appendPush(script, pubKey)
	if err != nil {
		return nil, fmt.Errorf("push public key: %w", err)
	}
	return script, nil
}

// appendPush appends the shortest opcode sequence that pushes data.
func appendPush(script, data []byte) ([]byte, error) {
	n := len(data)
	switch {
	case n > txscript.MaxScriptElementSize:
		return nil, fmt.Errorf("%d > %d bytes: %w", n, txscript.MaxScriptElementSize, ErrOversizedPush)
	case n == 0 || (n == 1 && data[0] == 0):
		return append(script, txscript.OP_0), nil
	case n == 1 && data[0] <= 16:
		return append(script, txscript.OP_1-1+data[0]), nil
	case n == 1 && data[0] == 0x81:
		return append(script, txscript.OP_1NEGATE), nil
	case n <= 75:
		script = append(script, byte(txscript.OP_DATA_1-1+n))
	case n <= 0xff:
		script = append(script, txscript.OP_PUSHDATA1, byte(n))
	default:
		script = append(script, txscript.OP_PUSHDATA2)
		script = binary.LittleEndian.AppendUint16(script, uint16(n))
	}
	return append(script, data...), nil
}
