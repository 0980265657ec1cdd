// Package builder assembles, signs and serializes single-input, single-output
// pay-to-public-key-hash spends.
package builder

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/chainspend/internal/keys"
	"github.com/goodnatureofminers/chainspend/internal/sighash"
	"github.com/goodnatureofminers/chainspend/internal/signer"
	"github.com/goodnatureofminers/chainspend/internal/tx"
	"github.com/goodnatureofminers/chainspend/pkg/safe"
)

// DefaultFee is the fee in satoshis taken from every spend unless configured otherwise.
const DefaultFee uint64 = 1000

type state int

const (
	stateUnfunded state = iota
	stateSkeleton
	stateSighashComputed
	stateSigned
	stateSerialized
)

func (s state) String() string {
	switch s {
	case stateUnfunded:
		return "unfunded"
	case stateSkeleton:
		return "skeleton"
	case stateSighashComputed:
		return "sighash computed"
	case stateSigned:
		return "signed"
	case stateSerialized:
		return "serialized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Builder produces exactly one transaction. Transitions run in order
// Fund, ComputeSigHash, Sign, Serialize and none can be repeated.
type Builder struct {
	key *keys.KeyPair
	fee uint64

	state   state
	funding FundingOutput
	tx      *tx.Transaction
	sighash chainhash.Hash
	hex     string
}

// New returns a builder that signs with key and deducts fee satoshis.
func New(key *keys.KeyPair, fee uint64) *Builder {
	return &Builder{key: key, fee: fee}
}

func (b *Builder) expect(want state) error {
	if b.state != want {
		return fmt.Errorf("builder is %s, want %s: %w", b.state, want, ErrInvalidState)
	}
	return nil
}

// Fund creates the unsigned skeleton spending funding into destination.
func (b *Builder) Fund(funding FundingOutput, destination []byte) error {
	if err := b.expect(stateUnfunded); err != nil {
		return stageErr(StageFunding, err)
	}
	if b.key == nil {
		return stageErr(StageFunding, fmt.Errorf("no signing key: %w", ErrMalformedInput))
	}
	if err := funding.validate(); err != nil {
		return stageErr(StageFunding, err)
	}
	if len(destination) == 0 {
		return stageErr(StageFunding, fmt.Errorf("empty destination script: %w", ErrMalformedInput))
	}
	value, err := safe.SubUint64(funding.Value, b.fee)
	if err != nil {
		return stageErr(StageFunding, fmt.Errorf("fee %d, funding value %d: %w: %w", b.fee, funding.Value, ErrInsufficientFunds, err))
	}
	if value == 0 {
		return stageErr(StageFunding, fmt.Errorf("fee %d consumes funding value %d: %w", b.fee, funding.Value, ErrInsufficientFunds))
	}

	b.funding = funding
	b.tx = tx.New(funding.OutPoint, tx.TxOut{Value: value, PkScript: destination})
	b.state = stateSkeleton
	return nil
}

// ComputeSigHash computes the SIGHASH_ALL digest of the sole input, committing to the
// funding output's locking script.
func (b *Builder) ComputeSigHash() (chainhash.Hash, error) {
	if err := b.expect(stateSkeleton); err != nil {
		return chainhash.Hash{}, stageErr(StageSighash, err)
	}
	hash, err := sighash.Legacy(b.tx, 0, b.funding.LockingScript, txscript.SigHashAll)
	if err != nil {
		return chainhash.Hash{}, stageErr(StageSighash, err)
	}
	b.sighash = hash
	b.state = stateSighashComputed
	return hash, nil
}

// Sign signs the digest and installs the unlocking script into the input.
func (b *Builder) Sign() error {
	if err := b.expect(stateSighashComputed); err != nil {
		return stageErr(StageSigning, err)
	}
	raw, err := signer.Sign(b.sighash, b.key.PrivateKey())
	if err != nil {
		return stageErr(StageSigning, err)
	}
	der, err := signer.EncodeDER(raw)
	if err != nil {
		return stageErr(StageSigning, err)
	}
	script, err := signer.BuildUnlockingScript(der, txscript.SigHashAll, b.key.PublicKey())
	if err != nil {
		return stageErr(StageSigning, err)
	}
	b.tx.TxIn[0].SignatureScript = script
	b.state = stateSigned
	return nil
}

// Serialize returns the signed transaction as lowercase hex.
func (b *Builder) Serialize() (string, error) {
	if err := b.expect(stateSigned); err != nil {
		return "", stageErr(StageEncoding, err)
	}
	h, err := b.tx.ToHex()
	if err != nil {
		return "", stageErr(StageEncoding, err)
	}
	b.hex = h
	b.state = stateSerialized
	return h, nil
}

// Transaction returns a copy of the transaction in its current state, or nil
// before Fund.
func (b *Builder) Transaction() *tx.Transaction {
	if b.tx == nil {
		return nil
	}
	return b.tx.Copy()
}
