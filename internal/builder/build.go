package builder

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/chainspend/internal/keys"
	"github.com/goodnatureofminers/chainspend/internal/tx"
)

// Result is a signed, serialized spend.
type Result struct {
	Tx      *tx.Transaction
	TxID    chainhash.Hash
	Hex     string
	SigHash chainhash.Hash
	Funding FundingOutput
}

// OutputValue is the value of the sole output.
func (r *Result) OutputValue() uint64 {
	return r.Tx.TxOut[0].Value
}

// Build runs every builder transition for one spend.
func Build(key *keys.KeyPair, fee uint64, funding FundingOutput, destination []byte) (*Result, error) {
	b := New(key, fee)
	if err := b.Fund(funding, destination); err != nil {
		return nil, err
	}
	hash, err := b.ComputeSigHash()
	if err != nil {
		return nil, err
	}
	if err := b.Sign(); err != nil {
		return nil, err
	}
	h, err := b.Serialize()
	if err != nil {
		return nil, err
	}
	txid, err := b.tx.TxID()
	if err != nil {
		return nil, stageErr(StageEncoding, err)
	}
	return &Result{
		Tx:      b.Transaction(),
		TxID:    txid,
		Hex:     h,
		SigHash: hash,
		Funding: funding,
	}, nil
}
