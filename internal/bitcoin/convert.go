// Package bitcoin talks to a Bitcoin node over JSON-RPC.
package bitcoin

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/chainspend/internal/builder"
	"github.com/goodnatureofminers/chainspend/internal/tx"
	"github.com/goodnatureofminers/chainspend/pkg/safe"
)

// BtcToSatoshis converts BTC amount to satoshis with overflow checks.
func BtcToSatoshis(value float64) (uint64, error) {
	amt, err := btcutil.NewAmount(value)
	if err != nil {
		return 0, err
	}
	if amt < 0 {
		return 0, fmt.Errorf("negative amount: %d", amt)
	}
	return safe.Uint64(int64(amt))
}

// FundingFromUnspent maps a listunspent entry to a funding output.
func FundingFromUnspent(u btcjson.ListUnspentResult) (builder.FundingOutput, error) {
	hash, err := chainhash.NewHashFromStr(u.TxID)
	if err != nil || len(u.TxID) != chainhash.MaxHashStringSize {
		return builder.FundingOutput{}, fmt.Errorf("unspent txid %q: %w", u.TxID, builder.ErrMalformedInput)
	}
	value, err := BtcToSatoshis(u.Amount)
	if err != nil {
		return builder.FundingOutput{}, fmt.Errorf("unspent %s:%d amount %v: %w: %w", u.TxID, u.Vout, u.Amount, builder.ErrMalformedInput, err)
	}
	script, err := hex.DecodeString(u.ScriptPubKey)
	if err != nil {
		return builder.FundingOutput{}, fmt.Errorf("unspent %s:%d script: %w: %w", u.TxID, u.Vout, builder.ErrMalformedInput, err)
	}
	if len(script) == 0 {
		return builder.FundingOutput{}, fmt.Errorf("unspent %s:%d has no script: %w", u.TxID, u.Vout, builder.ErrMalformedInput)
	}

	return builder.FundingOutput{
		OutPoint:      tx.OutPoint{Hash: *hash, Index: u.Vout},
		Value:         value,
		LockingScript: script,
	}, nil
}
