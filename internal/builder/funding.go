package builder

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/chainspend/internal/tx"
)

// FundingOutput is an unspent output the builder spends in full.
type FundingOutput struct {
	OutPoint      tx.OutPoint
	Value         uint64
	LockingScript []byte
}

// ChainedFunding describes output 0 of a broadcast transaction as a funding output.
// txid is in display order, as returned by the node; lockingScript is the script
// that output was paid to.
func ChainedFunding(txid string, value uint64, lockingScript []byte) (FundingOutput, error) {
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return FundingOutput{}, fmt.Errorf("parse txid %q: %w: %w", txid, ErrMalformedInput, err)
	}
	if len(txid) != chainhash.MaxHashStringSize {
		return FundingOutput{}, fmt.Errorf("txid %q is not %d hex characters: %w", txid, chainhash.MaxHashStringSize, ErrMalformedInput)
	}
	funding := FundingOutput{
		OutPoint:      tx.OutPoint{Hash: *hash, Index: 0},
		Value:         value,
		LockingScript: append([]byte(nil), lockingScript...),
	}
	if err := funding.validate(); err != nil {
		return FundingOutput{}, err
	}
	return funding, nil
}

func (f FundingOutput) validate() error {
	if len(f.LockingScript) == 0 {
		return fmt.Errorf("funding %s has no locking script: %w", f.OutPoint, ErrMalformedInput)
	}
	return nil
}
