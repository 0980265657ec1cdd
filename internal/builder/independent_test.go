package builder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/chainspend/internal/tx"
)

func TestBuildIndependent(t *testing.T) {
	kp := testKeyPair(t, 0x81)
	fundings := make([]FundingOutput, 0, 6)
	for i := 0; i < 6; i++ {
		fundings = append(fundings, FundingOutput{
			OutPoint:      tx.OutPoint{Hash: chainhash.DoubleHashH([]byte{byte(i)}), Index: uint32(i)},
			Value:         uint64(10_000 * (i + 1)),
			LockingScript: kp.LockingScript(),
		})
	}

	results, err := BuildIndependent(context.Background(), 3, kp, DefaultFee, fundings, kp.LockingScript())
	if err != nil {
		t.Fatalf("BuildIndependent() error = %v", err)
	}
	if len(results) != len(fundings) {
		t.Fatalf("BuildIndependent() returned %d results, want %d", len(results), len(fundings))
	}

	for i, res := range results {
		want, err := Build(kp, DefaultFee, fundings[i], kp.LockingScript())
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if res.Hex != want.Hex {
			t.Errorf("result %d hex = %s, want %s", i, res.Hex, want.Hex)
		}
		if got := res.Tx.TxIn[0].PreviousOutPoint; got != fundings[i].OutPoint {
			t.Errorf("result %d spends %s, want %s", i, got, fundings[i].OutPoint)
		}
		verifySpend(t, res.Hex, fundings[i].LockingScript, fundings[i].Value)
	}
}

func TestBuildIndependent_errors(t *testing.T) {
	kp := testKeyPair(t, 0x82)

	if _, err := BuildIndependent(context.Background(), 2, kp, DefaultFee, nil, kp.LockingScript()); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("BuildIndependent(nil) error = %v, want ErrMalformedInput", err)
	}

	fundings := []FundingOutput{
		{OutPoint: tx.OutPoint{Index: 0}, Value: 50_000, LockingScript: kp.LockingScript()},
		{OutPoint: tx.OutPoint{Index: 1}, Value: 200, LockingScript: kp.LockingScript()},
	}
	_, err := BuildIndependent(context.Background(), 2, kp, DefaultFee, fundings, kp.LockingScript())
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("BuildIndependent() error = %v, want ErrInsufficientFunds", err)
	}
	if !strings.Contains(err.Error(), fundings[1].OutPoint.String()) {
		t.Fatalf("error %q does not name outpoint %s", err, fundings[1].OutPoint)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildIndependent(ctx, 2, kp, DefaultFee, fundings[:1], kp.LockingScript()); !errors.Is(err, context.Canceled) {
		t.Fatalf("BuildIndependent(canceled) error = %v, want context.Canceled", err)
	}
}
