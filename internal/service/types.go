package service

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/chainspend/internal/builder"
	"github.com/goodnatureofminers/chainspend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Node is the wallet-enabled node a run funds from and broadcasts to.
	Node interface {
		ImportAddress(ctx context.Context, address btcutil.Address) error
		Mine(ctx context.Context, blocks int64, address btcutil.Address) ([]*chainhash.Hash, error)
		Unspent(ctx context.Context, address btcutil.Address) ([]builder.FundingOutput, error)
		Broadcast(ctx context.Context, rawHex string) (string, error)
	}
	// Journal persists spend records.
	Journal interface {
		Record(ctx context.Context, rec model.SpendRecord) error
	}
	// Metrics records spend step outcomes.
	Metrics interface {
		ObserveBuild(step model.SpendStep, err error, started time.Time)
		ObserveBroadcast(step model.SpendStep, fee uint64, err error, started time.Time)
		ObserveMined(blocks int)
	}
)

type nopJournal struct{}

func (nopJournal) Record(context.Context, model.SpendRecord) error { return nil }
