// Package service runs spend pipelines against a node.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainspend/internal/bitcoin"
	"github.com/goodnatureofminers/chainspend/internal/builder"
	"github.com/goodnatureofminers/chainspend/internal/clock"
	"github.com/goodnatureofminers/chainspend/internal/keys"
	"github.com/goodnatureofminers/chainspend/internal/model"
	"go.uber.org/zap"
)

// Config tunes a spend run.
type Config struct {
	Fee               uint64
	MatureBlocks      int64
	ConfirmBlocks     int64
	FundingAttempts   int
	FundingRetryDelay time.Duration
	Workers           int
}

// DefaultConfig returns the settings used against a fresh regtest node.
func DefaultConfig() Config {
	return Config{
		Fee:               builder.DefaultFee,
		MatureBlocks:      101,
		ConfirmBlocks:     1,
		FundingAttempts:   5,
		FundingRetryDelay: time.Second,
		Workers:           4,
	}
}

// Spend is a built transaction and the txid the node accepted it under.
type Spend struct {
	Step          model.SpendStep
	Result        *builder.Result
	BroadcastTxID string
}

// ChainResult holds both transactions of a chained run.
type ChainResult struct {
	First  Spend
	Second Spend
}

// ChainSpendService funds the key's own address on a node and spends from it.
type ChainSpendService struct {
	node    Node
	journal Journal
	metrics Metrics
	key     *keys.KeyPair
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

// NewChainSpendService builds the service. A nil journal disables recording.
func NewChainSpendService(
	node Node,
	journal Journal,
	metrics Metrics,
	key *keys.KeyPair,
	network model.Network,
	cfg Config,
	logger *zap.Logger,
) (*ChainSpendService, error) {
	if node == nil || metrics == nil {
		return nil, errors.New("node and metrics are required")
	}
	if key == nil {
		return nil, errors.New("signing key is required")
	}
	if journal == nil {
		journal = nopJournal{}
	}
	return &ChainSpendService{
		node:    node,
		journal: journal,
		metrics: metrics,
		key:     key,
		cfg:     cfg,
		logger: logger.Named("chainspend").With(
			zap.String("network", string(network)),
			zap.String("address", key.Address().EncodeAddress()),
		),
		now: time.Now,
	}, nil
}

// Run spends the first unspent output of the key's address to that same address,
// then spends the resulting output 0 in a second transaction.
func (s *ChainSpendService) Run(ctx context.Context) (*ChainResult, error) {
	fundings, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}
	destination := s.key.LockingScript()

	first, err := s.spend(ctx, model.StepFirst, fundings[0], destination)
	if err != nil {
		return nil, err
	}
	if err := s.mine(ctx, s.cfg.ConfirmBlocks); err != nil {
		return nil, err
	}

	chained, err := builder.ChainedFunding(first.BroadcastTxID, first.Result.OutputValue(), destination)
	if err != nil {
		return nil, fmt.Errorf("%s spend: %w", model.StepSecond, err)
	}
	second, err := s.spend(ctx, model.StepSecond, chained, destination)
	if err != nil {
		return nil, err
	}
	if err := s.mine(ctx, s.cfg.ConfirmBlocks); err != nil {
		return nil, err
	}

	s.logger.Info("chain spend finished",
		zap.String("first_txid", first.BroadcastTxID),
		zap.String("second_txid", second.BroadcastTxID),
		zap.Uint64("final_value", second.Result.OutputValue()))
	return &ChainResult{First: first, Second: second}, nil
}

// Sweep spends every unspent output of the key's address in its own transaction.
// Signing runs concurrently, broadcasts follow node order.
func (s *ChainSpendService) Sweep(ctx context.Context) ([]Spend, error) {
	fundings, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	started := s.now()
	results, err := builder.BuildIndependent(ctx, s.cfg.Workers, s.key, s.cfg.Fee, fundings, s.key.LockingScript())
	s.metrics.ObserveBuild(model.StepSweep, err, started)
	if err != nil {
		return nil, fmt.Errorf("%s spend: %w", model.StepSweep, err)
	}
	s.logger.Info("sweep transactions built", zap.Int("count", len(results)), zap.Int("workers", s.cfg.Workers))

	spends := make([]Spend, 0, len(results))
	for _, res := range results {
		spend, err := s.publish(ctx, model.StepSweep, res)
		if err != nil {
			return nil, err
		}
		spends = append(spends, spend)
	}
	if err := s.mine(ctx, s.cfg.ConfirmBlocks); err != nil {
		return nil, err
	}
	return spends, nil
}

// prepare watches and funds the address and returns its unspent outputs.
func (s *ChainSpendService) prepare(ctx context.Context) ([]builder.FundingOutput, error) {
	address := s.key.Address()
	if err := s.node.ImportAddress(ctx, address); err != nil {
		return nil, err
	}
	s.logger.Info("address imported")

	if err := s.mine(ctx, s.cfg.MatureBlocks); err != nil {
		return nil, err
	}

	var fundings []builder.FundingOutput
	err := clock.Retry(ctx, s.cfg.FundingAttempts, s.cfg.FundingRetryDelay, func(ctx context.Context, attempt int) error {
		var err error
		fundings, err = s.node.Unspent(ctx, address)
		if err == nil && len(fundings) == 0 {
			err = bitcoin.ErrNoUnspent
		}
		if errors.Is(err, bitcoin.ErrNoUnspent) {
			s.logger.Warn("no unspent outputs yet", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		return clock.Permanent(err)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", builder.StageFunding, err)
	}
	s.logger.Info("unspent outputs found",
		zap.Int("count", len(fundings)),
		zap.Stringer("first", fundings[0].OutPoint),
		zap.Uint64("first_value", fundings[0].Value))
	return fundings, nil
}

func (s *ChainSpendService) mine(ctx context.Context, blocks int64) error {
	if blocks <= 0 {
		return nil
	}
	hashes, err := s.node.Mine(ctx, blocks, s.key.Address())
	if err != nil {
		return err
	}
	s.metrics.ObserveMined(len(hashes))
	s.logger.Info("blocks mined", zap.Int64("blocks", blocks))
	return nil
}

func (s *ChainSpendService) spend(ctx context.Context, step model.SpendStep, funding builder.FundingOutput, destination []byte) (Spend, error) {
	started := s.now()
	res, err := builder.Build(s.key, s.cfg.Fee, funding, destination)
	s.metrics.ObserveBuild(step, err, started)
	if err != nil {
		return Spend{}, fmt.Errorf("%s spend: %w", step, err)
	}
	s.logger.Info("transaction built",
		zap.String("step", string(step)),
		zap.Stringer("funding", funding.OutPoint),
		zap.Uint64("funding_value", funding.Value),
		zap.Uint64("output_value", res.OutputValue()),
		zap.Stringer("txid", res.TxID))
	return s.publish(ctx, step, res)
}

// publish journals res, broadcasts it and journals the node's txid.
func (s *ChainSpendService) publish(ctx context.Context, step model.SpendStep, res *builder.Result) (Spend, error) {
	rec := model.SpendRecord{
		Step:            step,
		TxID:            res.TxID.String(),
		FundingOutPoint: res.Funding.OutPoint.String(),
		FundingValue:    res.Funding.Value,
		OutputValue:     res.OutputValue(),
		Fee:             s.cfg.Fee,
		Hex:             res.Hex,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.journal.Record(ctx, rec); err != nil {
		return Spend{}, fmt.Errorf("%s spend: journal: %w", step, err)
	}

	started := s.now()
	txid, err := s.node.Broadcast(ctx, res.Hex)
	s.metrics.ObserveBroadcast(step, s.cfg.Fee, err, started)
	if err != nil {
		s.logger.Error("broadcast failed", zap.String("step", string(step)), zap.String("hex", res.Hex), zap.Error(err))
		return Spend{}, fmt.Errorf("%s spend: broadcast: %w", step, err)
	}
	if txid != rec.TxID {
		s.logger.Warn("node reported a different txid",
			zap.String("step", string(step)),
			zap.String("local_txid", rec.TxID),
			zap.String("broadcast_txid", txid))
	}
	s.logger.Info("transaction broadcast", zap.String("step", string(step)), zap.String("txid", txid))

	rec.BroadcastTxID = txid
	if err := s.journal.Record(ctx, rec); err != nil {
		return Spend{}, fmt.Errorf("%s spend: journal: %w", step, err)
	}
	return Spend{Step: step, Result: res, BroadcastTxID: txid}, nil
}
