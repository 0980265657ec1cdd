package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/goodnatureofminers/chainspend/internal/bitcoin"
	"github.com/goodnatureofminers/chainspend/internal/builder"
	"github.com/goodnatureofminers/chainspend/internal/journal"
	"github.com/goodnatureofminers/chainspend/internal/keys"
	"github.com/goodnatureofminers/chainspend/internal/metrics"
	"github.com/goodnatureofminers/chainspend/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg, help, err := parseConfig(os.Args[1:])
	if help {
		return
	}
	if err != nil {
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		fields := []zap.Field{zap.String("mode", cfg.Mode), zap.Error(err)}
		if stage, ok := builder.StageOf(err); ok {
			fields = append(fields, zap.String("stage", string(stage)))
		}
		logger.Fatal("chain spend failed", fields...)
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	if cfg.Mode == modeJournal {
		return showJournal(cfg.JournalPath, cfg.TxID)
	}

	params, err := keys.ChainParams(cfg.Network)
	if err != nil {
		return err
	}
	key, err := keys.FromWIF(cfg.WIF, params)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.MetricsAddr, logger)
	}

	var spendJournal service.Journal
	if cfg.JournalPath != "" {
		store, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close journal", zap.Error(err))
			}
		}()
		spendJournal = store
	}

	rpcClient, err := newRPCClient(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return fmt.Errorf("init rpc client: %w", err)
	}
	defer func() {
		rpcClient.Shutdown()
		rpcClient.WaitForShutdown()
	}()
	node := bitcoin.NewNode(bitcoin.NewRPCClient(rpcClient, metrics.NewRPCClient(cfg.Network), cfg.RPCRPS))

	svc, err := service.NewChainSpendService(
		node,
		spendJournal,
		metrics.NewSpend(cfg.Network),
		key,
		cfg.Network,
		cfg.serviceConfig(),
		logger,
	)
	if err != nil {
		return err
	}

	switch cfg.Mode {
	case modeSweep:
		spends, err := svc.Sweep(ctx)
		if err != nil {
			return err
		}
		for _, s := range spends {
			fmt.Println(s.BroadcastTxID)
		}
	default:
		res, err := svc.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Println(res.First.BroadcastTxID)
		fmt.Println(res.Second.BroadcastTxID)
	}
	return nil
}

func showJournal(path, txid string) error {
	store, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return printJournal(os.Stdout, store, txid)
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}

func newRPCClient(rawURL, user, password string) (*rpcclient.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	return rpcclient.New(&rpcclient.ConnConfig{
		Host:         parsed.Host + parsed.Path,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
}
