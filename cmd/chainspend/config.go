package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainspend/internal/model"
	"github.com/goodnatureofminers/chainspend/internal/service"
	"github.com/jessevdk/go-flags"
)

const (
	modeChain   = "chain"
	modeSweep   = "sweep"
	modeJournal = "journal"
)

type config struct {
	Network           model.Network `long:"network" env:"CHAINSPEND_NETWORK" description:"network name" default:"regtest"`
	WIF               string        `long:"wif" env:"CHAINSPEND_WIF" description:"private key in wallet import format, required unless mode is journal"`
	RPCURL            string        `long:"rpc-url" env:"CHAINSPEND_RPC_URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:18443"`
	RPCUser           string        `long:"rpc-user" env:"CHAINSPEND_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword       string        `long:"rpc-password" env:"CHAINSPEND_RPC_PASSWORD" description:"Bitcoin RPC password"`
	RPCRPS            int           `long:"rpc-rps" env:"CHAINSPEND_RPC_RPS" description:"max node requests per second, 0 for unlimited" default:"0"`
	Fee               uint64        `long:"fee" env:"CHAINSPEND_FEE" description:"fee in satoshis per transaction" default:"1000"`
	MatureBlocks      int64         `long:"mature-blocks" env:"CHAINSPEND_MATURE_BLOCKS" description:"blocks mined to the address before spending" default:"101"`
	ConfirmBlocks     int64         `long:"confirm-blocks" env:"CHAINSPEND_CONFIRM_BLOCKS" description:"blocks mined after each broadcast" default:"1"`
	FundingAttempts   int           `long:"funding-attempts" env:"CHAINSPEND_FUNDING_ATTEMPTS" description:"unspent lookups before giving up" default:"5"`
	FundingRetryDelay time.Duration `long:"funding-retry-delay" env:"CHAINSPEND_FUNDING_RETRY_DELAY" description:"wait between unspent lookups" default:"1s"`
	Mode              string        `long:"mode" env:"CHAINSPEND_MODE" description:"spend mode" choice:"chain" choice:"sweep" choice:"journal" default:"chain"`
	Workers           int           `long:"workers" env:"CHAINSPEND_WORKERS" description:"concurrent signers in sweep mode" default:"4"`
	JournalPath       string        `long:"journal-path" env:"CHAINSPEND_JOURNAL_PATH" description:"bbolt file recording every spend, empty to disable"`
	TxID              string        `long:"txid" env:"CHAINSPEND_TXID" description:"journal mode: print only this transaction"`
	MetricsAddr       string        `long:"metrics-addr" env:"CHAINSPEND_METRICS_ADDR" description:"address for metrics server, empty to disable"`
}

// parseConfig parses args (without the program name). help is true when usage was printed.
func parseConfig(args []string) (cfg config, help bool, err error) {
	if _, err := flags.ParseArgs(&cfg, args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return cfg, true, nil
		}
		return cfg, false, err
	}
	if cfg.Mode == modeJournal {
		if cfg.JournalPath == "" {
			return cfg, false, errors.New("journal mode needs --journal-path")
		}
		return cfg, false, nil
	}
	if cfg.WIF == "" {
		return cfg, false, errors.New("--wif is required")
	}
	if cfg.MatureBlocks < 0 || cfg.ConfirmBlocks < 0 {
		return cfg, false, fmt.Errorf("block counts must not be negative")
	}
	if cfg.Workers < 1 {
		return cfg, false, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	return cfg, false, nil
}

func (c config) serviceConfig() service.Config {
	return service.Config{
		Fee:               c.Fee,
		MatureBlocks:      c.MatureBlocks,
		ConfirmBlocks:     c.ConfirmBlocks,
		FundingAttempts:   c.FundingAttempts,
		FundingRetryDelay: c.FundingRetryDelay,
		Workers:           c.Workers,
	}
}
