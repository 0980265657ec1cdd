package bitcoin

import (
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"go.uber.org/ratelimit"
)

// RPCClient wraps a node client with rate limiting and metrics instrumentation.
type RPCClient struct {
	client     NodeClient
	limiter    ratelimit.Limiter
	rpcMetrics RPCMetrics
}

// NewRPCClient constructs an instrumented RPC client. rps <= 0 disables rate limiting.
func NewRPCClient(client NodeClient, rpcMetrics RPCMetrics, rps int) *RPCClient {
	limiter := ratelimit.NewUnlimited()
	if rps > 0 {
		limiter = ratelimit.New(rps)
	}
	return &RPCClient{
		client:     client,
		limiter:    limiter,
		rpcMetrics: rpcMetrics,
	}
}

// ImportAddressRescan adds a watch-only address to the node wallet.
func (r *RPCClient) ImportAddressRescan(address string, account string, rescan bool) (err error) {
	r.limiter.Take()
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("import_address", err, started)
	}()
	return r.client.ImportAddressRescan(address, account, rescan)
}

// GenerateToAddress mines blocks paying their coinbase to address.
func (r *RPCClient) GenerateToAddress(numBlocks int64, address btcutil.Address, maxTries *int64) (hashes []*chainhash.Hash, err error) {
	r.limiter.Take()
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("generate_to_address", err, started)
	}()
	return r.client.GenerateToAddress(numBlocks, address, maxTries)
}

// ListUnspentMinMaxAddresses lists wallet outputs paying addrs within the confirmation range.
func (r *RPCClient) ListUnspentMinMaxAddresses(minConf, maxConf int, addrs []btcutil.Address) (res []btcjson.ListUnspentResult, err error) {
	r.limiter.Take()
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("list_unspent", err, started)
	}()
	return r.client.ListUnspentMinMaxAddresses(minConf, maxConf, addrs)
}

// SendRawTransaction submits a signed transaction to the node.
func (r *RPCClient) SendRawTransaction(tx *wire.MsgTx, allowHighFees bool) (hash *chainhash.Hash, err error) {
	r.limiter.Take()
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("send_raw_transaction", err, started)
	}()
	return r.client.SendRawTransaction(tx, allowHighFees)
}
