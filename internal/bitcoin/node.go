package bitcoin

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/chainspend/internal/builder"
	"github.com/goodnatureofminers/chainspend/internal/tx"
	"github.com/goodnatureofminers/chainspend/pkg/safe"
)

const (
	unspentMinConf = 0
	unspentMaxConf = 9999999
)

var (
	// ErrNoUnspent reports that the node knows no spendable output for an address.
	ErrNoUnspent = errors.New("no unspent outputs")
	// ErrInvalidRawTransaction reports hex that does not decode to a legacy transaction.
	ErrInvalidRawTransaction = errors.New("invalid raw transaction")
)

// Node exposes the node operations a spend run needs.
type Node struct {
	client NodeClient
}

// NewNode wraps client.
func NewNode(client NodeClient) *Node {
	return &Node{client: client}
}

// ImportAddress watches address in the node wallet without rescanning.
func (n *Node) ImportAddress(ctx context.Context, address btcutil.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.client.ImportAddressRescan(address.EncodeAddress(), "", false); err != nil {
		return fmt.Errorf("import address %s: %w", address, err)
	}
	return nil
}

// Mine generates blocks paying to address and returns their hashes.
func (n *Node) Mine(ctx context.Context, blocks int64, address btcutil.Address) ([]*chainhash.Hash, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if blocks <= 0 {
		return nil, nil
	}
	hashes, err := n.client.GenerateToAddress(blocks, address, nil)
	if err != nil {
		return nil, fmt.Errorf("generate %d blocks to %s: %w", blocks, address, err)
	}
	return hashes, nil
}

// Unspent returns the outputs paying address, in node order.
func (n *Node) Unspent(ctx context.Context, address btcutil.Address) ([]builder.FundingOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := n.client.ListUnspentMinMaxAddresses(unspentMinConf, unspentMaxConf, []btcutil.Address{address})
	if err != nil {
		return nil, fmt.Errorf("list unspent for %s: %w", address, err)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("address %s: %w", address, ErrNoUnspent)
	}

	fundings := make([]builder.FundingOutput, 0, len(res))
	for _, u := range res {
		funding, err := FundingFromUnspent(u)
		if err != nil {
			return nil, err
		}
		fundings = append(fundings, funding)
	}
	return fundings, nil
}

// Broadcast submits rawHex and returns the txid reported by the node.
func (n *Node) Broadcast(ctx context.Context, rawHex string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	parsed, err := tx.ParseHex(rawHex)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRawTransaction, err)
	}
	msg, err := toWire(parsed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRawTransaction, err)
	}

	hash, err := n.client.SendRawTransaction(msg, false)
	if err != nil {
		return "", fmt.Errorf("send raw transaction %s: %w", msg.TxHash(), err)
	}
	return hash.String(), nil
}

func toWire(t *tx.Transaction) (*wire.MsgTx, error) {
	msg := wire.NewMsgTx(t.Version)
	for _, in := range t.TxIn {
		prev := wire.NewOutPoint(&in.PreviousOutPoint.Hash, in.PreviousOutPoint.Index)
		txIn := wire.NewTxIn(prev, in.SignatureScript, nil)
		txIn.Sequence = in.Sequence
		msg.AddTxIn(txIn)
	}
	for i, out := range t.TxOut {
		value, err := safe.Int64(out.Value)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		msg.AddTxOut(wire.NewTxOut(value, out.PkScript))
	}
	msg.LockTime = t.LockTime
	return msg, nil
}
