package network

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

var _ BlockchainService = (*RPCClient)(nil)

// satsPerCoin is the exponent between the node's coin amounts and satoshis.
const satsPerCoin = 8

// maxConfirmations is the upper bound passed to listunspent.
const maxConfirmations = 9999999

// coinsToSats converts a coin amount as printed by the node into satoshis
// without going through a float.
func coinsToSats(n json.Number) (uint64, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, err
	}
	sats := d.Shift(satsPerCoin)
	if sats.Sign() < 0 || !sats.Equal(sats.Truncate(0)) || !sats.BigInt().IsUint64() {
		return 0, fmt.Errorf("amount %s is not a whole number of satoshis", n)
	}
	return sats.BigInt().Uint64(), nil
}

type unspentWire struct {
	TxID          string      `json:"txid"`
	Vout          uint32      `json:"vout"`
	Amount        json.Number `json:"amount"`
	ScriptPubKey  string      `json:"scriptPubKey"`
	Address       string      `json:"address"`
	Confirmations int64       `json:"confirmations"`
}

// ListUnspent calls `listunspent 0 9999999 ["address"]`, including
// unconfirmed outputs so back-to-back payouts can chain their change.
func (c *RPCClient) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	var wire []unspentWire
	if err := c.Call(ctx, "listunspent", []interface{}{0, maxConfirmations, []string{address}}, &wire); err != nil {
		return nil, err
	}

	utxos := make([]*UTXO, 0, len(wire))
	for _, w := range wire {
		sats, err := coinsToSats(w.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: utxo %s:%d: %w", ErrInvalidResponse, w.TxID, w.Vout, err)
		}
		utxos = append(utxos, &UTXO{
			TxID:          w.TxID,
			Vout:          w.Vout,
			Amount:        sats,
			ScriptPubKey:  w.ScriptPubKey,
			Address:       w.Address,
			Confirmations: w.Confirmations,
		})
	}
	return utxos, nil
}

// BroadcastTx calls `sendrawtransaction "hex"` and returns the txid.
func (c *RPCClient) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	var txid string
	if err := c.Call(ctx, "sendrawtransaction", []interface{}{rawTxHex}, &txid); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBroadcastRejected, err)
	}
	if txid == "" {
		return "", fmt.Errorf("%w: empty txid", ErrInvalidResponse)
	}
	return txid, nil
}
