package network

import (
	"context"
	"fmt"
	"math/big"
)

var _ Ledger = (*RPCClient)(nil)

// sendOptsWire is the {from, value} object of a contract_send request.
// Amounts travel as decimal strings so no precision is lost in JSON.
type sendOptsWire struct {
	From  string `json:"from"`
	Value string `json:"value"`
}

// SubmitTransfer asks the gateway to move amount from one account to
// another using the gateway-held key for from. It calls
// `transfer "from" "to" "amount"` and returns once the gateway has
// accepted the transaction.
func (c *RPCClient) SubmitTransfer(ctx context.Context, from, to string, amount *big.Int) (*Receipt, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: invalid amount %v", ErrTransferFailed, amount)
	}
	var receipt Receipt
	if err := c.Call(ctx, "transfer", []interface{}{from, to, amount.String()}, &receipt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	if receipt.TxID == "" {
		return nil, fmt.Errorf("%w: empty txid in transfer receipt", ErrInvalidResponse)
	}
	receipt.From, receipt.To = from, to
	return &receipt, nil
}

// Send invokes a state-changing contract method via
// `contract_send "method" [params] {from, value}`.
func (c *RPCClient) Send(ctx context.Context, method string, params []interface{}, opts SendOpts) (*Receipt, error) {
	if params == nil {
		params = []interface{}{}
	}
	value := "0"
	if opts.Value != nil {
		value = opts.Value.String()
	}
	var receipt Receipt
	err := c.Call(ctx, "contract_send", []interface{}{method, params, sendOptsWire{From: opts.From, Value: value}}, &receipt)
	if err != nil {
		return nil, fmt.Errorf("network: send %s: %w", method, err)
	}
	receipt.From = opts.From
	return &receipt, nil
}
