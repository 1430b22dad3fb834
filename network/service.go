package network

import (
	"context"
	"math/big"
)

// Caller invokes a read-only contract method and decodes its result.
type Caller interface {
	Call(ctx context.Context, method string, params []interface{}, result interface{}) error
}

// Transferer submits a native value transfer between two accounts and
// blocks until the ledger has accepted it.
type Transferer interface {
	SubmitTransfer(ctx context.Context, from, to string, amount *big.Int) (*Receipt, error)
}

// Ledger is the full ledger client surface: plain transfers, contract
// reads and state-changing contract calls.
type Ledger interface {
	Caller
	Transferer

	// Send invokes a state-changing contract method on behalf of opts.From,
	// attaching opts.Value of native currency.
	Send(ctx context.Context, method string, params []interface{}, opts SendOpts) (*Receipt, error)
}

// ContractReader is the read surface of the property contract.
type ContractReader interface {
	// GetProperty returns the property record for id.
	GetProperty(ctx context.Context, id uint64) (*Property, error)

	// GetPropertyShareholders returns the addresses holding shares in property id.
	GetPropertyShareholders(ctx context.Context, id uint64) ([]string, error)

	// GetPropertyShares returns the share count held by address in property id.
	GetPropertyShares(ctx context.Context, id uint64, address string) (uint64, error)

	// PropertyCount returns the number of listed properties. Ids run from 1 to count.
	PropertyCount(ctx context.Context) (uint64, error)

	// SupportsMethod reports whether the deployed contract exposes method.
	SupportsMethod(ctx context.Context, method string) (bool, error)
}

// BlockchainService is the node surface used to fund and broadcast transfers.
type BlockchainService interface {
	// ListUnspent returns all unspent transaction outputs for the given address.
	ListUnspent(ctx context.Context, address string) ([]*UTXO, error)

	// BroadcastTx submits a raw transaction hex to the network and returns the txid.
	BroadcastTx(ctx context.Context, rawTxHex string) (string, error)
}

// SendOpts carries the sender and attached value of a contract call.
type SendOpts struct {
	From  string
	Value *big.Int
}

// Receipt is the ledger's acknowledgement of a transfer or contract call.
type Receipt struct {
	TxID   string  `json:"txid"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Events []Event `json:"events,omitempty"`
}

// Event is a contract event emitted by a transaction.
type Event struct {
	Name   string            `json:"name"`
	Values map[string]string `json:"values"`
}

// Property is the contract's record of a listed property.
type Property struct {
	ID              uint64
	Name            string
	Location        string
	TotalValue      *big.Int
	TotalShares     uint64
	AvailableShares uint64
	PricePerShare   *big.Int
	Owner           string
}

// SoldShares returns the number of shares held by investors.
func (p *Property) SoldShares() uint64 {
	if p.AvailableShares > p.TotalShares {
		return 0
	}
	return p.TotalShares - p.AvailableShares
}

// UTXO represents an unspent transaction output.
type UTXO struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Amount        uint64 `json:"amount"`
	ScriptPubKey  string `json:"script_pubkey"`
	Address       string `json:"address"`
	Confirmations int64  `json:"confirmations"`
}
