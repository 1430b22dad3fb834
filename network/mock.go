package network

import (
	"context"
	"math/big"
)

// MockBlockchainService is a test double for BlockchainService.
// All function fields must be set before the corresponding method is called.
type MockBlockchainService struct {
	ListUnspentFn func(ctx context.Context, address string) ([]*UTXO, error)
	BroadcastTxFn func(ctx context.Context, rawTxHex string) (string, error)
}

func (m *MockBlockchainService) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	return m.ListUnspentFn(ctx, address)
}
func (m *MockBlockchainService) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	return m.BroadcastTxFn(ctx, rawTxHex)
}

// MockLedger is a test double for Ledger.
// All function fields must be set before the corresponding method is called.
type MockLedger struct {
	CallFn           func(ctx context.Context, method string, params []interface{}, result interface{}) error
	SubmitTransferFn func(ctx context.Context, from, to string, amount *big.Int) (*Receipt, error)
	SendFn           func(ctx context.Context, method string, params []interface{}, opts SendOpts) (*Receipt, error)
}

func (m *MockLedger) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	return m.CallFn(ctx, method, params, result)
}
func (m *MockLedger) SubmitTransfer(ctx context.Context, from, to string, amount *big.Int) (*Receipt, error) {
	return m.SubmitTransferFn(ctx, from, to, amount)
}
func (m *MockLedger) Send(ctx context.Context, method string, params []interface{}, opts SendOpts) (*Receipt, error) {
	return m.SendFn(ctx, method, params, opts)
}

// MockContract is a test double for ContractReader.
// All function fields must be set before the corresponding method is called.
type MockContract struct {
	GetPropertyFn             func(ctx context.Context, id uint64) (*Property, error)
	GetPropertyShareholdersFn func(ctx context.Context, id uint64) ([]string, error)
	GetPropertySharesFn       func(ctx context.Context, id uint64, address string) (uint64, error)
	PropertyCountFn           func(ctx context.Context) (uint64, error)
	SupportsMethodFn          func(ctx context.Context, method string) (bool, error)
}

func (m *MockContract) GetProperty(ctx context.Context, id uint64) (*Property, error) {
	return m.GetPropertyFn(ctx, id)
}
func (m *MockContract) GetPropertyShareholders(ctx context.Context, id uint64) ([]string, error) {
	return m.GetPropertyShareholdersFn(ctx, id)
}
func (m *MockContract) GetPropertyShares(ctx context.Context, id uint64, address string) (uint64, error) {
	return m.GetPropertySharesFn(ctx, id, address)
}
func (m *MockContract) PropertyCount(ctx context.Context) (uint64, error) {
	return m.PropertyCountFn(ctx)
}
func (m *MockContract) SupportsMethod(ctx context.Context, method string) (bool, error) {
	return m.SupportsMethodFn(ctx, method)
}

// StaticContract returns a MockContract serving a fixed share table for
// every property id. Shareholders are listed in the order of addrs.
func StaticContract(addrs []string, shares map[string]uint64) *MockContract {
	return &MockContract{
		GetPropertyShareholdersFn: func(context.Context, uint64) ([]string, error) {
			return append([]string(nil), addrs...), nil
		},
		GetPropertySharesFn: func(_ context.Context, _ uint64, address string) (uint64, error) {
			return shares[address], nil
		},
	}
}
