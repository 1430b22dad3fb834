package network

import (
	"context"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"
)

// maxShareLookups bounds the concurrent getPropertyShares calls made by Shareholders.
const maxShareLookups = 8

var _ ContractReader = (*ContractClient)(nil)

// ContractClient reads the property contract through a JSON-RPC gateway.
// Each contract view is exposed by the gateway as an RPC method of the same name.
type ContractClient struct {
	rpc Caller
}

// NewContractClient creates a contract reader on top of rpc.
func NewContractClient(rpc Caller) *ContractClient {
	return &ContractClient{rpc: rpc}
}

// propertyWire is the gateway's JSON form of a property. Currency amounts
// are decimal strings.
type propertyWire struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	Location        string `json:"location"`
	TotalValue      string `json:"totalValue"`
	TotalShares     uint64 `json:"totalShares"`
	AvailableShares uint64 `json:"availableShares"`
	PricePerShare   string `json:"pricePerShare"`
	Owner           string `json:"owner"`
}

// parseAmount decodes a decimal currency amount; an empty string is zero.
func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: bad amount %q", ErrInvalidResponse, s)
	}
	return v, nil
}

// GetProperty calls `getProperty id`.
func (c *ContractClient) GetProperty(ctx context.Context, id uint64) (*Property, error) {
	var w *propertyWire
	if err := c.rpc.Call(ctx, "getProperty", []interface{}{id}, &w); err != nil {
		return nil, fmt.Errorf("%w: property %d: %w", ErrLookupFailed, id, err)
	}
	if w == nil {
		return nil, fmt.Errorf("%w: property %d not found", ErrLookupFailed, id)
	}
	totalValue, err := parseAmount(w.TotalValue)
	if err != nil {
		return nil, err
	}
	price, err := parseAmount(w.PricePerShare)
	if err != nil {
		return nil, err
	}
	return &Property{
		ID:              id,
		Name:            w.Name,
		Location:        w.Location,
		TotalValue:      totalValue,
		TotalShares:     w.TotalShares,
		AvailableShares: w.AvailableShares,
		PricePerShare:   price,
		Owner:           w.Owner,
	}, nil
}

// GetPropertyShareholders calls `getPropertyShareholders id`.
func (c *ContractClient) GetPropertyShareholders(ctx context.Context, id uint64) ([]string, error) {
	var addrs []string
	if err := c.rpc.Call(ctx, "getPropertyShareholders", []interface{}{id}, &addrs); err != nil {
		return nil, fmt.Errorf("%w: shareholders of %d: %w", ErrLookupFailed, id, err)
	}
	return addrs, nil
}

// GetPropertyShares calls `getPropertyShares id "address"`.
func (c *ContractClient) GetPropertyShares(ctx context.Context, id uint64, address string) (uint64, error) {
	var shares uint64
	if err := c.rpc.Call(ctx, "getPropertyShares", []interface{}{id, address}, &shares); err != nil {
		return 0, fmt.Errorf("%w: shares of %s in %d: %w", ErrLookupFailed, address, id, err)
	}
	return shares, nil
}

// PropertyCount calls `propertyCount`.
func (c *ContractClient) PropertyCount(ctx context.Context) (uint64, error) {
	var n uint64
	if err := c.rpc.Call(ctx, "propertyCount", nil, &n); err != nil {
		return 0, fmt.Errorf("%w: property count: %w", ErrLookupFailed, err)
	}
	return n, nil
}

// SupportsMethod checks method against the gateway's `contract_methods` listing.
func (c *ContractClient) SupportsMethod(ctx context.Context, method string) (bool, error) {
	var methods []string
	if err := c.rpc.Call(ctx, "contract_methods", nil, &methods); err != nil {
		return false, fmt.Errorf("%w: contract methods: %w", ErrLookupFailed, err)
	}
	for _, m := range methods {
		if m == method {
			return true, nil
		}
	}
	return false, nil
}

// ShareCount pairs a shareholder address with its share count.
type ShareCount struct {
	Address string
	Shares  uint64
}

// Shareholders returns every shareholder of property id with its share
// count, in the order the contract lists them. Share counts are fetched
// concurrently.
func Shareholders(ctx context.Context, r ContractReader, id uint64) ([]ShareCount, error) {
	addrs, err := r.GetPropertyShareholders(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]ShareCount, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxShareLookups)
	for i, addr := range addrs {
		g.Go(func() error {
			n, err := r.GetPropertyShares(gctx, id, addr)
			if err != nil {
				return err
			}
			out[i] = ShareCount{Address: addr, Shares: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
