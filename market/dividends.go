package market

import (
	"context"
	"fmt"
	"math/big"

	"github.com/bitfsorg/estateshare-go/network"
	"github.com/bitfsorg/estateshare-go/revshare"
)

// DistributeDividends asks the contract to split amount among the
// shareholders of propertyID. Only the property owner may distribute and
// at least one share must have been sold.
func DistributeDividends(ctx context.Context, sess Session, ledger network.Ledger, propertyID uint64, amount *big.Int) (*network.Receipt, error) {
	if err := sess.validate(); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidPayment
	}

	p, err := sess.Contract.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !sameAccount(sess.Account, p.Owner) {
		return nil, fmt.Errorf("%w: property %d is owned by %s", ErrNotOwner, propertyID, p.Owner)
	}
	if p.SoldShares() == 0 {
		return nil, fmt.Errorf("%w: property %d", ErrNoSoldShares, propertyID)
	}
	holders, err := sess.Contract.GetPropertyShareholders(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShareholderLookup, err)
	}
	if len(holders) == 0 {
		return nil, fmt.Errorf("%w: property %d", revshare.ErrNoShareholders, propertyID)
	}

	return ledger.Send(ctx, "distributeDividends", []interface{}{propertyID},
		network.SendOpts{From: sess.Account, Value: amount})
}
