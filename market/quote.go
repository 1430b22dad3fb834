package market

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Quote is the price of renting a property for a number of years.
type Quote struct {
	PropertyID uint64   `json:"propertyId"`
	Years      int      `json:"years"`
	YearlyRent *big.Int `json:"yearlyRent"`
	Total      *big.Int `json:"total"`
}

// GetQuote prices a rental: the yearly rent is half the property's total
// value and the total is the yearly rent times years.
func GetQuote(ctx context.Context, sess Session, propertyID uint64, years int) (*Quote, error) {
	if years < MinDurationYears || years > MaxDurationYears {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, years)
	}
	if sess.Contract == nil {
		return nil, ErrNoContract
	}
	p, err := sess.Contract.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	yearly := new(big.Int).Quo(p.TotalValue, big.NewInt(2))
	return &Quote{
		PropertyID: propertyID,
		Years:      years,
		YearlyRent: yearly,
		Total:      new(big.Int).Mul(yearly, big.NewInt(int64(years))),
	}, nil
}

// Request turns q into a rental request for its total.
func (q *Quote) Request() RentRequest {
	return RentRequest{
		PropertyID:    q.PropertyID,
		DurationYears: q.Years,
		TotalPayment:  new(big.Int).Set(q.Total),
	}
}

// FormatAmount renders a base-unit amount as a decimal with the given
// number of fractional digits, e.g. wei with decimals=18 as ether.
func FormatAmount(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}

// ParseAmount converts a decimal string such as "1.5" into base units.
// Digits beyond decimals are rejected.
func ParseAmount(s string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPayment, s)
	}
	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidPayment, s, decimals)
	}
	return scaled.BigInt(), nil
}
