package market

import (
	"context"
	"math/big"
)

// DashboardStats summarises an account's position across all properties.
type DashboardStats struct {
	TotalInvestment   *big.Int `json:"totalInvestment"`
	PropertiesOwned   int      `json:"propertiesOwned"`
	ActiveInvestments int      `json:"activeInvestments"`
}

// Dashboard walks properties 1..PropertyCount and totals the account's
// holdings at each property's share price.
func Dashboard(ctx context.Context, sess Session) (*DashboardStats, error) {
	if err := sess.validate(); err != nil {
		return nil, err
	}
	count, err := sess.Contract.PropertyCount(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{TotalInvestment: new(big.Int)}
	for id := uint64(1); id <= count; id++ {
		p, err := sess.Contract.GetProperty(ctx, id)
		if err != nil {
			return nil, err
		}
		shares, err := sess.Contract.GetPropertyShares(ctx, id, sess.Account)
		if err != nil {
			return nil, err
		}
		if shares > 0 {
			stats.ActiveInvestments++
			value := new(big.Int).Mul(p.PricePerShare, new(big.Int).SetUint64(shares))
			stats.TotalInvestment.Add(stats.TotalInvestment, value)
		}
		if sameAccount(sess.Account, p.Owner) {
			stats.PropertiesOwned++
		}
	}
	return stats, nil
}
