package market

import (
	"context"
	"time"

	"github.com/bitfsorg/estateshare-go/rental"
)

// TenantRental is a tenant's rental together with its status.
type TenantRental struct {
	Rental rental.Record `json:"rental"`
	Status rental.Status `json:"status"`
}

// MyRentals returns the rentals recorded for tenant, ordered by property.
func MyRentals(ctx context.Context, store rental.Store, tenant string, now time.Time) ([]TenantRental, error) {
	all, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	mine := rental.ByTenant(all, tenant)
	out := make([]TenantRental, len(mine))
	for i, r := range mine {
		out[i] = TenantRental{Rental: r, Status: r.Status(now.Unix())}
	}
	return out, nil
}
