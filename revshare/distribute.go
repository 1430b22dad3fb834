package revshare

import (
	"fmt"
	"math/big"
)

// Allocate splits totalPayment across shareholders pro rata to their share
// counts. Each amount is floor(totalPayment * shares / totalShares); the
// truncation remainder is not assigned to anyone (see Remainder).
// Shareholders with zero shares are left out. Output order follows input order.
func Allocate(totalPayment *big.Int, shares []ShareholderShare) ([]RentAllocation, error) {
	if totalPayment == nil || totalPayment.Sign() < 0 {
		return nil, ErrInvalidPayment
	}

	seen := make(map[string]struct{}, len(shares))
	for _, s := range shares {
		if _, dup := seen[s.Address]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateShareholder, s.Address)
		}
		seen[s.Address] = struct{}{}
	}

	totalShares := TotalShares(shares)
	if totalShares.Sign() == 0 {
		return nil, ErrNoShareholders
	}

	allocations := make([]RentAllocation, 0, len(shares))
	if totalPayment.Sign() == 0 {
		return allocations, nil
	}

	for _, s := range shares {
		if s.Shares == 0 {
			continue
		}
		amount := new(big.Int).Mul(totalPayment, new(big.Int).SetUint64(s.Shares))
		amount.Quo(amount, totalShares)
		allocations = append(allocations, RentAllocation{Address: s.Address, Amount: amount})
	}

	return allocations, nil
}

// Remainder returns the part of totalPayment that the allocations leave
// untransferred. It is always smaller than the number of allocations.
func Remainder(totalPayment *big.Int, allocs []RentAllocation) *big.Int {
	return new(big.Int).Sub(totalPayment, Sum(allocs))
}
