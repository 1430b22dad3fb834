package revshare

import "math/big"

// ShareholderShare is one shareholder's holding in a property.
type ShareholderShare struct {
	Address string // ledger account address
	Shares  uint64 // number of shares held
}

// RentAllocation is the computed cut of a payment for one shareholder.
type RentAllocation struct {
	Address string
	Amount  *big.Int // smallest currency unit
}

// TotalShares sums the share counts of all entries.
func TotalShares(shares []ShareholderShare) *big.Int {
	total := new(big.Int)
	for _, s := range shares {
		total.Add(total, new(big.Int).SetUint64(s.Shares))
	}
	return total
}

// Sum returns the total amount of a set of allocations.
func Sum(allocs []RentAllocation) *big.Int {
	sum := new(big.Int)
	for _, a := range allocs {
		if a.Amount != nil {
			sum.Add(sum, a.Amount)
		}
	}
	return sum
}
