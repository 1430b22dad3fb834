package revshare

import (
	"fmt"
	"math/big"
)

// ValidateAllocation checks that allocs is exactly what Allocate produces
// for the given payment and shareholder set.
func ValidateAllocation(allocs []RentAllocation, totalPayment *big.Int, shares []ShareholderShare) error {
	expected, err := Allocate(totalPayment, shares)
	if err != nil {
		return err
	}

	if len(allocs) != len(expected) {
		return fmt.Errorf("%w: allocation count %d != expected %d", ErrAllocationMismatch, len(allocs), len(expected))
	}

	for i := range allocs {
		if allocs[i].Address != expected[i].Address {
			return fmt.Errorf("%w: entry %d: address mismatch", ErrAllocationMismatch, i)
		}
		if allocs[i].Amount == nil || allocs[i].Amount.Cmp(expected[i].Amount) != 0 {
			return fmt.Errorf("%w: entry %d: amount %v != expected %s", ErrAllocationMismatch, i, allocs[i].Amount, expected[i].Amount)
		}
	}
	return nil
}
