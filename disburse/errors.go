package disburse

import (
	"errors"
	"fmt"

	"github.com/bitfsorg/estateshare-go/revshare"
)

var (
	// ErrPartialDisbursement matches any *PartialDisbursementError.
	ErrPartialDisbursement = errors.New("disburse: partial disbursement")

	// ErrNilPlan indicates Execute was called without a plan.
	ErrNilPlan = errors.New("disburse: nil plan")

	// ErrNoPayer indicates an empty payer account.
	ErrNoPayer = errors.New("disburse: payer account is required")
)

// PartialDisbursementError reports a transfer that failed after zero or
// more earlier transfers had already been settled. Settled transfers are
// not reversed. Plan holds the stopped plan; passing it to Execute or
// Resume sends only the transfers that have not settled.
type PartialDisbursementError struct {
	Succeeded   []TransferResult
	FailedIndex int
	Failed      revshare.RentAllocation
	Cause       error
	Plan        *Plan
}

func (e *PartialDisbursementError) Error() string {
	return fmt.Sprintf("disburse: transfer %d to %s failed after %d succeeded: %v",
		e.FailedIndex, e.Failed.Address, len(e.Succeeded), e.Cause)
}

// Unwrap returns the ledger error that stopped the disbursement.
func (e *PartialDisbursementError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrPartialDisbursement.
func (e *PartialDisbursementError) Is(target error) bool {
	return target == ErrPartialDisbursement
}
