package revshare

import "errors"

var (
	// ErrNoShareholders indicates the shareholder set holds zero shares in total.
	ErrNoShareholders = errors.New("revshare: no shareholders with a positive share count")

	// ErrInvalidPayment indicates the payment amount is nil or negative.
	ErrInvalidPayment = errors.New("revshare: payment must be a non-negative amount")

	// ErrDuplicateShareholder indicates an address appears more than once.
	ErrDuplicateShareholder = errors.New("revshare: duplicate shareholder address")

	// ErrAllocationMismatch indicates an allocation set does not match the recomputed split.
	ErrAllocationMismatch = errors.New("revshare: allocation does not match shareholder proportions")
)
