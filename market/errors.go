package market

import "errors"

var (
	// ErrInvalidProperty indicates a property id below 1.
	ErrInvalidProperty = errors.New("market: property id must be at least 1")

	// ErrInvalidDuration indicates a rental duration outside 1..10 years.
	ErrInvalidDuration = errors.New("market: rental duration must be between 1 and 10 years")

	// ErrInvalidPayment indicates a missing or non-positive payment.
	ErrInvalidPayment = errors.New("market: payment must be positive")

	// ErrShareholderLookup indicates the shareholder list could not be read.
	ErrShareholderLookup = errors.New("market: shareholder lookup failed")

	// ErrPropertyRented indicates the property already has a running rental.
	ErrPropertyRented = errors.New("market: property is already rented")

	// ErrNoAccount indicates the session carries no account.
	ErrNoAccount = errors.New("market: session has no account")

	// ErrNoContract indicates the session carries no contract reader.
	ErrNoContract = errors.New("market: session has no contract")

	// ErrNotOwner indicates the caller does not own the property.
	ErrNotOwner = errors.New("market: only the property owner can distribute dividends")

	// ErrNoSoldShares indicates no investor holds shares in the property.
	ErrNoSoldShares = errors.New("market: no shares have been purchased yet")

	// ErrUnknownMode indicates an unrecognised rental mode.
	ErrUnknownMode = errors.New("market: unknown rental mode")

	// ErrRentalRejected indicates the contract did not accept an on-chain rental.
	ErrRentalRejected = errors.New("market: rental rejected by contract")
)
