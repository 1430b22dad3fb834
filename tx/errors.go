package tx

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("tx: required parameter is nil")

	// ErrInsufficientFunds indicates the inputs cannot cover the payment and its fee.
	ErrInsufficientFunds = errors.New("tx: insufficient funds")

	// ErrInvalidAddress indicates a recipient or change address cannot be parsed.
	ErrInvalidAddress = errors.New("tx: invalid address")

	// ErrInvalidAmount indicates a payment amount below the dust limit.
	ErrInvalidAmount = errors.New("tx: invalid payment amount")

	// ErrSigningFailed indicates transaction signing failed.
	ErrSigningFailed = errors.New("tx: signing failed")

	// ErrScriptBuild indicates script construction failed.
	ErrScriptBuild = errors.New("tx: script build failed")
)
