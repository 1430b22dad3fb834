package network

import "errors"

var (
	// ErrNoEndpoint indicates no usable gateway URL was configured.
	ErrNoEndpoint = errors.New("network: no gateway endpoint")

	// ErrConnectionFailed indicates the client could not connect to the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrBroadcastRejected indicates the node rejected the broadcast transaction.
	ErrBroadcastRejected = errors.New("network: broadcast rejected")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrTransferFailed indicates a value transfer was not accepted by the ledger.
	ErrTransferFailed = errors.New("network: transfer failed")

	// ErrLookupFailed indicates a contract read could not be served.
	ErrLookupFailed = errors.New("network: contract lookup failed")

	// ErrAmountOverflow indicates an amount does not fit the ledger's native unit.
	ErrAmountOverflow = errors.New("network: amount exceeds native unit range")

	// ErrUnknownAccount indicates no signing key is held for the sending account.
	ErrUnknownAccount = errors.New("network: no signing key for account")
)
