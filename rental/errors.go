package rental

import "errors"

var (
	// ErrStoreWrite indicates a rental record could not be persisted.
	ErrStoreWrite = errors.New("rental: store write failed")

	// ErrStoreRead indicates a rental record could not be loaded.
	ErrStoreRead = errors.New("rental: store read failed")

	// ErrCorruptRecord indicates a stored value is not a valid rental record.
	ErrCorruptRecord = errors.New("rental: corrupt record")

	// ErrRentalActive indicates a conditional write found a rental that has not yet expired.
	ErrRentalActive = errors.New("rental: property has an active rental")
)
