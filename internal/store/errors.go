package store

import "errors"

var (
	// ErrNotFound is returned when a machine or maintenance item does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMachineMismatch is returned when an item belongs to a different machine
	// than the one named in the request.
	ErrMachineMismatch = errors.New("machine_id mismatch for item_id")
)
