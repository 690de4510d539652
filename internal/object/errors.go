package object

import "errors"

var (
	// ErrDestroyed is returned by any operation on a destroyed record.
	// It signals a contract violation by the caller and must not be
	// swallowed; the frame loop terminates on it.
	ErrDestroyed = errors.New("object destroyed")

	// ErrNotFound is returned by Get for an unknown object name.
	ErrNotFound = errors.New("object not found")
)
