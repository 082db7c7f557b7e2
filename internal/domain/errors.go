package domain

import "errors"

// Domain errors (no external dependencies).
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("duplicate resource")
	ErrConflict     = errors.New("conflict with current state")

	// Pipeline error taxonomy. Serialization failures after a successful
	// validation are invariant violations; crypto and encoding failures are
	// recoverable at the caller and must never be masked by placeholder
	// artifacts.
	ErrSerialization = errors.New("invoice serialization failed")
	ErrCrypto        = errors.New("signing unavailable")
	ErrEncoding      = errors.New("qr encoding failed")
)
