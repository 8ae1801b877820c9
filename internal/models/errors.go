package models

import "errors"

// Error taxonomy shared by all services. Handlers map these to HTTP status
// codes; services wrap driver errors with ErrStoreFailure so callers never
// branch on sql/pq error types directly.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrConflict          = errors.New("conflict")
	ErrStoreFailure      = errors.New("store failure")
)
