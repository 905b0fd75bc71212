package errors

import "errors"

// Common errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("resource not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Pendência errors
var (
	ErrPendenciaNotFound = errors.New("pendencia not found")
	ErrMissingID         = errors.New("pendencia id is required")
	ErrNothingToUpdate   = errors.New("no fields to update")
)

// Profissional errors
var (
	ErrNoDefaultProfissional = errors.New("no default profissional")
)

// Maintenance errors
var (
	ErrUnknownAction = errors.New("unknown maintenance action")
)
