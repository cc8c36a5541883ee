package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrInsufficientCredits   = errors.New("insufficient credits")
	// ErrPersistence marks a storage write that failed after the external
	// side effect already happened. Callers must not silently drop it.
	ErrPersistence = errors.New("persistence failure after side effect")
)
