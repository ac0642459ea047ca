// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., handle taken
	// or a duplicate subscription edge).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidReference indicates an edge endpoint that does not resolve to a user.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrUpstream indicates a failure in an external collaborator (asset store).
	ErrUpstream = errors.New("upstream failure")
)
