package domain

import (
	"errors"

	shared "nathanbeddoewebdev/dropproxy/internal/domain"
)

// ErrInvalidRecord indicates a record that fails local checks (type or
// content) before any provider call.
var ErrInvalidRecord = errors.New("invalid dns record")

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = shared.ErrNotFound
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = shared.ErrUnauthorized
	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = shared.ErrRateLimited
	// ErrConflict indicates a state or uniqueness conflict.
	ErrConflict = shared.ErrConflict
)
