package domain

import "errors"

// Sentinel errors for cross-provider error classification.
// Providers wrap these so the workflow and the CLI can handle error
// categories uniformly without importing provider-specific SDKs.
//
//	return fmt.Errorf("failed to delete droplet: %w", domain.ErrNotFound)
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request was rejected due to
	// invalid, expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrConflict indicates a state or uniqueness conflict, such as
	// a duplicate record or an operation on a droplet in a
	// transitional state.
	ErrConflict = errors.New("conflict")

	// ErrUnreachable indicates a host refused or never answered a
	// connection attempt. Callers may retry it.
	ErrUnreachable = errors.New("host unreachable")
)
