// Package common defines shared constants and sentinel errors used across the
// sync engine layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Connectivity: no network, sync/poll short-circuit without remote I/O.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// Credential-layer errors.
	//
	// ErrUnauthenticated: no access credential is stored at all.
	// ErrSessionExpired: the refresh credential is gone or definitively
	// rejected; the user has been logged out and must sign in again.
	// ErrReauthRequired: a refresh attempt failed non-definitively; the call
	// may succeed later once credentials are refreshed.
	ErrUnauthenticated = errors.New("not authenticated")
	ErrSessionExpired  = errors.New("session expired")
	ErrReauthRequired  = errors.New("reauthentication required")

	// Sync-run guard results.
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrSyncCooldown   = errors.New("sync cooldown active")
	ErrNoCurrentUser  = errors.New("no current user")
	ErrValidation     = errors.New("validation error")
)
