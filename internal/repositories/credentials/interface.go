package credentials

import "context"

// Repository is the named-secret store for auth credentials (access, id and
// refresh tokens), read and written by key name. A missing key reads as an
// empty string, not an error.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error

	// Clear removes every stored secret (logout).
	Clear(ctx context.Context) error
}
