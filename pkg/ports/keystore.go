package ports

import (
	"context"
	"errors"
)

var (
	// ErrKeySize is returned when a stored key does not have the requested length.
	ErrKeySize = errors.New("stored key has unexpected size")
	// ErrKeyName is returned for an empty key name.
	ErrKeyName = errors.New("key name must not be empty")
)

// KeyStore holds named secret keys (e.g. the CSRF signing key).
// Replicas sharing a KeyStore sign and verify with the same material.
type KeyStore interface {
	// LoadOrCreate returns the key stored under name, or atomically stores
	// and returns a new random key of size bytes if none exists.
	// Concurrent callers must all observe the same key.
	LoadOrCreate(ctx context.Context, name string, size int) ([]byte, error)
}
