// Package store provides durable persistence for the wardrobe session.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// KV is a minimal durable key/value medium.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetMany writes all entries in a single batch.
	SetMany(ctx context.Context, entries map[string][]byte) error

	// Delete removes the given keys in a single batch. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}
