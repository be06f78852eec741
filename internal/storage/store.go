// Package storage provides the key/value collaborator the vault persists into.
// Every backend guarantees single-key atomicity and nothing more.
package storage

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get for a missing key
var ErrNotFound = errors.New("key not found")

// Store is a best-effort key/value store
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
