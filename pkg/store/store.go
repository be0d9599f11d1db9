// Package store is the durable key-value layer behind the moderation engine.
//
// Every record is read and written whole. Backends guarantee that a Save which
// returned nil is durable, and that a crash mid-write leaves the previous
// record intact.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/logger"
)

// ErrNotFound is returned by Load when no record exists for the key.
var ErrNotFound = errors.New("store: record not found")

// CorruptRecordError is returned by Load when the stored bytes cannot be decoded.
type CorruptRecordError struct {
	Key string
	Err error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("store: record %q is corrupt: %v", e.Key, e.Err)
}

func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}

// Store loads and saves whole records by key.
type Store interface {
	// Load decodes the record stored under key into dst.
	Load(ctx context.Context, key string, dst interface{}) error
	// Save overwrites the record stored under key.
	Save(ctx context.Context, key string, value interface{}) error
}

// LoadOrDefault loads key into a fresh T. A missing or unreadable record
// yields the zero T; only the unreadable case is logged. Any other error
// (backend down) is returned together with the zero T.
func LoadOrDefault[T any](ctx context.Context, s Store, key string) (T, error) {
	var value T
	err := s.Load(ctx, key, &value)

	var corrupt *CorruptRecordError
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, ErrNotFound):
		var zero T
		return zero, nil
	case errors.As(err, &corrupt):
		logger.Warn(fmt.Sprintf("Registro '%s' ilegible, usando valores por defecto: %v", key, corrupt.Err), "Store")
		var zero T
		return zero, nil
	default:
		var zero T
		return zero, err
	}
}
