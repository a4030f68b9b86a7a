// Package repository provides string key-value stores that persist user
// profiles and the active session pointer.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/arete/pkg/metrics"
)

// Store is a string key-value store. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound when absent.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Name returns the backend name used in metrics and stats.
	Name() string
	// Close releases backend resources.
	Close() error
}

// Operation labels for store metrics.
const (
	opGet    = "get"
	opSet    = "set"
	opDelete = "delete"
)

// observe records latency for one store call and counts failures other
// than a missing key.
func observe(backend, op string, start time.Time, err error) {
	metrics.RecordStoreLatency(backend, op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError(backend, op)
	}
}
