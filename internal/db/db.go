// Package db declares the cache-store contracts consumed by the repositories.
package db

import (
	"context"
	"time"
)

// Store is the facade implemented by the Redis backend.
type Store interface {
	Pinger
	KVStore
	CounterStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides byte-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// CounterStore provides integer counters that expire with their window.
type CounterStore interface {
	// IncrBy adds val to key and, if the key has no expiry yet, sets ttl.
	// It returns the value after the increment.
	IncrBy(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
}
