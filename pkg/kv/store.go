// Package kv holds the string key-value store served next to the graphs.
package kv

import (
	"context"
	"errors"
	"time"
)

var (
	ErrKeyExists   = errors.New("key already exists")
	ErrKeyNotFound = errors.New("key not found")
	ErrInvalidKey  = errors.New("invalid key")
)

// Store is a string key-value store.
type Store interface {
	// Add stores value under a new key. A positive ttl expires the entry.
	Add(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	// Update replaces the value of an existing key, keeping its expiry.
	Update(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Keys lists live keys in ascending order.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

func checkKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
