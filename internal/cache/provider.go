// Package cache stores encoded triage results. Rankings and playbooks are
// deterministic, so a cached entry is always equal to a fresh computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Provider defines the minimal cache operations needed by the service.
type Provider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

// ErrCacheMiss signals that a cache key was not found.
var ErrCacheMiss = errors.New("cache miss")

// Config selects and configures a Provider.
type Config struct {
	Enabled  bool
	Backend  string
	Capacity uint64
	Redis    RedisConfig
}

// New builds the provider described by cfg. A disabled cache yields NoopProvider.
func New(cfg Config) (Provider, error) {
	if !cfg.Enabled {
		return NoopProvider{}, nil
	}
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryProvider(cfg.Capacity), nil
	case "redis":
		return NewRedisProvider(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Key derives a stable cache key from a namespace and the JSON encoding of request.
func Key(namespace string, request any) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := sha256.Sum256(payload)
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}

// NoopProvider implements Provider but never stores data.
type NoopProvider struct{}

// Get always returns ErrCacheMiss.
func (NoopProvider) Get(context.Context, string) ([]byte, error) {
	return nil, ErrCacheMiss
}

// Set discards the value and returns nil.
func (NoopProvider) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

// Del is a no-op for the noop cache.
func (NoopProvider) Del(context.Context, string) error { return nil }

// Close is a no-op.
func (NoopProvider) Close() error { return nil }
