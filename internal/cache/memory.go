package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryProvider is an in-process Provider with per-entry expiry.
type MemoryProvider struct {
	items *ttlcache.Cache[string, []byte]
}

// NewMemoryProvider starts an in-process cache bounded to capacity entries (0 = unbounded).
func NewMemoryProvider(capacity uint64) *MemoryProvider {
	opts := []ttlcache.Option[string, []byte]{ttlcache.WithDisableTouchOnHit[string, []byte]()}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](capacity))
	}
	items := ttlcache.New(opts...)
	go items.Start()
	return &MemoryProvider{items: items}
}

// Get returns a copy of the cached bytes or ErrCacheMiss.
func (p *MemoryProvider) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	item := p.items.Get(key)
	if item == nil || item.IsExpired() {
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), item.Value()...), nil
}

// Set stores a copy of value for ttl. A non-positive ttl never expires.
func (p *MemoryProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	p.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Del removes key.
func (p *MemoryProvider) Del(_ context.Context, key string) error {
	p.items.Delete(key)
	return nil
}

// Close stops the expiry loop.
func (p *MemoryProvider) Close() error {
	p.items.Stop()
	return nil
}
