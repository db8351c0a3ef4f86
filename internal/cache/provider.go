package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Provider stores opaque values under string keys with a time to live. The repository
// caches variants and mission profiles through it and the service caches project results.
type Provider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

// ErrCacheMiss is returned by Get when key holds no live value.
var ErrCacheMiss = errors.New("cache miss")

// NoopProvider is the Provider used when caching is disabled. Every Get misses.
type NoopProvider struct{}

func (NoopProvider) Get(context.Context, string) ([]byte, error)              { return nil, ErrCacheMiss }
func (NoopProvider) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NoopProvider) Del(context.Context, string) error                        { return nil }
func (NoopProvider) Close() error                                             { return nil }

// GetJSON decodes the cached value at key into dst. A miss returns ErrCacheMiss.
func GetJSON(ctx context.Context, p Provider, key string, dst any) error {
	raw, err := p.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, p Provider, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Set(ctx, key, raw, ttl)
}

// Key joins namespace and parts into a cache key. Parts are hashed when the joined
// form would exceed 200 bytes.
func Key(namespace string, parts ...string) string {
	joined := strings.Join(parts, ":")
	if len(joined) > 200 {
		sum := sha256.Sum256([]byte(joined))
		joined = hex.EncodeToString(sum[:])
	}
	return "fmeda:" + namespace + ":" + joined
}
