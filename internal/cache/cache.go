// Package cache stores fetched diaries between requests, either in process
// memory or in Valkey.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Cache is a string key-value store with per-entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, val string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GetJSON decodes the value at key into dst. A missing or undecodable value
// reports false.
func GetJSON(ctx context.Context, c Cache, key string, dst any) bool {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

// SetJSON encodes val and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, val any, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, string(raw), ttl)
}

// InMemory is a process-local Cache. Expired entries are dropped lazily on
// read.
type InMemory struct {
	mu   sync.RWMutex
	data map[string]item
	now  func() time.Time
}

type item struct {
	val string
	exp time.Time
}

// NewInMemory returns an empty in-process cache.
func NewInMemory() *InMemory {
	return &InMemory{data: make(map[string]item), now: time.Now}
}

// Get returns the live value stored under key.
func (c *InMemory) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	it, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !it.exp.IsZero() && c.now().After(it.exp) {
		c.mu.Lock()
		if cur, still := c.data[key]; still && cur.exp.Equal(it.exp) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return "", false
	}
	return it.val, true
}

// Set stores val under key. A non-positive ttl never expires.
func (c *InMemory) Set(_ context.Context, key string, val string, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.data[key] = item{val: val, exp: exp}
	c.mu.Unlock()
	return nil
}

// Delete removes key.
func (c *InMemory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}
