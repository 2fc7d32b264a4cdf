package cache

import (
	"context"
	"fmt"
	"time"

	valkey "github.com/valkey-io/valkey-go"
)

// Valkey implements Cache on a Valkey (or Redis) server. Keys are namespaced
// under prefix.
type Valkey struct {
	c      valkey.Client
	prefix string
}

// NewValkey connects to addr. The connection is checked with a PING.
func NewValkey(ctx context.Context, addr, password, prefix string) (*Valkey, error) {
	opts := valkey.ClientOption{InitAddress: []string{addr}}
	if password != "" {
		opts.Username = "default"
		opts.Password = password
	}
	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("connect valkey %s: %w", addr, err)
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey %s: %w", addr, err)
	}
	return &Valkey{c: client, prefix: prefix}, nil
}

// Get returns the value under key. Misses and server errors both report false.
func (v *Valkey) Get(ctx context.Context, key string) (string, bool) {
	str, err := v.c.Do(ctx, v.c.B().Get().Key(v.prefix+key).Build()).ToString()
	if err != nil {
		return "", false
	}
	return str, true
}

// Set stores val under key with a whole-second expiry when ttl is positive.
func (v *Valkey) Set(ctx context.Context, key string, val string, ttl time.Duration) error {
	if ttl > 0 {
		return v.c.Do(ctx, v.c.B().Set().Key(v.prefix+key).Value(val).ExSeconds(int64(ttl/time.Second)).Build()).Error()
	}
	return v.c.Do(ctx, v.c.B().Set().Key(v.prefix+key).Value(val).Build()).Error()
}

// Delete removes key.
func (v *Valkey) Delete(ctx context.Context, key string) error {
	return v.c.Do(ctx, v.c.B().Del().Key(v.prefix+key).Build()).Error()
}

// Close releases the underlying connections.
func (v *Valkey) Close() {
	v.c.Close()
}
