package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/pedrofarias/storefinder/internal/core/ports"
)

// Cache implements ports.CacheStore using Valkey (Redis-compatible).
type Cache struct {
	client valkey.Client
}

var _ ports.CacheStore = (*Cache)(nil)

// New creates a new Valkey cache client.
func New(addr string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Cache{client: client}, nil
}

// Get retrieves a value by key. Absent keys yield ports.ErrCacheMiss so
// callers can tell a miss from a broken store.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if err := cmd.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, ports.ErrCacheMiss
		}
		return nil, err
	}
	b, err := cmd.AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, ports.ErrCacheMiss
		}
		return nil, err
	}
	return b, nil
}

// Set stores a value with a TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := c.client.Do(ctx,
		c.client.B().Set().Key(key).Value(string(value)).Ex(ttl).Build(),
	)
	return cmd.Error()
}

// Delete removes a key. Deleting an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	cmd := c.client.Do(ctx, c.client.B().Del().Key(key).Build())
	if err := cmd.Error(); err != nil && !valkey.IsValkeyNil(err) {
		return err
	}
	return nil
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}
