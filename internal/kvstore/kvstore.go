// Package kvstore provides the key/value store the multi-level cache uses
// as its L2 backing store: get, setex, delete, keys-by-pattern, ping.
// Adapted from pkg/redis/client.go, trimmed to the subset this module needs
// (no hash operations, no whole-DB flush) and renamed to match this core's
// own contract rather than the reference RAG service's.
package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// Store is the KV contract internal/cache depends on.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	Ping(ctx context.Context) error
	Close()
}

// Client implements Store using rueidis.
type Client struct {
	client rueidis.Client
}

// Options configures a Client.
type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
}

var _ Store = (*Client)(nil)

// New builds a Client connected to a single Redis-compatible node.
func New(opts Options) (*Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%d", opts.Host, opts.Port)},
		Password:    opts.Password,
		SelectDB:    opts.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: failed to create client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() { c.client.Close() }

func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	var cmd rueidis.Completed
	if ttl > 0 {
		cmd = c.client.B().Set().Key(key).Value(value).ExSeconds(int64(ttl.Seconds())).Build()
	} else {
		cmd = c.client.B().Set().Key(key).Value(value).Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

// Get returns (value, found, error). A missing key is (\"\", false, nil),
// not an error.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	cmd := c.client.B().Get().Key(key).Build()
	result := c.client.Do(ctx, cmd)
	if result.Error() != nil {
		if rueidis.IsRedisNil(result.Error()) {
			return "", false, nil
		}
		return "", false, result.Error()
	}
	value, err := result.ToString()
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	cmd := c.client.B().Del().Key(keys...).Build()
	return c.client.Do(ctx, cmd).Error()
}

func (c *Client) Keys(ctx context.Context, pattern string) ([]string, error) {
	cmd := c.client.B().Keys().Pattern(pattern).Build()
	result := c.client.Do(ctx, cmd)
	if result.Error() != nil {
		return nil, result.Error()
	}
	return result.AsStrSlice()
}

func (c *Client) Ping(ctx context.Context) error {
	cmd := c.client.B().Ping().Build()
	return c.client.Do(ctx, cmd).Error()
}
