package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

type Cache struct {
	client    *redis.Client
	keyPrefix string
}

type Options struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type Option func(*Options)

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithPassword(pass string) Option {
	return func(o *Options) {
		o.Password = pass
	}
}

func WithDB(db int) Option {
	return func(o *Options) {
		o.DB = db
	}
}

// WithKeyPrefix namespaces every key, e.g. "evalify:".
func WithKeyPrefix(prefix string) Option {
	return func(o *Options) {
		o.KeyPrefix = prefix
	}
}

func New(ctx context.Context, opts ...Option) (*Cache, error) {
	options := &Options{
		Address:  "localhost:6379",
		Password: "",
		DB:       0,
	}

	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", options.Address, err)
	}

	return &Cache{client: client, keyPrefix: options.KeyPrefix}, nil
}

func (c *Cache) key(k string) string {
	return c.keyPrefix + k
}

// Get decodes the JSON value at key into dest, or returns ErrMiss.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	return json.Unmarshal(val, dest)
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, expiration).Err()
}

// Claim atomically sets key if absent with the given ttl. It reports true
// when this caller won the claim.
func (c *Cache) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, c.key(key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	return c.client.Del(ctx, prefixed...).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
