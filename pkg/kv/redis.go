package kv

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	// URL is the connection string, e.g. "redis://localhost:6379/0".
	URL string
	// Prefix namespaces every key written by the store.
	Prefix         string
	ConnectTimeout time.Duration
}

// RedisStore keeps entries in Redis under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: client, prefix: opts.Prefix}, nil
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

func (s *RedisStore) Add(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	ok, err := s.client.SetNX(ctx, s.key(key), value, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrKeyExists, key)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Update(ctx context.Context, key, value string) error {
	ok, err := s.client.SetXX(ctx, s.key(key), value, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("redis setxx %s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return nil
}

func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, globEscape(s.prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		k, ok := strings.CutPrefix(iter.Val(), s.prefix)
		if ok {
			keys = append(keys, k)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	// SCAN may report a key more than once.
	sort.Strings(keys)
	return slices.Compact(keys), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// globEscape quotes the characters SCAN MATCH treats as pattern syntax.
func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
