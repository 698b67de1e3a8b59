package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisStore maps each collection onto a "<collection>:<key>" key space.
type RedisStore struct {
	client *redis.Client
}

// ConnectRedis constructs a RedisStore from a redis URL and verifies
// connectivity before returning.
func ConnectRedis(url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &RedisStore{client: c}, nil
}

var _ KV = (*RedisStore)(nil)

func redisKey(collection, key string) string {
	return collection + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, redisKey(collection, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return value, err
}

func (s *RedisStore) Put(ctx context.Context, collection, key string, value []byte) error {
	return s.client.Set(ctx, redisKey(collection, key), value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, collection, key string) error {
	return s.client.Del(ctx, redisKey(collection, key)).Err()
}

// Update retries fn under WATCH until the transaction commits without a
// conflicting write, giving per-key atomic read-modify-write.
func (s *RedisStore) Update(ctx context.Context, collection, key string, fn UpdateFunc) error {
	fullKey := redisKey(collection, key)

	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, fullKey).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, fullKey, next, 0)
			return nil
		})
		return err
	}

	for {
		err := s.client.Watch(ctx, txn, fullKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
}

func (s *RedisStore) Scan(ctx context.Context, collection string, fn ScanFunc) error {
	prefix := collection + ":"
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		fullKey := iter.Val()
		value, err := s.client.Get(ctx, fullKey).Bytes()
		if errors.Is(err, redis.Nil) {
			// deleted between SCAN and GET
			continue
		}
		if err != nil {
			return err
		}
		if err := fn(fullKey[len(prefix):], value); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
