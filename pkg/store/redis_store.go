package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

// RedisStore writes each record as a hash at <prefix><id>.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	closer func() error
}

// RedisConfig holds configuration for RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore wraps an existing client. The caller keeps ownership of it.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisStoreFromConfig dials lazily; the first Put opens the connection.
func NewRedisStoreFromConfig(cfg RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: -1, // WithRetry owns retries
	})
	s := NewRedisStore(rdb, cfg.Prefix)
	s.closer = rdb.Close
	return s
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Put issues a single HSET.
func (s *RedisStore) Put(ctx context.Context, rec contact.Record) error {
	err := s.client.HSet(ctx, s.key(rec.ID),
		"id", rec.ID,
		"firstName", rec.FirstName,
		"lastName", rec.LastName,
	).Err()
	if err != nil {
		return Classify(TypeRedis, fmt.Errorf("redis hset: %w", err), classifyRedis)
	}
	return nil
}

// Close closes the client when the store created it.
func (s *RedisStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// classifyRedis inspects every error in the chain. go-redis matches some
// server errors by message prefix only.
func classifyRedis(err error) (ErrorKind, bool) {
	if errors.Is(err, redis.ErrPoolTimeout) {
		return KindTimeout, true
	}
	if errors.Is(err, redis.ErrPoolExhausted) {
		return KindUnavailable, true
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch {
		case redis.IsAuthError(e), redis.IsPermissionError(e):
			return KindUnauthorized, true
		case redis.IsLoadingError(e), redis.IsReadOnlyError(e), redis.IsClusterDownError(e),
			redis.IsTryAgainError(e), redis.IsMasterDownError(e), redis.IsMaxClientsError(e),
			redis.IsOOMError(e):
			return KindUnavailable, true
		}
	}
	return KindUnknown, false
}
