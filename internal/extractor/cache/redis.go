package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"jobtrail-utils/internal/config"
	"jobtrail-utils/internal/logging"
	"jobtrail-utils/pkg/models"
)

// RedisStore keeps extraction results in Redis so they survive process
// restarts. Entries are written without a TTL; invalidation stays an
// explicit administrative action, same as the in-memory store.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	logger    logging.Logger
}

// NewRedisStore creates a Redis-backed result cache from configuration
func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	opts.DB = cfg.Redis.DB
	opts.DialTimeout = cfg.Redis.Timeout
	opts.ReadTimeout = cfg.Redis.Timeout
	opts.WriteTimeout = cfg.Redis.Timeout

	return &RedisStore{
		client:    redis.NewClient(opts),
		keyPrefix: cfg.Cache.KeyPrefix,
		logger:    logging.GetGlobalLogger(),
	}, nil
}

// Get returns the cached job for key. Backend errors are logged and
// reported as a miss so the caller falls through to a fresh extraction.
func (s *RedisStore) Get(ctx context.Context, key string) (*models.Job, bool) {
	payload, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Redis cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var job models.Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		s.logger.Warn("Redis cache entry is not valid JSON, dropping it", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		s.client.Del(ctx, s.keyPrefix+key)
		return nil, false
	}

	return &job, true
}

// Put upserts the job for key with no expiration
func (s *RedisStore) Put(ctx context.Context, key string, job *models.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.keyPrefix+key, payload, 0).Err()
}

// Delete removes the entry for key if present
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.keyPrefix+key).Err()
}

// Clear removes every entry under the cache key prefix
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Ping checks the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// New builds the configured cache backend, defaulting to memory
func New(cfg *config.Config) (Store, error) {
	if cfg.Cache.Backend == "redis" {
		store, err := NewRedisStore(cfg)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.Timeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	return NewMemoryStore(), nil
}
