package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stockpeek/edge-gateway/internal/models"
)

const cacheKeyPrefix = "edge:cache:"

type CacheStorage struct {
	client *redis.Client
}

func NewCacheStorage(client *redis.Client) *CacheStorage {
	return &CacheStorage{client: client}
}

func (s *CacheStorage) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	data, err := s.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("cache entry decode: %w", err)
	}
	return &entry, nil
}

// Set stores the entry with an eviction TTL covering both the fresh
// and the stale window.
func (s *CacheStorage) Set(ctx context.Context, key string, entry models.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache entry encode: %w", err)
	}
	if err := s.client.Set(ctx, cacheKeyPrefix+key, data, entry.Lifetime()).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
