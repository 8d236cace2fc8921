package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/navbryce/next-social-be/model"
	"github.com/redis/go-redis/v9"
)

// PostCache holds enriched posts keyed by id. A miss is (nil, nil).
type PostCache interface {
	Get(ctx context.Context, id int64) (*model.Post, error)
	Set(ctx context.Context, post *model.Post) error
	Evict(ctx context.Context, id int64) error
}

func PostKey(id int64) string {
	return fmt.Sprintf("post-%d", id)
}

type RedisPostCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPostCache caches entries for ttl; zero keeps them until evicted.
func NewRedisPostCache(client *redis.Client, ttl time.Duration) *RedisPostCache {
	return &RedisPostCache{client: client, ttl: ttl}
}

func (rpc *RedisPostCache) Get(ctx context.Context, id int64) (*model.Post, error) {
	data, err := rpc.client.Get(ctx, PostKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var post model.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("corrupt cache entry %v: %w", PostKey(id), err)
	}
	return &post, nil
}

func (rpc *RedisPostCache) Set(ctx context.Context, post *model.Post) error {
	data, err := json.Marshal(post)
	if err != nil {
		return err
	}
	return rpc.client.Set(ctx, PostKey(post.Id), data, rpc.ttl).Err()
}

func (rpc *RedisPostCache) Evict(ctx context.Context, id int64) error {
	return rpc.client.Del(ctx, PostKey(id)).Err()
}

// MemoryPostCache is a process-local PostCache without expiry.
type MemoryPostCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryPostCache() *MemoryPostCache {
	return &MemoryPostCache{entries: make(map[string][]byte)}
}

func (mpc *MemoryPostCache) Get(ctx context.Context, id int64) (*model.Post, error) {
	mpc.mu.RLock()
	data, ok := mpc.entries[PostKey(id)]
	mpc.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var post model.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (mpc *MemoryPostCache) Set(ctx context.Context, post *model.Post) error {
	data, err := json.Marshal(post)
	if err != nil {
		return err
	}
	mpc.mu.Lock()
	defer mpc.mu.Unlock()
	mpc.entries[PostKey(post.Id)] = data
	return nil
}

func (mpc *MemoryPostCache) Evict(ctx context.Context, id int64) error {
	mpc.mu.Lock()
	defer mpc.mu.Unlock()
	delete(mpc.entries, PostKey(id))
	return nil
}

func (mpc *MemoryPostCache) Has(id int64) bool {
	mpc.mu.RLock()
	defer mpc.mu.RUnlock()
	_, ok := mpc.entries[PostKey(id)]
	return ok
}
