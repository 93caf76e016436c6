package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stage is the fast tier in front of the blob store. A miss is (nil, false, nil).
type Stage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryStage keeps staged artifacts in process memory.
type MemoryStage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryStage() *MemoryStage {
	return &MemoryStage{items: make(map[string][]byte)}
}

func (m *MemoryStage) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *MemoryStage) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// RedisStage shares staged artifacts between processes with a TTL.
type RedisStage struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStage(client *redis.Client, ttl time.Duration) *RedisStage {
	if client == nil {
		panic("cache: redis client cannot be nil")
	}
	return &RedisStage{redis: client, ttl: ttl}
}

func (s *RedisStage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.redis.Get(ctx, stageKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: failed to load staged %s: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisStage) Set(ctx context.Context, key string, data []byte) error {
	if err := s.redis.Set(ctx, stageKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: failed to stage %s: %w", key, err)
	}
	return nil
}

func (s *RedisStage) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, stageKey(key)).Err(); err != nil {
		return fmt.Errorf("cache: failed to drop staged %s: %w", key, err)
	}
	return nil
}

func stageKey(key string) string {
	return fmt.Sprintf("callquality:stage:%s", key)
}
