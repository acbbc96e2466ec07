package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"edu_social_client/pkg/database"
)

// MemoryStatusStore process local store
type MemoryStatusStore struct {
	mu      sync.RWMutex
	entries map[string]StatusEntry
}

// NewMemoryStatusStore create MemoryStatusStore
func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{entries: make(map[string]StatusEntry)}
}

func (s *MemoryStatusStore) Get(_ context.Context, key string) (StatusEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStatusStore) Set(_ context.Context, key string, entry StatusEntry, _ time.Duration) error {
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStatusStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	s.mu.Unlock()
	return nil
}

// Len number of stored entries
func (s *MemoryStatusStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RedisStatusStore store shared by client processes, redis expires the keys
type RedisStatusStore struct {
	repo database.RedisRepository[StatusEntry]
}

// NewRedisStatusStore create RedisStatusStore on repo
func NewRedisStatusStore(repo database.RedisRepository[StatusEntry]) *RedisStatusStore {
	return &RedisStatusStore{repo: repo}
}

func (s *RedisStatusStore) Get(ctx context.Context, key string) (StatusEntry, bool, error) {
	e, err := s.repo.Get(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return StatusEntry{}, false, nil
	}
	if err != nil {
		return StatusEntry{}, false, err
	}
	return e, true, nil
}

func (s *RedisStatusStore) Set(ctx context.Context, key string, entry StatusEntry, ttl time.Duration) error {
	return s.repo.Set(ctx, key, entry, ttl)
}

func (s *RedisStatusStore) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := s.repo.Del(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
