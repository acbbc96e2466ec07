package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"edu_social_client/pkg/logger"
	"edu_social_client/pkg/workerpool"

	"go.uber.org/zap"
)

// StatusAction per post boolean status kept in the cache
type StatusAction string

// cached actions
const (
	ActionLiked      StatusAction = "liked"
	ActionBookmarked StatusAction = "bookmarked"
)

// StatusKey dedup and cache key "{action}_{postId}"
func StatusKey(action StatusAction, postID int64) string {
	return fmt.Sprintf("%s_%d", action, postID)
}

// StatusEntry cached value and its expiry
type StatusEntry struct {
	Value     bool      `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid entry not expired at now
func (e StatusEntry) Valid(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// StatusStore entry storage, expiry is checked by StatusCache
type StatusStore interface {
	Get(ctx context.Context, key string) (StatusEntry, bool, error)
	Set(ctx context.Context, key string, entry StatusEntry, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// StatusFetcher authoritative lookup of one status
type StatusFetcher func(ctx context.Context, postID int64) (bool, error)

// StatusCache short TTL cache of liked/bookmarked flags.
//
// Reads never block on the network. A miss returns false and schedules one
// refresh per key; later reads see the refreshed value.
type StatusCache struct {
	store    StatusStore
	pool     *workerpool.Pool
	ttl      time.Duration
	now      func() time.Time
	fetchers map[StatusAction]StatusFetcher
	onUpdate func(postID int64)

	mu       sync.Mutex
	inflight map[string]struct{}
	// epoch is bumped by Set and Purge so a refresh started earlier can not overwrite them
	epoch map[string]uint64
}

// CacheOption StatusCache option
type CacheOption func(*StatusCache)

// WithCacheClock override time source
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *StatusCache) { c.now = now }
}

// WithStatusTTL entry lifetime
func WithStatusTTL(ttl time.Duration) CacheOption {
	return func(c *StatusCache) { c.ttl = ttl }
}

// WithStore replace the in-memory store
func WithStore(store StatusStore) CacheOption {
	return func(c *StatusCache) { c.store = store }
}

// OnStatusUpdate called after a refresh stored a value
func OnStatusUpdate(fn func(postID int64)) CacheOption {
	return func(c *StatusCache) { c.onUpdate = fn }
}

// NewStatusCache create StatusCache, refreshes run on pool
func NewStatusCache(pool *workerpool.Pool, liked, bookmarked StatusFetcher, opts ...CacheOption) *StatusCache {
	c := &StatusCache{
		store: NewMemoryStatusStore(),
		pool:  pool,
		ttl:   30 * time.Second,
		now:   time.Now,
		fetchers: map[StatusAction]StatusFetcher{
			ActionLiked:      liked,
			ActionBookmarked: bookmarked,
		},
		inflight: make(map[string]struct{}),
		epoch:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get cached value, false on miss or expiry with a background refresh
func (c *StatusCache) Get(ctx context.Context, action StatusAction, postID int64) bool {
	key := StatusKey(action, postID)
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.Log.Warn("status store read failed", zap.String("key", key), zap.Error(err))
	}
	if ok && entry.Valid(c.now()) {
		return entry.Value
	}
	c.refresh(ctx, action, postID)
	return false
}

// Preload schedule a refresh of every action for posts lacking a valid entry
func (c *StatusCache) Preload(ctx context.Context, postIDs ...int64) {
	for _, id := range postIDs {
		for action := range c.fetchers {
			if _, ok := c.Lookup(ctx, action, id); !ok {
				c.refresh(ctx, action, id)
			}
		}
	}
}

// Lookup cached value without scheduling a refresh
func (c *StatusCache) Lookup(ctx context.Context, action StatusAction, postID int64) (bool, bool) {
	entry, ok, err := c.store.Get(ctx, StatusKey(action, postID))
	if err != nil || !ok || !entry.Valid(c.now()) {
		return false, false
	}
	return entry.Value, true
}

// Set write an authoritative value, in-flight refreshes of the key are discarded
func (c *StatusCache) Set(ctx context.Context, action StatusAction, postID int64, value bool) {
	key := StatusKey(action, postID)
	c.mu.Lock()
	c.epoch[key]++
	c.mu.Unlock()
	if err := c.store.Set(ctx, key, StatusEntry{Value: value, ExpiresAt: c.now().Add(c.ttl)}, c.ttl); err != nil {
		logger.Log.Warn("status store write failed", zap.String("key", key), zap.Error(err))
	}
}

// Purge drop every entry of postID
func (c *StatusCache) Purge(ctx context.Context, postID int64) {
	keys := []string{StatusKey(ActionLiked, postID), StatusKey(ActionBookmarked, postID)}
	c.mu.Lock()
	for _, k := range keys {
		c.epoch[k]++
	}
	c.mu.Unlock()
	if err := c.store.Delete(ctx, keys...); err != nil {
		logger.Log.Warn("status store purge failed", zap.Int64("post_id", postID), zap.Error(err))
	}
}

// Inflight number of refreshes not finished
func (c *StatusCache) Inflight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

func (c *StatusCache) refresh(ctx context.Context, action StatusAction, postID int64) {
	fetch := c.fetchers[action]
	if fetch == nil {
		return
	}
	key := StatusKey(action, postID)

	c.mu.Lock()
	if _, busy := c.inflight[key]; busy {
		c.mu.Unlock()
		return
	}
	c.inflight[key] = struct{}{}
	epoch := c.epoch[key]
	c.mu.Unlock()

	// the caller's ctx may end before the refresh does
	bg := context.WithoutCancel(ctx)
	task := func() {
		defer c.release(key)
		value, err := fetch(bg, postID)

		c.mu.Lock()
		stale := c.epoch[key] != epoch
		c.mu.Unlock()
		if stale {
			return
		}
		if err != nil {
			logger.Log.Warn("status refresh failed", zap.String("key", key), zap.Error(err))
			if err := c.store.Delete(bg, key); err != nil {
				logger.Log.Warn("status store delete failed", zap.String("key", key), zap.Error(err))
			}
			return
		}
		if err := c.store.Set(bg, key, StatusEntry{Value: value, ExpiresAt: c.now().Add(c.ttl)}, c.ttl); err != nil {
			logger.Log.Warn("status store write failed", zap.String("key", key), zap.Error(err))
			return
		}
		if c.onUpdate != nil {
			c.onUpdate(postID)
		}
	}
	if !c.pool.TrySubmitWithDrop(task, func() { c.release(key) }) {
		logger.Log.Debug("status refresh skipped, pool saturated", zap.String("key", key))
		c.release(key)
	}
}

func (c *StatusCache) release(key string) {
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
}
