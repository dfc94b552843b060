// Package memory provides in-memory cache repository implementation
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pantrypairing/server/internal/ports/outbound"
)

// DefaultTTL applies when Set is called with a zero TTL.
const DefaultTTL = 24 * time.Hour

// CacheItem represents a cached item
type CacheItem struct {
	Value     []byte
	ExpiresAt time.Time
}

// CacheRepository implements outbound.CacheRepository in process memory
type CacheRepository struct {
	data  map[string]CacheItem
	mutex sync.RWMutex
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new in-memory cache repository. Expired items
// are purged every cleanupInterval until Close is called.
func NewCacheRepository(cleanupInterval time.Duration) *CacheRepository {
	repo := &CacheRepository{
		data: make(map[string]CacheItem),
		now:  time.Now,
		stop: make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go repo.cleanup(cleanupInterval)
	}

	return repo
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mutex.RLock()
	item, exists := r.data[key]
	r.mutex.RUnlock()

	if !exists || !r.now().Before(item.ExpiresAt) {
		return nil, outbound.ErrCacheMiss
	}

	return append([]byte(nil), item.Value...), nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.data[key] = CacheItem{
		Value:     append([]byte(nil), value...),
		ExpiresAt: r.now().Add(ttl),
	}

	return nil
}

// Delete removes a key from cache
func (r *CacheRepository) Delete(_ context.Context, key string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.data, key)
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(_ context.Context, key string) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	item, exists := r.data[key]
	return exists && r.now().Before(item.ExpiresAt), nil
}

// Len returns the number of stored items, expired or not.
func (r *CacheRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.data)
}

// Purge removes expired items and returns how many were removed.
func (r *CacheRepository) Purge() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()
	removed := 0
	for key, item := range r.data {
		if !now.Before(item.ExpiresAt) {
			delete(r.data, key)
			removed++
		}
	}
	return removed
}

// Close stops the cleanup goroutine.
func (r *CacheRepository) Close() error {
	r.stopOnce.Do(func() { close(r.stop) })
	return nil
}

// cleanup removes expired items
func (r *CacheRepository) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Purge()
		case <-r.stop:
			return
		}
	}
}
