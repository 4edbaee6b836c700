package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lms-platform/lms-backend/internal/db/models"
)

// Cache stores domain lookup results. A found entry with a nil organization is a
// cached miss.
type Cache interface {
	Get(ctx context.Context, key string) (org *models.Organization, found bool, err error)
	Set(ctx context.Context, key string, org *models.Organization, ttl time.Duration) error
}

type cacheEntry struct {
	Org *models.Organization `json:"org"`
}

// RedisCache keeps lookup results in Redis so every replica shares them.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache creates a Redis-backed cache
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.Organization, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read tenant cache: %w", err)
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("failed to decode tenant cache entry: %w", err)
	}
	return entry.Org, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, org *models.Organization, ttl time.Duration) error {
	raw, err := json.Marshal(cacheEntry{Org: org})
	if err != nil {
		return fmt.Errorf("failed to encode tenant cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write tenant cache: %w", err)
	}
	return nil
}

// MemoryCache is a process-local cache used when Redis is not configured.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

type memoryEntry struct {
	org       *models.Organization
	expiresAt time.Time
}

// NewMemoryCache creates a cache holding at most maxEntries results.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*models.Organization, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return copyOrganization(e.org), true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, org *models.Organization, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked(now)
	}
	c.entries[key] = memoryEntry{org: copyOrganization(org), expiresAt: now.Add(ttl)}
	return nil
}

// evictLocked drops expired entries, then the entry closest to expiry if still full.
func (c *MemoryCache) evictLocked(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			continue
		}
		if oldestKey == "" || e.expiresAt.Before(oldest) {
			oldestKey, oldest = k, e.expiresAt
		}
	}
	if len(c.entries) >= c.maxEntries && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func copyOrganization(org *models.Organization) *models.Organization {
	if org == nil {
		return nil
	}
	cp := *org
	return &cp
}
