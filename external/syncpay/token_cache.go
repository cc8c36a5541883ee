package syncpay

import (
	"sync"
	"time"
)

// TokenCache holds the provider access token between calls. Implementations
// must be safe for concurrent use; the client consults the cache before every
// authenticated request and stores refreshed tokens back.
type TokenCache interface {
	Get(now time.Time) (string, bool)
	Set(token string, expiresAt time.Time)
	Clear()
}

// MemoryTokenCache is the default process-wide TokenCache.
type MemoryTokenCache struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{}
}

func (c *MemoryTokenCache) Get(now time.Time) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == "" || !c.expiresAt.After(now) {
		return "", false
	}

	return c.token, true
}

func (c *MemoryTokenCache) Set(token string, expiresAt time.Time) {
	c.mu.Lock()
	c.token = token
	c.expiresAt = expiresAt
	c.mu.Unlock()
}

func (c *MemoryTokenCache) Clear() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}
