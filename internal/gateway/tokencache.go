package gateway

import (
	"context"
	"sync"
	"time"
)

// TokenCache stores provider auth tokens with an explicit TTL.
type TokenCache interface {
	GetToken(ctx context.Context, key string) (string, bool, error)
	SetToken(ctx context.Context, key, token string, ttl time.Duration) error
	DeleteToken(ctx context.Context, key string) error
}

// MemoryTokenCache is a process-local TokenCache for single-instance runs and tests.
type MemoryTokenCache struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]cachedToken
}

type cachedToken struct {
	token   string
	expires time.Time
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{now: time.Now, items: make(map[string]cachedToken)}
}

func (c *MemoryTokenCache) GetToken(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[key]
	if !ok {
		return "", false, nil
	}
	if !c.now().Before(it.expires) {
		delete(c.items, key)
		return "", false, nil
	}
	return it.token, true, nil
}

func (c *MemoryTokenCache) SetToken(_ context.Context, key, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cachedToken{token: token, expires: c.now().Add(ttl)}
	return nil
}

func (c *MemoryTokenCache) DeleteToken(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}
