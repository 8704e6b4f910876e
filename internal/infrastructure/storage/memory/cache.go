package memory

import (
	"context"
	"sync"
	"time"

	"nvcompare/internal/application/port"
)

type entry struct {
	val       []byte
	expiresAt time.Time
}

// Cache is the in-process port.Cache used when Redis is disabled.
type Cache struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

func NewCache() *Cache {
	return &Cache{data: make(map[string]entry), now: time.Now}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.data, key)
		return nil, false, nil
	}
	return e.val, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := make([]byte, len(val))
	copy(cp, val)
	c.data[key] = entry{val: cp, expiresAt: c.now().Add(ttl)}
	return nil
}

var _ port.Cache = (*Cache)(nil)
