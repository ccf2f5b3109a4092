package translate

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache memoizes translations in redis. Cache errors are swallowed:
// a miss or an unreachable redis just falls through to the backend.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps an existing redis client. ttl <= 0 defaults to 24h.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(text, source, target string) string {
	sum := sha1.Sum([]byte(text))
	return fmt.Sprintf("tr:%s:%s:%s", source, target, hex.EncodeToString(sum[:]))
}

func (c *Cache) Get(ctx context.Context, text, source, target string) (string, bool) {
	val, err := c.client.Get(ctx, cacheKey(text, source, target)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, text, source, target, translated string) {
	c.client.Set(ctx, cacheKey(text, source, target), translated, c.ttl)
}
