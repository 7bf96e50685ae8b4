package rag

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type cacheItem struct {
	answer    *Answer
	expiresAt time.Time
}

// CachedRetriever wraps a Retriever with a TTL answer cache. Concurrent
// identical queries are collapsed into one upstream call via singleflight.
type CachedRetriever struct {
	mu     sync.RWMutex
	items  map[string]cacheItem
	inner  Retriever
	group  singleflight.Group
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedRetriever wraps inner with a cache holding answers for ttl.
func NewCachedRetriever(inner Retriever, ttl time.Duration, logger zerolog.Logger) *CachedRetriever {
	return &CachedRetriever{
		items:  make(map[string]cacheItem),
		inner:  inner,
		ttl:    ttl,
		logger: logger.With().Str("component", "retrieval-cache").Logger(),
	}
}

// Query answers from the cache when possible, otherwise fetches once per
// distinct in-flight query.
func (c *CachedRetriever) Query(ctx context.Context, text string) (*Answer, error) {
	key := strings.ToLower(strings.TrimSpace(text))

	if answer, ok := c.get(key); ok {
		c.logger.Debug().Str("key", key).Msg("cache hit")
		return answer, nil
	}

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have populated the cache while this
		// call waited its turn.
		if answer, ok := c.get(key); ok {
			return answer, nil
		}

		answer, err := c.inner.Query(ctx, text)
		if err != nil {
			return nil, err
		}

		c.set(key, answer)
		return answer, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*Answer), nil
}

func (c *CachedRetriever) get(key string) (*Answer, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return item.answer, true
}

func (c *CachedRetriever) set(key string, answer *Answer) {
	c.mu.Lock()
	c.items[key] = cacheItem{answer: answer, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}
