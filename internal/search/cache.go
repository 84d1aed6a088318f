// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// CachedBackend answers repeated queries from memory for a TTL. Errors are
// not cached.
type CachedBackend struct {
	Backend
	cache *cache.Cache
}

// NewCache creates a result cache shared by several CachedBackends.
func NewCache(ttl time.Duration) *cache.Cache {
	return cache.New(ttl, 2*ttl)
}

// NewCachedBackend wraps b with c.
func NewCachedBackend(b Backend, c *cache.Cache) *CachedBackend {
	return &CachedBackend{Backend: b, cache: c}
}

// Search returns cached references for an identical query, or delegates
// and stores the result.
func (c *CachedBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Reference, error) {
	key := cacheKey(c.Name(), query, cfg.MaxResults)
	if x, found := c.cache.Get(key); found {
		refs := x.([]types.Reference)
		return append([]types.Reference(nil), refs...), nil
	}

	refs, err := c.Backend.Search(ctx, query, cfg)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, append([]types.Reference(nil), refs...), cache.DefaultExpiration)
	return refs, nil
}

func cacheKey(backend string, q Query, limit int) string {
	return fmt.Sprintf("%s|%d|%s", backend, limit, strings.ToLower(q.Text()))
}
