package search

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheEntry struct {
	coll    *Collection
	expires time.Time
}

type cached struct {
	next  Provider
	pages *lru.Cache[string, cacheEntry]
	now   func() time.Time
}

// Cached keeps up to size recently fetched pages. An entry lives for the
// CacheTimeout its source stamped on it; pages with no timeout are not stored.
func Cached(p Provider, size int) (Provider, error) {
	pages, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("page cache: %w", err)
	}
	return &cached{next: p, pages: pages, now: time.Now}, nil
}

func (c *cached) Name() string { return c.next.Name() }

func (c *cached) Search(ctx context.Context, req PageRequest) (*Collection, error) {
	key := cacheKey(req)
	if e, ok := c.pages.Get(key); ok {
		if c.now().Before(e.expires) {
			return e.coll, nil
		}
		c.pages.Remove(key)
	}

	coll, err := c.next.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if coll.CacheTimeout > 0 {
		c.pages.Add(key, cacheEntry{coll: coll, expires: c.now().Add(coll.CacheTimeout)})
	}
	return coll, nil
}

func cacheKey(req PageRequest) string {
	geo := ""
	if req.Geo != nil {
		geo = fmt.Sprintf("%g,%g", req.Geo.Latitude, req.Geo.Longitude)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%d", req.SourceID, req.TargetID, req.Kind, req.Query, geo, req.Offset, req.Limit)
}
