package listclient

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of cached pages.
const DefaultCacheSize = 64

// Cache is a bounded, goroutine-safe page cache keyed by request URL.
type Cache struct {
	pages *lru.Cache[string, Page]
}

// NewCache returns a cache holding at most size pages.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	pages, err := lru.New[string, Page](size)
	if err != nil {
		return nil, fmt.Errorf("list client: create cache: %w", err)
	}
	return &Cache{pages: pages}, nil
}

// Get returns the page stored under key.
func (c *Cache) Get(key string) (Page, bool) {
	return c.pages.Get(key)
}

// Put stores a page under its key.
func (c *Cache) Put(p Page) {
	c.pages.Add(p.Key, p)
}
