package panoramio

import (
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// responseCache keeps decoded responses keyed by a hash of the request URL
type responseCache struct {
	lru *lru.Cache[uint64, *Response]
}

func newResponseCache(size int) (*responseCache, error) {
	c, err := lru.New[uint64, *Response](size)
	if err != nil {
		return nil, err
	}
	return &responseCache{lru: c}, nil
}

func cacheKey(requestURL string) uint64 {
	return xxhash.Sum64String(requestURL)
}

func (c *responseCache) get(requestURL string) (*Response, bool) {
	resp, ok := c.lru.Get(cacheKey(requestURL))
	if !ok {
		return nil, false
	}
	return resp.clone(), true
}

func (c *responseCache) add(requestURL string, resp *Response) {
	c.lru.Add(cacheKey(requestURL), resp.clone())
}

func (c *responseCache) len() int { return c.lru.Len() }
