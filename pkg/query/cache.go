package query

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey struct {
	version   uint64
	direction Direction
	canonical string
}

// resultCache memoizes traversal results per store version. Stale versions
// simply stop being asked for and age out of the LRU.
type resultCache struct {
	entries *lru.Cache[cacheKey, []string]
}

func newResultCache(size int) (*resultCache, error) {
	entries, err := lru.New[cacheKey, []string](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{entries: entries}, nil
}

func (c *resultCache) get(version uint64, dir Direction, canonical string) ([]string, bool) {
	matches, ok := c.entries.Get(cacheKey{version: version, direction: dir, canonical: canonical})
	if !ok {
		return nil, false
	}
	// Hand out a copy; callers may keep and mutate their result.
	out := make([]string, len(matches))
	copy(out, matches)
	return out, true
}

func (c *resultCache) put(version uint64, dir Direction, canonical string, matches []string) {
	stored := make([]string, len(matches))
	copy(stored, matches)
	c.entries.Add(cacheKey{version: version, direction: dir, canonical: canonical}, stored)
}
