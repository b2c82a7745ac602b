// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ink

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes drawings by capture batch identity. Keys must change
// whenever the batch does (for example note ID plus latest capture ID).
// Concurrent Gets for a missing key run load once.
type Cache struct {
	drawings *lru.Cache[string, Drawing] // nil when storage is disabled
	group    singleflight.Group
}

// NewCache returns a cache holding at most size drawings. size <= 0
// disables storage; loads are still collapsed.
func NewCache(size int) *Cache {
	c := &Cache{}
	if size > 0 {
		// lru.New only fails for non-positive sizes.
		c.drawings, _ = lru.New[string, Drawing](size)
	}
	return c
}

// Get returns the drawing for key, normalizing the captures from load on a
// miss. Load errors are returned as is and not cached.
func (c *Cache) Get(key string, load func() ([]Capture, error)) (Drawing, error) {
	if d, ok := c.lookup(key); ok {
		return d, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if d, ok := c.lookup(key); ok {
			return d, nil
		}
		captures, err := load()
		if err != nil {
			return nil, err
		}
		d := Normalize(captures)
		if c.drawings != nil {
			c.drawings.Add(key, d)
		}
		return d, nil
	})
	if err != nil {
		return Drawing{}, err
	}
	return v.(Drawing), nil
}

// Len reports the number of cached drawings.
func (c *Cache) Len() int {
	if c.drawings == nil {
		return 0
	}
	return c.drawings.Len()
}

func (c *Cache) lookup(key string) (Drawing, bool) {
	if c.drawings == nil {
		return Drawing{}, false
	}
	return c.drawings.Get(key)
}
