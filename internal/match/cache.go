package match

// Cache memoizes the winning candidate per (prefix, predicate, literal).
// It is owned by the producing goroutine and is not safe for concurrent use.
type Cache struct {
	entries map[CacheKey]Result
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{entries: make(map[CacheKey]Result)}
}

// Get returns the cached result for k
func (c *Cache) Get(k CacheKey) (Result, bool) {
	r, ok := c.entries[k]
	return r, ok
}

// Put stores r under k
func (c *Cache) Put(k CacheKey, r Result) {
	c.entries[k] = r
}

// Len returns the number of cached keys
func (c *Cache) Len() int {
	return len(c.entries)
}
