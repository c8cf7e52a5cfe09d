package mimekit

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/groupcache/lru"
)

// ============================================================================
// Cache Interface
// ============================================================================

// CachedResult is a memoized detection outcome.
type CachedResult struct {
	Name     string
	Accuracy int
}

// ResultCache memoizes detection results keyed by a hash of the query.
// The database purges it whenever types, globs or magic change.
//
// Implementations should be thread-safe.
type ResultCache interface {
	// Get returns the cached result for key.
	Get(key uint64) (CachedResult, bool)

	// Add stores r under key.
	Add(key uint64, r CachedResult)

	// Purge drops every entry.
	Purge()
}

// CacheStatistics contains cache performance metrics.
type CacheStatistics struct {
	Hits      int64
	Misses    int64
	Size      int64
	Evictions int64
	HitRate   float64
}

// ============================================================================
// In-Memory Cache Implementation
// ============================================================================

// MemoryResultCache is a bounded LRU ResultCache.
type MemoryResultCache struct {
	mu        sync.Mutex
	lru       *lru.Cache
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryResultCache creates a cache holding at most size entries.
// A non-positive size means no limit.
func NewMemoryResultCache(size int) *MemoryResultCache {
	c := &MemoryResultCache{}
	if size < 0 {
		size = 0
	}
	c.lru = lru.New(size)
	c.lru.OnEvicted = func(lru.Key, any) { c.evictions++ }
	return c
}

func (c *MemoryResultCache) Get(key uint64) (CachedResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return CachedResult{}, false
	}
	c.hits++
	return v.(CachedResult), true
}

func (c *MemoryResultCache) Add(key uint64, r CachedResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, r)
}

// Purge drops every entry. Purged entries are not counted as evictions.
func (c *MemoryResultCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.OnEvicted = nil
	c.lru.Clear()
	c.lru.OnEvicted = func(lru.Key, any) { c.evictions++ }
}

// Stats returns cache statistics.
func (c *MemoryResultCache) Stats() CacheStatistics {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return CacheStatistics{
		Hits:      c.hits,
		Misses:    c.misses,
		Size:      int64(c.lru.Len()),
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}

var _ ResultCache = (*MemoryResultCache)(nil)

// ============================================================================
// Keys
// ============================================================================

type queryKind byte

const (
	queryData queryKind = iota + 1
	queryFileName
	queryNameAndData
)

// cacheKey hashes a detection query. Data is expected to be already clipped
// to the content window.
func cacheKey(kind queryKind, fileName string, data []byte) uint64 {
	d := xxhash.New()
	d.Write([]byte{byte(kind)})
	d.WriteString(fileName)
	d.Write([]byte{0})
	d.Write(data)
	return d.Sum64()
}
