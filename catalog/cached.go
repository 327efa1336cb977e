package catalog

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Neumenon/glyphsym/symtab"
)

type tableKey struct {
	name    string
	version int
}

// Cached memoizes lookups against another catalog. Misses are not cached.
// Hits are never invalidated, so call Purge after changing the inner
// catalog.
type Cached struct {
	inner symtab.Catalog
	cache *lru.Cache[tableKey, *symtab.SharedTable]
}

// NewCached wraps inner with an LRU cache of size entries.
func NewCached(inner symtab.Catalog, size int) (*Cached, error) {
	if inner == nil {
		return nil, symtab.ErrNilArgument.New("catalog")
	}
	cache, err := lru.New[tableKey, *symtab.SharedTable](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

func (c *Cached) Table(name string, version int) *symtab.SharedTable {
	key := tableKey{name: name, version: version}
	if t, ok := c.cache.Get(key); ok {
		return t
	}
	t := c.inner.Table(name, version)
	if t != nil {
		c.cache.Add(key, t)
	}
	return t
}

// Purge drops every cached entry.
func (c *Cached) Purge() { c.cache.Purge() }

// Len returns the number of cached entries.
func (c *Cached) Len() int { return c.cache.Len() }

var _ symtab.Catalog = (*Cached)(nil)
