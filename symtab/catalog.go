package symtab

import (
	"sort"
	"sync"

	"github.com/google/btree"
	"go.uber.org/zap"
)

// Catalog supplies shared tables by name and version. Table returns the
// exact version when present, otherwise the best match, otherwise nil.
type Catalog interface {
	Table(name string, version int) *SharedTable
}

// CatalogFunc adapts a function to Catalog.
type CatalogFunc func(name string, version int) *SharedTable

func (f CatalogFunc) Table(name string, version int) *SharedTable { return f(name, version) }

// SimpleCatalog is an in-memory catalog. Versions of each name are kept in
// a B-tree so best-match lookups are ordered walks.
type SimpleCatalog struct {
	mu     sync.RWMutex
	tables map[string]*btree.BTreeG[*SharedTable]
	logger *zap.Logger
}

// NewSimpleCatalog creates an empty catalog holding the given tables.
func NewSimpleCatalog(tables ...*SharedTable) *SimpleCatalog {
	c := &SimpleCatalog{
		tables: make(map[string]*btree.BTreeG[*SharedTable]),
		logger: zap.NewNop(),
	}
	for _, t := range tables {
		c.Put(t)
	}
	return c
}

// WithLogger sets the logger used for registration events.
func (c *SimpleCatalog) WithLogger(logger *zap.Logger) *SimpleCatalog {
	if logger != nil {
		c.logger = logger
	}
	return c
}

func byVersion(a, b *SharedTable) bool {
	return a.Version() < b.Version()
}

// Put registers t, replacing any table with the same name and version.
// It returns the replaced table, if any. Nil and system tables are ignored.
func (c *SimpleCatalog) Put(t *SharedTable) *SharedTable {
	if t == nil || t.IsSystemTable() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	versions, ok := c.tables[t.Name()]
	if !ok {
		versions = btree.NewG(8, byVersion)
		c.tables[t.Name()] = versions
	}
	prev, _ := versions.ReplaceOrInsert(t)
	c.logger.Debug("registered shared table",
		zap.String("name", t.Name()),
		zap.Int("version", t.Version()),
		zap.Int("max_id", t.MaxID()),
		zap.Bool("replaced", prev != nil))
	return prev
}

// Remove unregisters name/version and returns the removed table.
func (c *SimpleCatalog) Remove(name string, version int) *SharedTable {
	c.mu.Lock()
	defer c.mu.Unlock()

	versions, ok := c.tables[name]
	if !ok {
		return nil
	}
	removed, _ := versions.Delete(&SharedTable{name: name, version: version})
	if versions.Len() == 0 {
		delete(c.tables, name)
	}
	return removed
}

// Table returns the exact version if registered. Otherwise it returns the
// highest version below the request, or failing that the lowest above it.
func (c *SimpleCatalog) Table(name string, version int) *SharedTable {
	c.mu.RLock()
	defer c.mu.RUnlock()

	versions, ok := c.tables[name]
	if !ok {
		return nil
	}

	key := &SharedTable{name: name, version: version}
	var best *SharedTable
	versions.DescendLessOrEqual(key, func(t *SharedTable) bool {
		best = t
		return false
	})
	if best == nil {
		versions.AscendGreaterOrEqual(key, func(t *SharedTable) bool {
			best = t
			return false
		})
	}
	return best
}

// Latest returns the highest registered version of name.
func (c *SimpleCatalog) Latest(name string) *SharedTable {
	c.mu.RLock()
	defer c.mu.RUnlock()

	versions, ok := c.tables[name]
	if !ok {
		return nil
	}
	t, _ := versions.Max()
	return t
}

// Names returns the registered table names.
func (c *SimpleCatalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tables across all names.
func (c *SimpleCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, versions := range c.tables {
		n += versions.Len()
	}
	return n
}
