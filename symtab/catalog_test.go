package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSimpleCatalog_Lookup(t *testing.T) {
	v1 := mustShared(t, "fred", 1, "a")
	v3 := mustShared(t, "fred", 3, "a", "b", "c")
	v5 := mustShared(t, "fred", 5, "a", "b", "c", "d", "e")
	bob := mustShared(t, "bob", 2, "x")

	cat := NewSimpleCatalog(v3, v1, v5, bob).WithLogger(zap.NewNop())
	require.Equal(t, 4, cat.Len())
	assert.Equal(t, []string{"bob", "fred"}, cat.Names())

	tests := []struct {
		name    string
		version int
		want    *SharedTable
	}{
		{"fred", 1, v1},
		{"fred", 3, v3},
		{"fred", 4, v3},
		{"fred", 9, v5},
		{"fred", 0, v1},
		{"bob", 1, bob},
		{"nobody", 1, nil},
	}
	for _, tt := range tests {
		got := cat.Table(tt.name, tt.version)
		if tt.want == nil {
			assert.Nil(t, got, "%s/%d", tt.name, tt.version)
			continue
		}
		assert.Same(t, tt.want, got, "%s/%d", tt.name, tt.version)
	}

	assert.Same(t, v5, cat.Latest("fred"))
	assert.Nil(t, cat.Latest("nobody"))
}

func TestSimpleCatalog_PutAndRemove(t *testing.T) {
	cat := NewSimpleCatalog()
	first := mustShared(t, "fred", 1, "a")
	second := mustShared(t, "fred", 1, "a", "b")

	assert.Nil(t, cat.Put(first))
	assert.Same(t, first, cat.Put(second))
	assert.Same(t, second, cat.Table("fred", 1))

	assert.Nil(t, cat.Put(nil))
	assert.Nil(t, cat.Put(SystemTable()))
	assert.Equal(t, 1, cat.Len())

	assert.Nil(t, cat.Remove("fred", 2))
	assert.Same(t, second, cat.Remove("fred", 1))
	assert.Nil(t, cat.Table("fred", 1))
	assert.Empty(t, cat.Names())
	assert.Nil(t, cat.Remove("fred", 1))
}

func TestCatalogFunc(t *testing.T) {
	fred := mustShared(t, "fred", 1, "a")
	var cat Catalog = CatalogFunc(func(name string, version int) *SharedTable {
		if name == "fred" {
			return fred
		}
		return nil
	})

	got, err := ResolveImport(cat, ImportDescriptor{Name: "fred", Version: 1, MaxID: -1})
	require.NoError(t, err)
	assert.Same(t, fred, got)

	got, err = ResolveImport(nil, ImportDescriptor{Name: "fred", Version: 1, MaxID: 2})
	require.NoError(t, err)
	assert.True(t, got.IsSubstitute())
	assert.Equal(t, 2, got.MaxID())
}
