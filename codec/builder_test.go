package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neumenon/glyphsym/glyph"
	"github.com/Neumenon/glyphsym/symtab"
)

func fredTable(t *testing.T) *symtab.SharedTable {
	t.Helper()
	fred, err := symtab.NewSharedTableFromSymbols("fred", 1, "a", "b")
	require.NoError(t, err)
	return fred
}

func mustBuild(t *testing.T, b WriterBuilder) *Writer {
	t.Helper()
	w, err := b.Build(io.Discard)
	require.NoError(t, err)
	return w
}

func TestBuilder_Standard(t *testing.T) {
	b := Standard()
	assert.Nil(t, b.Catalog())
	assert.Nil(t, b.Imports())
	assert.Nil(t, b.InitialSymbolTable())
	assert.False(t, b.IsStreamCopyOptimized())
	assert.Equal(t, glyph.DefaultFactory, b.SymtabValueFactory())

	w := mustBuild(t, b)
	table := w.SymbolTable()
	assert.Equal(t, symtab.SystemTable().MaxID(), table.MaxID())
	assert.Empty(t, table.ImportedTables())
	assert.False(t, table.IsReadOnly())
}

func TestBuilder_BuildNilOutput(t *testing.T) {
	_, err := Standard().Build(nil)
	require.Error(t, err)
	assert.True(t, symtab.ErrNilArgument.Is(err))

	_, err = Standard().Immutable().Build(nil)
	assert.True(t, symtab.ErrNilArgument.Is(err))
}

func TestBuilder_Catalog(t *testing.T) {
	cat := symtab.NewSimpleCatalog()

	b := Standard()
	b.SetCatalog(cat)
	assert.Same(t, cat, b.Catalog())

	b.SetCatalog(nil)
	assert.Nil(t, b.Catalog())

	got := b.WithCatalog(cat)
	assert.Same(t, b, got)
	assert.Same(t, cat, b.Catalog())

	w := mustBuild(t, b)
	assert.Same(t, cat, w.Catalog())
}

func TestBuilder_CatalogImmutable(t *testing.T) {
	cat := symtab.NewSimpleCatalog()
	other := symtab.NewSimpleCatalog()

	b := Standard().WithCatalog(cat).Immutable()
	assert.Same(t, cat, b.Catalog())

	b2 := b.WithCatalog(other)
	assert.NotSame(t, b, b2)
	assert.Same(t, cat, b.Catalog())
	assert.Same(t, other, b2.Catalog())

	assert.Same(t, b, b.Immutable())
}

func TestBuilder_StreamCopyOptimized(t *testing.T) {
	b := Standard()
	b.SetStreamCopyOptimized(true)
	assert.True(t, b.IsStreamCopyOptimized())
	assert.True(t, mustBuild(t, b).IsStreamCopyOptimized())

	ib := b.Immutable()
	ib2 := ib.WithStreamCopyOptimized(false)
	assert.True(t, ib.IsStreamCopyOptimized())
	assert.False(t, ib2.IsStreamCopyOptimized())
	assert.False(t, mustBuild(t, ib2).IsStreamCopyOptimized())
}

type countingFactory struct {
	glyph.ValueFactory
	structs int
}

func (f *countingFactory) NewStruct(name string, fields ...glyph.MapEntry) *glyph.GValue {
	f.structs++
	return f.ValueFactory.NewStruct(name, fields...)
}

func TestBuilder_SymtabValueFactory(t *testing.T) {
	f := &countingFactory{ValueFactory: glyph.DefaultFactory}

	b := Standard()
	b.SetSymtabValueFactory(f)
	assert.Same(t, f, b.SymtabValueFactory())

	var out bytes.Buffer
	w, err := b.Build(&out)
	require.NoError(t, err)
	require.NoError(t, w.WriteSymbol("hello"))
	require.NoError(t, w.Close())
	assert.Equal(t, 1, f.structs)

	b.SetSymtabValueFactory(nil)
	assert.Equal(t, glyph.DefaultFactory, b.SymtabValueFactory())
}

func TestBuilder_InitialSymbolTable(t *testing.T) {
	initial, err := symtab.NewLocalTable(symtab.SystemTable())
	require.NoError(t, err)
	id, err := initial.Intern("hello")
	require.NoError(t, err)
	require.Equal(t, 10, id)

	b := Standard()
	b.SetInitialSymbolTable(initial)
	assert.Same(t, initial, b.InitialSymbolTable())

	// Changes made after the set never reach builds.
	_, err = initial.Intern("late")
	require.NoError(t, err)

	w1 := mustBuild(t, b)
	assert.Equal(t, 10, w1.SymbolTable().FindSymbol("hello"))
	assert.Equal(t, symtab.UnknownSymbolID, w1.SymbolTable().FindSymbol("late"))
	assert.Equal(t, 10, w1.SymbolTable().MaxID())

	w2 := mustBuild(t, b)
	require.NoError(t, w2.WriteSymbol("dolly"))
	assert.Equal(t, 11, w2.SymbolTable().FindSymbol("dolly"))
	assert.Equal(t, symtab.UnknownSymbolID, w1.SymbolTable().FindSymbol("dolly"))

	w3 := mustBuild(t, b)
	assert.Equal(t, 10, w3.SymbolTable().MaxID())
	assert.NotSame(t, w1.SymbolTable(), w3.SymbolTable())
}

func TestBuilder_ImmutableInitialSymbolTable(t *testing.T) {
	initial, err := symtab.NewLocalTable(symtab.SystemTable(), fredTable(t))
	require.NoError(t, err)
	_, err = initial.Intern("hello")
	require.NoError(t, err)
	initial.MakeReadOnly()

	b := Standard().WithInitialSymbolTable(initial).Immutable()
	assert.Same(t, initial, b.InitialSymbolTable())

	w1 := mustBuild(t, b)
	w2 := mustBuild(t, b)
	assert.Same(t, initial, w1.SymbolTable())
	assert.True(t, symtab.Equal(w1.SymbolTable(), w2.SymbolTable()))

	// A new symbol moves the writer onto its own copy.
	require.NoError(t, w2.WriteSymbol("fresh"))
	assert.NotSame(t, initial, w2.SymbolTable())
	assert.Equal(t, symtab.UnknownSymbolID, initial.FindSymbol("fresh"))
	assert.Equal(t, initial.MaxID()+1, w2.SymbolTable().FindSymbol("fresh"))
}

func TestBuilder_InitialSymbolTableTakesPrecedence(t *testing.T) {
	initial, err := symtab.NewLocalTable(symtab.SystemTable())
	require.NoError(t, err)

	b := Standard().WithImports(fredTable(t)).WithInitialSymbolTable(initial)
	w := mustBuild(t, b)
	assert.Empty(t, w.SymbolTable().ImportedTables())
}

func TestBuilder_Imports(t *testing.T) {
	fred := fredTable(t)
	ginger, err := symtab.NewSharedTableFromSymbols("ginger", 1, "c")
	require.NoError(t, err)

	b := Standard()

	imports := []*symtab.SharedTable{fred, ginger}
	b.SetImports(imports...)
	imports[0] = ginger

	got := b.Imports()
	require.Len(t, got, 2)
	assert.Same(t, fred, got[0])

	got[1] = fred
	assert.Same(t, ginger, b.Imports()[1])

	b.SetImports()
	assert.Nil(t, b.Imports())

	b.SetImports([]*symtab.SharedTable{}...)
	assert.NotNil(t, b.Imports())
	assert.Empty(t, b.Imports())
}

func TestBuilder_ImportsImmutable(t *testing.T) {
	fred := fredTable(t)

	b := Standard().WithImports(fred)
	ib := b.Immutable()

	b.SetImports()
	require.Len(t, ib.Imports(), 1)

	ib2 := ib.WithImports()
	assert.Nil(t, ib2.Imports())
	require.Len(t, ib.Imports(), 1)

	m := ib.Mutable()
	m.SetImports()
	require.Len(t, ib.Imports(), 1)
}

func TestBuilder_ImportsReachWriter(t *testing.T) {
	fred := fredTable(t)

	w := mustBuild(t, Standard().WithImports(fred))
	table := w.SymbolTable()

	imports := table.ImportedTables()
	require.Len(t, imports, 1)
	assert.Same(t, fred, imports[0])
	assert.Equal(t, symtab.SystemTable().MaxID()+fred.MaxID(), table.MaxID())
	assert.Equal(t, 10, table.FindSymbol("a"))
}

func TestBuilder_ConcurrentBuild(t *testing.T) {
	initial, err := symtab.NewLocalTable(symtab.SystemTable())
	require.NoError(t, err)
	_, err = initial.Intern("seed")
	require.NoError(t, err)

	b := Standard().WithInitialSymbolTable(initial).Immutable()

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			w, err := b.Build(io.Discard)
			if err == nil {
				err = w.WriteSymbol("local")
			}
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, symtab.UnknownSymbolID, initial.FindSymbol("local"))
}
