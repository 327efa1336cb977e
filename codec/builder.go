// Package codec writes and reads GS1-T symbol streams. Writers are made by
// builders that fix the catalog, imports and initial symbol table each new
// writer starts from.
package codec

import (
	"io"

	"go.uber.org/zap"

	"github.com/Neumenon/glyphsym/glyph"
	"github.com/Neumenon/glyphsym/stream"
	"github.com/Neumenon/glyphsym/symtab"
)

// WriterBuilder is the read side shared by Builder and ImmutableBuilder.
type WriterBuilder interface {
	Catalog() symtab.Catalog
	// Imports returns a copy; nil means no explicit imports were set.
	Imports() []*symtab.SharedTable
	InitialSymbolTable() *symtab.LocalTable
	IsStreamCopyOptimized() bool
	SymtabValueFactory() glyph.ValueFactory

	Immutable() *ImmutableBuilder
	Mutable() *Builder

	// Build returns a Writer over out with its own local symbol table.
	Build(out io.Writer) (*Writer, error)
}

// builderConfig is the state both builder kinds carry.
type builderConfig struct {
	catalog symtab.Catalog
	imports []*symtab.SharedTable

	// initial is the table as set; seed is the snapshot builds copy from
	// when initial was mutable.
	initial *symtab.LocalTable
	seed    *symtab.LocalTable

	streamCopyOptimized bool
	factory             glyph.ValueFactory

	system   *symtab.SharedTable
	sid      uint64
	crc      bool
	compress bool
	logger   *zap.Logger
}

func defaultConfig() builderConfig {
	return builderConfig{
		factory: glyph.DefaultFactory,
		system:  symtab.SystemTable(),
		logger:  zap.NewNop(),
	}
}

func (c builderConfig) clone() builderConfig {
	c.imports = copyImports(c.imports)
	return c
}

func copyImports(tables []*symtab.SharedTable) []*symtab.SharedTable {
	if tables == nil {
		return nil
	}
	out := make([]*symtab.SharedTable, len(tables))
	copy(out, tables)
	return out
}

func (c *builderConfig) setInitial(t *symtab.LocalTable) {
	c.initial = t
	c.seed = nil
	if t != nil && !t.IsReadOnly() {
		c.seed = t.Copy()
		c.seed.MakeReadOnly()
	}
}

// table materializes the local table for one build. A read-only initial
// table is shared; a mutable one is copied from the snapshot taken when it
// was set. Otherwise the table is composed from the explicit imports.
func (c *builderConfig) table() (*symtab.LocalTable, bool, error) {
	switch {
	case c.seed != nil:
		return c.seed.Copy(), false, nil
	case c.initial != nil:
		return c.initial, true, nil
	default:
		t, err := symtab.NewLocalTable(c.system, c.imports...)
		return t, false, err
	}
}

func (c *builderConfig) build(out io.Writer) (*Writer, error) {
	if out == nil {
		return nil, symtab.ErrNilArgument.New("output")
	}

	table, shared, err := c.table()
	if err != nil {
		return nil, err
	}

	var opts []stream.WriterOption
	if c.crc {
		opts = append(opts, stream.WithCRC())
	}
	if c.compress {
		opts = append(opts, stream.WithCompression())
	}

	c.logger.Debug("built writer",
		zap.Bool("shared_table", shared),
		zap.Int("max_id", table.MaxID()),
		zap.Int("imports", len(table.ImportedTables())),
		zap.Bool("stream_copy_optimized", c.streamCopyOptimized))

	return &Writer{
		out:        stream.NewWriter(out, opts...),
		table:      table,
		catalog:    c.catalog,
		factory:    c.factory,
		streamCopy: c.streamCopyOptimized,
		sid:        c.sid,
		logger:     c.logger,
	}, nil
}

// ============================================================
// Mutable builder
// ============================================================

// Builder is a mutable WriterBuilder. Setters change it in place and With*
// methods return the same builder. It is not safe for concurrent setters;
// concurrent Build calls are safe.
type Builder struct {
	cfg builderConfig
}

// Standard returns a new mutable builder with default settings.
func Standard() *Builder {
	return &Builder{cfg: defaultConfig()}
}

func (b *Builder) Catalog() symtab.Catalog                { return b.cfg.catalog }
func (b *Builder) Imports() []*symtab.SharedTable         { return copyImports(b.cfg.imports) }
func (b *Builder) InitialSymbolTable() *symtab.LocalTable { return b.cfg.initial }
func (b *Builder) IsStreamCopyOptimized() bool            { return b.cfg.streamCopyOptimized }
func (b *Builder) SymtabValueFactory() glyph.ValueFactory { return b.cfg.factory }

// SetCatalog sets the catalog writers resolve imports against.
func (b *Builder) SetCatalog(c symtab.Catalog) { b.cfg.catalog = c }

// SetImports sets the shared tables each new local table imports. The
// slice is copied. SetImports() clears the imports, which is distinct from
// setting an empty, non-nil slice.
func (b *Builder) SetImports(tables ...*symtab.SharedTable) { b.cfg.imports = copyImports(tables) }

// SetInitialSymbolTable sets the table writers start from. It takes
// precedence over imports. A mutable table is snapshotted now, so later
// changes to it do not reach writers.
func (b *Builder) SetInitialSymbolTable(t *symtab.LocalTable) { b.cfg.setInitial(t) }

func (b *Builder) SetStreamCopyOptimized(optimized bool) { b.cfg.streamCopyOptimized = optimized }

// SetSymtabValueFactory sets the factory used to build symbol table
// declarations. Nil restores the default.
func (b *Builder) SetSymtabValueFactory(f glyph.ValueFactory) {
	if f == nil {
		f = glyph.DefaultFactory
	}
	b.cfg.factory = f
}

// SetStreamID sets the GS1 stream id of every frame.
func (b *Builder) SetStreamID(sid uint64) { b.cfg.sid = sid }

// SetCRC enables CRC-32 on every frame with a payload.
func (b *Builder) SetCRC(enabled bool) { b.cfg.crc = enabled }

// SetCompression enables zstd payload compression.
func (b *Builder) SetCompression(enabled bool) { b.cfg.compress = enabled }

// SetLogger sets the logger handed to writers. Nil means no logging.
func (b *Builder) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	b.cfg.logger = l
}

func (b *Builder) WithCatalog(c symtab.Catalog) *Builder {
	b.SetCatalog(c)
	return b
}

func (b *Builder) WithImports(tables ...*symtab.SharedTable) *Builder {
	b.SetImports(tables...)
	return b
}

func (b *Builder) WithInitialSymbolTable(t *symtab.LocalTable) *Builder {
	b.SetInitialSymbolTable(t)
	return b
}

func (b *Builder) WithStreamCopyOptimized(optimized bool) *Builder {
	b.SetStreamCopyOptimized(optimized)
	return b
}

func (b *Builder) WithSymtabValueFactory(f glyph.ValueFactory) *Builder {
	b.SetSymtabValueFactory(f)
	return b
}

func (b *Builder) WithStreamID(sid uint64) *Builder {
	b.SetStreamID(sid)
	return b
}

func (b *Builder) WithCRC(enabled bool) *Builder {
	b.SetCRC(enabled)
	return b
}

func (b *Builder) WithCompression(enabled bool) *Builder {
	b.SetCompression(enabled)
	return b
}

func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.SetLogger(l)
	return b
}

// Immutable returns a frozen snapshot of b.
func (b *Builder) Immutable() *ImmutableBuilder {
	return &ImmutableBuilder{cfg: b.cfg.clone()}
}

// Mutable returns an independent mutable copy of b.
func (b *Builder) Mutable() *Builder {
	return &Builder{cfg: b.cfg.clone()}
}

func (b *Builder) Build(out io.Writer) (*Writer, error) {
	return b.cfg.build(out)
}

// ============================================================
// Immutable builder
// ============================================================

// ImmutableBuilder is a WriterBuilder whose visible state never changes.
// It has no setters; With* methods return a new ImmutableBuilder. It is
// safe for concurrent use.
type ImmutableBuilder struct {
	cfg builderConfig
}

func (b *ImmutableBuilder) Catalog() symtab.Catalog                { return b.cfg.catalog }
func (b *ImmutableBuilder) Imports() []*symtab.SharedTable         { return copyImports(b.cfg.imports) }
func (b *ImmutableBuilder) InitialSymbolTable() *symtab.LocalTable { return b.cfg.initial }
func (b *ImmutableBuilder) IsStreamCopyOptimized() bool            { return b.cfg.streamCopyOptimized }
func (b *ImmutableBuilder) SymtabValueFactory() glyph.ValueFactory { return b.cfg.factory }

func (b *ImmutableBuilder) with(set func(*Builder)) *ImmutableBuilder {
	m := b.Mutable()
	set(m)
	return &ImmutableBuilder{cfg: m.cfg}
}

func (b *ImmutableBuilder) WithCatalog(c symtab.Catalog) *ImmutableBuilder {
	return b.with(func(m *Builder) { m.SetCatalog(c) })
}

func (b *ImmutableBuilder) WithImports(tables ...*symtab.SharedTable) *ImmutableBuilder {
	return b.with(func(m *Builder) { m.SetImports(tables...) })
}

func (b *ImmutableBuilder) WithInitialSymbolTable(t *symtab.LocalTable) *ImmutableBuilder {
	return b.with(func(m *Builder) { m.SetInitialSymbolTable(t) })
}

func (b *ImmutableBuilder) WithStreamCopyOptimized(optimized bool) *ImmutableBuilder {
	return b.with(func(m *Builder) { m.SetStreamCopyOptimized(optimized) })
}

func (b *ImmutableBuilder) WithSymtabValueFactory(f glyph.ValueFactory) *ImmutableBuilder {
	return b.with(func(m *Builder) { m.SetSymtabValueFactory(f) })
}

func (b *ImmutableBuilder) WithStreamID(sid uint64) *ImmutableBuilder {
	return b.with(func(m *Builder) { m.SetStreamID(sid) })
}

func (b *ImmutableBuilder) WithCRC(enabled bool) *ImmutableBuilder {
	return b.with(func(m *Builder) { m.SetCRC(enabled) })
}

func (b *ImmutableBuilder) WithCompression(enabled bool) *ImmutableBuilder {
	return b.with(func(m *Builder) { m.SetCompression(enabled) })
}

func (b *ImmutableBuilder) WithLogger(l *zap.Logger) *ImmutableBuilder {
	return b.with(func(m *Builder) { m.SetLogger(l) })
}

// Immutable returns b itself.
func (b *ImmutableBuilder) Immutable() *ImmutableBuilder { return b }

// Mutable returns a mutable copy of b.
func (b *ImmutableBuilder) Mutable() *Builder {
	return &Builder{cfg: b.cfg.clone()}
}

func (b *ImmutableBuilder) Build(out io.Writer) (*Writer, error) {
	return b.cfg.build(out)
}

var (
	_ WriterBuilder = (*Builder)(nil)
	_ WriterBuilder = (*ImmutableBuilder)(nil)
)
