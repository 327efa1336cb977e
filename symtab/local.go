package symtab

import (
	"github.com/Neumenon/glyphsym/glyph"
)

// LocalTable composes the system table, an ordered list of imports and
// locally interned symbols into one ID space:
//
//	1..system.MaxID()                  system symbols
//	next import.MaxID() IDs, per import imported symbols (gaps allowed)
//	importMaxID+1..                    local symbols
//
// Lookups are safe for concurrent use. Intern and MakeReadOnly are
// serialized against lookups by the local store's mutex.
type LocalTable struct {
	system  *SharedTable
	imports []*SharedTable
	// offsets[i] is the ID just before imports[i]'s block.
	offsets     []int
	importMaxID int

	store *symbolStore
}

// NewLocalTable creates an empty, mutable local table. System tables in
// imports are skipped; the system base is always system.
func NewLocalTable(system *SharedTable, imports ...*SharedTable) (*LocalTable, error) {
	if system == nil {
		return nil, ErrNilArgument.New("system table")
	}
	if !system.IsSystemTable() {
		return nil, ErrNotSymbolTable.New(SystemName, system.Name())
	}

	t := &LocalTable{system: system}
	next := system.MaxID()
	for _, imp := range imports {
		if imp == nil {
			return nil, ErrNilArgument.New("imported table")
		}
		if imp.IsSystemTable() {
			continue
		}
		t.imports = append(t.imports, imp)
		t.offsets = append(t.offsets, next)
		next += imp.MaxID()
	}
	t.importMaxID = next
	t.store = newSymbolStore(next, 0)
	return t, nil
}

func (t *LocalTable) Name() string        { return "" }
func (t *LocalTable) Version() int        { return 0 }
func (t *LocalTable) MaxID() int          { return t.store.maxID() }
func (t *LocalTable) IsLocalTable() bool  { return true }
func (t *LocalTable) IsSharedTable() bool { return false }
func (t *LocalTable) IsSystemTable() bool { return false }
func (t *LocalTable) IsReadOnly() bool    { return t.store.isFrozen() }

func (t *LocalTable) SystemSymbolTable() *SharedTable { return t.system }

func (t *LocalTable) ImportedTables() []*SharedTable {
	if len(t.imports) == 0 {
		return nil
	}
	out := make([]*SharedTable, len(t.imports))
	copy(out, t.imports)
	return out
}

// ImportedMaxID is the highest ID covered by the system table and imports.
func (t *LocalTable) ImportedMaxID() int { return t.importMaxID }

// MakeReadOnly freezes the table. Intern still returns the ID of text the
// table already knows; only text that would need a new binding fails.
func (t *LocalTable) MakeReadOnly() { t.store.freeze() }

func (t *LocalTable) FindSymbol(text string) int {
	if id, ok := t.findImported(text); ok {
		return id
	}
	if id, ok := t.store.find(text); ok {
		return id
	}
	return UnknownSymbolID
}

func (t *LocalTable) findImported(text string) (int, bool) {
	if id := t.system.FindSymbol(text); id != UnknownSymbolID {
		return id, true
	}
	for i, imp := range t.imports {
		if id := imp.FindSymbol(text); id != UnknownSymbolID {
			return t.offsets[i] + id, true
		}
	}
	return 0, false
}

func (t *LocalTable) FindKnownSymbol(id int) (string, bool) {
	if id < 1 {
		return "", false
	}
	if id <= t.system.MaxID() {
		return t.system.FindKnownSymbol(id)
	}
	if id <= t.importMaxID {
		for i := len(t.imports) - 1; i >= 0; i-- {
			if id > t.offsets[i] {
				text, ok := t.imports[i].FindKnownSymbol(id - t.offsets[i])
				if !ok {
					return "", false
				}
				// A slot whose text is bound lower in the composition is
				// shadowed and reads as a gap.
				if lowest, _ := t.findImported(text); lowest != id {
					return "", false
				}
				return text, true
			}
		}
		return "", false
	}
	return t.store.text(id)
}

func (t *LocalTable) SymbolText(id int) string {
	return symbolText(t, id)
}

// Intern returns the existing ID of text anywhere in the composition, or
// binds it to MaxID()+1.
func (t *LocalTable) Intern(text string) (int, error) {
	id, _, err := t.intern(text)
	return id, err
}

func (t *LocalTable) intern(text string) (int, bool, error) {
	if text == "" {
		return 0, false, ErrEmptySymbol.New()
	}
	if id, ok := t.findImported(text); ok {
		return id, false, nil
	}
	id, added, err := t.store.intern(text)
	if err != nil {
		return 0, false, ErrUnsupportedMutation.New(text, "local")
	}
	return id, added, nil
}

// Copy returns a mutable table with the same imports and local symbols.
// The copy and t evolve independently.
func (t *LocalTable) Copy() *LocalTable {
	return &LocalTable{
		system:      t.system,
		imports:     t.imports,
		offsets:     t.offsets,
		importMaxID: t.importMaxID,
		store:       t.store.clone(),
	}
}

// LocalSymbols returns the local symbols bound after fromID, gaps as "".
func (t *LocalTable) LocalSymbols(fromID int) []string {
	return t.store.slots(fromID)
}

// Declaration renders the whole table as
// $glyph_symbol_table{imports=[...] symbols=[...]}.
func (t *LocalTable) Declaration(f glyph.ValueFactory) *glyph.GValue {
	if f == nil {
		f = glyph.DefaultFactory
	}

	var fields []glyph.MapEntry
	if len(t.imports) > 0 {
		imps := make([]*glyph.GValue, len(t.imports))
		for i, imp := range t.imports {
			imps[i] = f.NewMap(
				glyph.FieldVal(fieldName, f.NewString(imp.Name())),
				glyph.FieldVal(fieldVersion, f.NewInt(int64(imp.Version()))),
				glyph.FieldVal(fieldMaxID, f.NewInt(int64(imp.MaxID()))),
			)
		}
		fields = append(fields, glyph.FieldVal(fieldImports, f.NewList(imps...)))
	}
	fields = append(fields, glyph.FieldVal(fieldSymbols, symbolList(f, t.store.slots(0))))
	return f.NewStruct(SymbolTableAnnotation, fields...)
}

// DeclarationAppend renders only the symbols bound after fromID, in the
// append form that extends the reader's current table:
// $glyph_symbol_table{imports=$glyph_symbol_table symbols=[...]}.
func (t *LocalTable) DeclarationAppend(f glyph.ValueFactory, fromID int) *glyph.GValue {
	if f == nil {
		f = glyph.DefaultFactory
	}
	return f.NewStruct(SymbolTableAnnotation,
		glyph.FieldVal(fieldImports, f.NewString(SymbolTableAnnotation)),
		glyph.FieldVal(fieldSymbols, symbolList(f, t.store.slots(fromID))),
	)
}

func symbolList(f glyph.ValueFactory, slots []string) *glyph.GValue {
	elems := make([]*glyph.GValue, len(slots))
	for i, s := range slots {
		if s == "" {
			elems[i] = f.NewNull()
		} else {
			elems[i] = f.NewString(s)
		}
	}
	return f.NewList(elems...)
}

// NewLocalTableFromDeclaration builds a local table from a
// $glyph_symbol_table declaration. With imports=$glyph_symbol_table the
// symbols extend a copy of previous (or a fresh table when previous is nil).
// Otherwise each import is resolved through cat; see ResolveImport.
//
// Symbol entries that are not non-empty strings, and repeats of text already
// bound, become gaps so later IDs keep their declared positions.
func NewLocalTableFromDeclaration(system *SharedTable, cat Catalog, decl *glyph.GValue, previous *LocalTable) (*LocalTable, error) {
	if decl == nil {
		return nil, ErrNilArgument.New("declaration")
	}
	if !decl.HasAnnotation(SymbolTableAnnotation) {
		return nil, ErrNotSymbolTable.New(SymbolTableAnnotation, decl.TypeName())
	}
	if system == nil {
		system = SystemTable()
	}

	var t *LocalTable
	importsField := decl.Get(fieldImports)
	if s, err := importsField.AsStr(); err == nil && s == SymbolTableAnnotation {
		if previous != nil {
			t = previous.Copy()
		}
	} else {
		descs := ParseImports(importsField)
		imports := make([]*SharedTable, 0, len(descs))
		for _, d := range descs {
			imp, err := ResolveImport(cat, d)
			if err != nil {
				return nil, err
			}
			imports = append(imports, imp)
		}
		var err error
		if t, err = NewLocalTable(system, imports...); err != nil {
			return nil, err
		}
	}
	if t == nil {
		var err error
		if t, err = NewLocalTable(system); err != nil {
			return nil, err
		}
	}

	if elems, err := decl.Get(fieldSymbols).AsList(); err == nil {
		for _, elem := range elems {
			text, _ := elem.AsStr()
			t.appendDeclared(text)
		}
	}
	return t, nil
}

// appendDeclared binds text to the next ID, or leaves a gap when text is
// empty or already bound anywhere in the composition.
func (t *LocalTable) appendDeclared(text string) {
	if _, ok := t.findImported(text); ok {
		text = ""
	}
	t.store.appendSlot(text)
}
