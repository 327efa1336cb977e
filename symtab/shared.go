package symtab

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/Neumenon/glyphsym/glyph"
)

// SharedTable is an immutable, named and versioned table. Its IDs start at
// 1 and do not include the system symbols; local tables place it after the
// system range when importing it.
type SharedTable struct {
	name    string
	version int
	system  bool

	// substitute marks a stand-in built for an import the catalog could not
	// supply exactly.
	substitute bool

	store *symbolStore
}

// NewSharedTable validates a $glyph_shared_symbol_table declaration and
// builds the table it describes. All validation problems are reported in a
// single ErrInvalidDeclaration; no table is returned alongside an error.
func NewSharedTable(decl *glyph.GValue) (*SharedTable, error) {
	if decl == nil {
		return nil, ErrNilArgument.New("declaration")
	}
	if !decl.HasAnnotation(SharedSymbolTableAnnotation) {
		return nil, ErrNotSymbolTable.New(SharedSymbolTableAnnotation, decl.TypeName())
	}

	var probs problems

	name, err := decl.Get(fieldName).AsStr()
	if err != nil || name == "" {
		probs.add("Field 'name' must be a non-empty string.")
	}

	version := 1
	if v := decl.Get(fieldVersion); !v.IsNull() {
		n, err := v.AsInt()
		if err != nil {
			n = 0
		}
		if n > int64(maxInt) {
			n = 0
		}
		version = int(n)
	}
	if version < 1 {
		probs.add("Field 'version' must be a positive int.")
	}

	var slots []string
	if v := decl.Get(fieldSymbols); !v.IsNull() {
		elems, err := v.AsList()
		if err != nil {
			probs.add("Field 'symbols' must be a list.")
		}
		slots = make([]string, len(elems))
		seen := make(map[string]int, len(elems))
		for i, elem := range elems {
			pos := i + 1
			if elem.IsNull() {
				continue
			}
			text, err := elem.AsStr()
			switch {
			case err != nil:
				probs.add(fmt.Sprintf("Element %d of field 'symbols' must be a string.", pos))
			case text == "":
				probs.add(fmt.Sprintf("Element %d of field 'symbols' must be a non-empty string.", pos))
			default:
				if _, dup := seen[text]; dup {
					probs.add(fmt.Sprintf("Duplicate symbol '%s' at id %d.", text, pos))
					continue
				}
				seen[text] = pos
				slots[i] = text
			}
		}
	}

	maxID := len(slots)
	if v := decl.Get(fieldMaxID); !v.IsNull() {
		n, err := v.AsInt()
		if err != nil || n < int64(len(slots)) || n > int64(maxInt) {
			probs.add("Field 'max_id' must be an int no smaller than the symbol count.")
		} else {
			maxID = int(n)
		}
	}

	if !probs.empty() {
		return nil, probs.err(SharedSymbolTableAnnotation)
	}

	st := &SharedTable{
		name:    name,
		version: version,
		store:   newSymbolStore(0, maxID),
	}
	for _, s := range slots {
		st.store.appendSlot(s)
	}
	st.store.padTo(maxID)
	st.store.freeze()
	return st, nil
}

const maxInt = int(^uint(0) >> 1)

// NewSharedTableFromSymbols builds a shared table from plain texts. An empty
// string leaves a gap.
func NewSharedTableFromSymbols(name string, version int, symbols ...string) (*SharedTable, error) {
	f := glyph.DefaultFactory
	elems := make([]*glyph.GValue, len(symbols))
	for i, s := range symbols {
		if s == "" {
			elems[i] = f.NewNull()
		} else {
			elems[i] = f.NewString(s)
		}
	}
	return NewSharedTable(f.NewStruct(SharedSymbolTableAnnotation,
		glyph.FieldVal(fieldName, f.NewString(name)),
		glyph.FieldVal(fieldVersion, f.NewInt(int64(version))),
		glyph.FieldVal(fieldSymbols, f.NewList(elems...)),
	))
}

// newSubstitute builds a stand-in for an import whose exact version the
// catalog lacks. It carries the declared identity and exactly maxID slots,
// taken from original where one is available.
func newSubstitute(name string, version, maxID int, original *SharedTable) *SharedTable {
	st := &SharedTable{
		name:       name,
		version:    version,
		substitute: true,
		store:      newSymbolStore(0, maxID),
	}
	if original != nil {
		for _, s := range original.store.slots(0) {
			if st.store.maxID() == maxID {
				break
			}
			st.store.appendSlot(s)
		}
	}
	st.store.padTo(maxID)
	st.store.freeze()
	return st
}

func (t *SharedTable) Name() string        { return t.name }
func (t *SharedTable) Version() int        { return t.version }
func (t *SharedTable) MaxID() int          { return t.store.maxID() }
func (t *SharedTable) IsLocalTable() bool  { return false }
func (t *SharedTable) IsSharedTable() bool { return true }
func (t *SharedTable) IsSystemTable() bool { return t.system }
func (t *SharedTable) IsReadOnly() bool    { return true }

// IsSubstitute reports whether t stands in for an unresolved import.
func (t *SharedTable) IsSubstitute() bool { return t.substitute }

// MakeReadOnly is a no-op; shared tables are always read-only.
func (t *SharedTable) MakeReadOnly() {}

func (t *SharedTable) SystemSymbolTable() *SharedTable {
	if t.system {
		return t
	}
	return nil
}

func (t *SharedTable) ImportedTables() []*SharedTable { return nil }

func (t *SharedTable) FindSymbol(text string) int {
	if id, ok := t.store.find(text); ok {
		return id
	}
	return UnknownSymbolID
}

func (t *SharedTable) FindKnownSymbol(id int) (string, bool) {
	return t.store.text(id)
}

func (t *SharedTable) SymbolText(id int) string {
	return symbolText(t, id)
}

// Intern returns the ID of text if bound; shared tables never grow.
func (t *SharedTable) Intern(text string) (int, error) {
	if text == "" {
		return 0, ErrEmptySymbol.New()
	}
	if id, ok := t.store.find(text); ok {
		return id, nil
	}
	kind := "shared"
	if t.system {
		kind = "system"
	}
	return 0, ErrUnsupportedMutation.New(text, kind)
}

// IsCompatible reports whether t and other can stand in for each other up
// to the lower version's range: same name, and every ID 1..lower.MaxID()
// has the same binding (or is a gap) in both.
func (t *SharedTable) IsCompatible(other *SharedTable) bool {
	if other == nil {
		return false
	}
	if t == other {
		return true
	}
	if t.name != other.name {
		return false
	}

	lower, higher := t, other
	if other.version < t.version {
		lower, higher = other, t
	}
	if higher.MaxID() < lower.MaxID() {
		return false
	}
	for id := 1; id <= lower.MaxID(); id++ {
		lt, lok := lower.FindKnownSymbol(id)
		ht, hok := higher.FindKnownSymbol(id)
		if lok != hok || lt != ht {
			return false
		}
	}
	return true
}

// Fingerprint hashes the table identity and every binding. Tables with
// equal fingerprints are interchangeable.
func (t *SharedTable) Fingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(t.name)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.Itoa(t.version))
	_, _ = d.WriteString("\x00")
	writeBindings(d, t, t.MaxID())
	return d.Sum64()
}

// Declaration renders t as a $glyph_shared_symbol_table value that
// NewSharedTable accepts. Trailing gaps are expressed through max_id.
func (t *SharedTable) Declaration(f glyph.ValueFactory) *glyph.GValue {
	if f == nil {
		f = glyph.DefaultFactory
	}

	slots := t.store.slots(0)
	last := len(slots)
	for last > 0 && slots[last-1] == "" {
		last--
	}

	elems := make([]*glyph.GValue, last)
	for i, s := range slots[:last] {
		if s == "" {
			elems[i] = f.NewNull()
		} else {
			elems[i] = f.NewString(s)
		}
	}

	fields := []glyph.MapEntry{
		glyph.FieldVal(fieldName, f.NewString(t.name)),
		glyph.FieldVal(fieldVersion, f.NewInt(int64(t.version))),
		glyph.FieldVal(fieldSymbols, f.NewList(elems...)),
	}
	if last < len(slots) {
		fields = append(fields, glyph.FieldVal(fieldMaxID, f.NewInt(int64(len(slots)))))
	}
	return f.NewStruct(SharedSymbolTableAnnotation, fields...)
}

func (t *SharedTable) String() string {
	return fmt.Sprintf("%s/%d(max_id=%d)", t.name, t.version, t.MaxID())
}
