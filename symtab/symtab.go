// Package symtab maintains the layered symbol namespace of a GLYPH stream:
// the fixed system table, named and versioned shared tables, and per-stream
// local tables composed from both plus locally interned symbols.
//
// Symbol IDs are positive; 0 is never bound. IDs with no known text are
// gaps and render as "$<id>".
package symtab

import "strconv"

// UnknownSymbolID is returned by FindSymbol when text is not bound.
const UnknownSymbolID = -1

// Reserved annotations and field names of symbol table declarations.
const (
	SystemName                  = "$glyph"
	SymbolTableAnnotation       = "$glyph_symbol_table"
	SharedSymbolTableAnnotation = "$glyph_shared_symbol_table"

	fieldName    = "name"
	fieldVersion = "version"
	fieldImports = "imports"
	fieldSymbols = "symbols"
	fieldMaxID   = "max_id"
)

// SymbolTable is the read side shared by system, shared and local tables.
type SymbolTable interface {
	// Name is empty for local tables.
	Name() string
	// Version is 0 for local tables.
	Version() int
	MaxID() int

	IsLocalTable() bool
	IsSharedTable() bool
	IsSystemTable() bool
	IsReadOnly() bool

	// SystemSymbolTable is nil for non-system shared tables.
	SystemSymbolTable() *SharedTable
	// ImportedTables returns a copy of the import list, in ID order.
	ImportedTables() []*SharedTable

	// FindSymbol returns the lowest ID bound to text, or UnknownSymbolID.
	FindSymbol(text string) int
	// FindKnownSymbol returns the text bound to id, if any. An ID whose
	// text FindSymbol resolves to a different ID is reported unknown, so
	// every known ID round-trips through FindSymbol.
	FindKnownSymbol(id int) (string, bool)
	// SymbolText never fails; unbound IDs render as UnknownSymbolText(id).
	SymbolText(id int) string

	// Intern returns the ID of text, binding a new one if the table is
	// mutable. Known text always returns its existing ID, read-only or
	// not. Only unknown text on a read-only table fails, with
	// ErrUnsupportedMutation.
	Intern(text string) (int, error)
	MakeReadOnly()
}

// UnknownSymbolText is the placeholder text for an ID with no binding.
func UnknownSymbolText(id int) string {
	return "$" + strconv.Itoa(id)
}

func symbolText(t SymbolTable, id int) string {
	if text, ok := t.FindKnownSymbol(id); ok {
		return text
	}
	return UnknownSymbolText(id)
}
