package symtab

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Equal reports whether a and b describe the same table: same kind, name,
// version and max id, equal imports, and the same binding for every ID.
func Equal(a, b SymbolTable) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.IsLocalTable() != b.IsLocalTable() ||
		a.IsSystemTable() != b.IsSystemTable() ||
		a.Name() != b.Name() ||
		a.Version() != b.Version() ||
		a.MaxID() != b.MaxID() {
		return false
	}

	ai, bi := a.ImportedTables(), b.ImportedTables()
	if len(ai) != len(bi) {
		return false
	}
	for i := range ai {
		if ai[i] != bi[i] && !Equal(ai[i], bi[i]) {
			return false
		}
	}

	for id := 1; id <= a.MaxID(); id++ {
		at, aok := a.FindKnownSymbol(id)
		bt, bok := b.FindKnownSymbol(id)
		if aok != bok || at != bt {
			return false
		}
	}
	return true
}

// Digest hashes the bindings of IDs 1..maxID of t. Two tables with equal
// digests for the same maxID assign those IDs identically.
func Digest(t SymbolTable, maxID int) uint64 {
	d := xxhash.New()
	writeBindings(d, t, maxID)
	return d.Sum64()
}

func writeBindings(d *xxhash.Digest, t SymbolTable, maxID int) {
	for id := 1; id <= maxID; id++ {
		text, ok := t.FindKnownSymbol(id)
		if ok {
			_, _ = d.WriteString(text)
		} else {
			// \x01 keeps a gap distinct from a symbol named "$<id>".
			_, _ = d.WriteString("\x01$" + strconv.Itoa(id))
		}
		_, _ = d.WriteString("\x00")
	}
}
