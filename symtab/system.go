package symtab

import (
	"sync"

	"github.com/Neumenon/glyphsym/glyph"
)

// systemSymbols lists the V1 system symbols in ID order, starting at 1.
var systemSymbols = []string{
	SystemName,
	"$glyph_1_0",
	SymbolTableAnnotation,
	fieldName,
	fieldVersion,
	fieldImports,
	fieldSymbols,
	fieldMaxID,
	SharedSymbolTableAnnotation,
}

// Well-known system symbol IDs.
const (
	SidSystemName = iota + 1
	SidVersionMarker
	SidSymbolTable
	SidName
	SidVersion
	SidImports
	SidSymbols
	SidMaxID
	SidSharedSymbolTable
)

var (
	systemOnce   sync.Once
	systemTables map[int]*SharedTable
)

func loadSystemTables() {
	systemTables = make(map[int]*SharedTable, 1)

	st := &SharedTable{
		name:    SystemName,
		version: 1,
		system:  true,
		store:   newSymbolStore(0, len(systemSymbols)),
	}
	for _, s := range systemSymbols {
		st.store.appendSlot(s)
	}
	st.store.freeze()
	systemTables[1] = st
}

// System returns the process-wide system table for version.
func System(version int) (*SharedTable, error) {
	systemOnce.Do(loadSystemTables)
	st, ok := systemTables[version]
	if !ok {
		return nil, ErrUnknownSystemVersion.New(version)
	}
	return st, nil
}

// SystemTable returns the version 1 system table.
func SystemTable() *SharedTable {
	systemOnce.Do(loadSystemTables)
	return systemTables[1]
}

// IsSystemDeclaration reports whether v declares a system table by name.
func IsSystemDeclaration(v *glyph.GValue) bool {
	name, err := v.Get(fieldName).AsStr()
	return err == nil && name == SystemName
}
