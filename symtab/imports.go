package symtab

import (
	"fmt"

	"github.com/Neumenon/glyphsym/glyph"
)

// ImportDescriptor is one entry of a local table's imports list.
type ImportDescriptor struct {
	Name    string
	Version int
	// MaxID is the declared block size, or -1 when not declared.
	MaxID int
}

func (d ImportDescriptor) String() string {
	if d.MaxID < 0 {
		return fmt.Sprintf("%s/%d", d.Name, d.Version)
	}
	return fmt.Sprintf("%s/%d(max_id=%d)", d.Name, d.Version, d.MaxID)
}

// ParseImports reads an imports list. Entries without a usable name, and
// entries naming the system table, are skipped. A missing or non-positive
// version reads as 1; a negative or non-int max_id reads as undeclared.
func ParseImports(v *glyph.GValue) []ImportDescriptor {
	elems, err := v.AsList()
	if err != nil {
		return nil
	}

	out := make([]ImportDescriptor, 0, len(elems))
	for _, elem := range elems {
		if t := elem.Type(); t != glyph.TypeMap && t != glyph.TypeStruct {
			continue
		}
		name, err := elem.Get(fieldName).AsStr()
		if err != nil || name == "" || name == SystemName {
			continue
		}

		d := ImportDescriptor{Name: name, Version: 1, MaxID: -1}
		if n, err := elem.Get(fieldVersion).AsInt(); err == nil && n >= 1 && n <= int64(maxInt) {
			d.Version = int(n)
		}
		if n, err := elem.Get(fieldMaxID).AsInt(); err == nil && n >= 0 && n <= int64(maxInt) {
			d.MaxID = int(n)
		}
		out = append(out, d)
	}
	return out
}

// ResolveImport finds the table for d in cat (which may be nil):
//   - an exact match with no declared max_id, or a matching one, is used as is;
//   - otherwise, when max_id is declared, a substitute of exactly max_id IDs
//     is built from the best match (or from nothing);
//   - otherwise the import cannot be placed and ErrUnresolvedImport is
//     returned.
func ResolveImport(cat Catalog, d ImportDescriptor) (*SharedTable, error) {
	var found *SharedTable
	if cat != nil {
		found = cat.Table(d.Name, d.Version)
	}

	exact := found != nil && found.Version() == d.Version
	if exact && (d.MaxID < 0 || d.MaxID == found.MaxID()) {
		return found, nil
	}
	if d.MaxID < 0 {
		return nil, ErrUnresolvedImport.New(d.Name, d.Version)
	}
	return newSubstitute(d.Name, d.Version, d.MaxID, found), nil
}
