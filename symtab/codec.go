package symtab

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/Neumenon/glyphsym/glyph"
)

// sharedTableWire is the CBOR form of a shared table declaration. Gaps are
// nil entries in Symbols.
type sharedTableWire struct {
	Name    string    `cbor:"1,keyasint"`
	Version int64     `cbor:"2,keyasint"`
	Symbols []*string `cbor:"3,keyasint,omitempty"`
	MaxID   *int64    `cbor:"4,keyasint,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("symtab: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalCBOR encodes t deterministically.
func (t *SharedTable) MarshalCBOR() ([]byte, error) {
	slots := t.store.slots(0)
	w := sharedTableWire{
		Name:    t.name,
		Version: int64(t.version),
		Symbols: make([]*string, len(slots)),
	}
	for i := range slots {
		if slots[i] != "" {
			w.Symbols[i] = &slots[i]
		}
	}
	return cborEncMode.Marshal(&w)
}

// UnmarshalSharedCBOR decodes a table written by MarshalCBOR. The result
// goes through the same validation as NewSharedTable.
func UnmarshalSharedCBOR(data []byte) (*SharedTable, error) {
	var w sharedTableWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "symtab: unmarshal shared table")
	}

	f := glyph.DefaultFactory
	elems := make([]*glyph.GValue, len(w.Symbols))
	for i, s := range w.Symbols {
		if s == nil {
			elems[i] = f.NewNull()
		} else {
			elems[i] = f.NewString(*s)
		}
	}
	fields := []glyph.MapEntry{
		glyph.FieldVal(fieldName, f.NewString(w.Name)),
		glyph.FieldVal(fieldVersion, f.NewInt(w.Version)),
		glyph.FieldVal(fieldSymbols, f.NewList(elems...)),
	}
	if w.MaxID != nil {
		fields = append(fields, glyph.FieldVal(fieldMaxID, f.NewInt(*w.MaxID)))
	}
	return NewSharedTable(f.NewStruct(SharedSymbolTableAnnotation, fields...))
}
