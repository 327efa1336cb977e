package stream

import "encoding/binary"

// EncodeSymbolIDs packs IDs as consecutive uvarints.
func EncodeSymbolIDs(ids []uint64) []byte {
	if len(ids) == 0 {
		return nil
	}
	buf := make([]byte, 0, len(ids)*2)
	for _, id := range ids {
		buf = binary.AppendUvarint(buf, id)
	}
	return buf
}

// DecodeSymbolIDs unpacks a symbols payload.
func DecodeSymbolIDs(payload []byte) ([]uint64, error) {
	var ids []uint64
	for off := 0; off < len(payload); {
		id, n := binary.Uvarint(payload[off:])
		if n <= 0 {
			return nil, ErrMalformedSymbols.New(off)
		}
		ids = append(ids, id)
		off += n
	}
	return ids, nil
}
