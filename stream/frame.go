// Package stream implements GS1-T, the line-framed transport that carries
// symbol streams.
//
// Every frame is a header line followed by exactly len payload bytes and a
// newline:
//
//	@frame{v=1 sid=3 seq=0 kind=symtab len=32}
//	$glyph_symbol_table{symbols=[a]}
//
// Frames are multiplexed by stream id (sid) and ordered by a per-sid
// sequence number. Optional header fields add a CRC-32 of the wire payload
// (crc), the digest of the symbol table the frame was encoded against
// (base), zstd payload compression (comp) and the end-of-stream marker
// (final).
//
// Symtab frames carry GLYPH-T symbol table declarations; symbols frames
// carry uvarint-encoded symbol IDs.
package stream

import "strconv"

// Version is the GS1 protocol version written and accepted.
const Version = 1

// MaxPayloadSize is the default limit on a frame's payload, before and
// after decompression.
const MaxPayloadSize = 64 << 20

// FrameKind is the payload type of a frame.
type FrameKind uint8

const (
	KindSymtab  FrameKind = 0 // GLYPH-T local symbol table declaration
	KindSymbols FrameKind = 1 // uvarint symbol IDs
	KindErr     FrameKind = 2 // UTF-8 error text
)

var kindNames = [...]string{
	KindSymtab:  "symtab",
	KindSymbols: "symbols",
	KindErr:     "err",
}

func (k FrameKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind" + strconv.Itoa(int(k))
}

// ParseKind accepts a kind name or its decimal number.
func ParseKind(s string) (FrameKind, bool) {
	for k, name := range kindNames {
		if s == name {
			return FrameKind(k), true
		}
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || int(n) >= len(kindNames) {
		return 0, false
	}
	return FrameKind(n), true
}

// Frame is one decoded GS1-T frame. Payload always holds the plain bytes;
// compression and the CRC only exist on the wire.
type Frame struct {
	SID     uint64
	Seq     uint64
	Kind    FrameKind
	Payload []byte

	CRC        *uint32 // CRC-32 of the wire payload, if sent
	Base       *uint64 // digest of the symbol table in effect, if sent
	Compressed bool    // payload travels zstd-compressed
	Final      bool    // last frame of its sid
}

// HasBase reports whether the frame names the table it was encoded against.
func (f *Frame) HasBase() bool { return f.Base != nil }
