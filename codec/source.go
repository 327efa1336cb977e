package codec

import (
	"bytes"
	"io"
	"strings"
)

// SourceKind names the variant held by a Source.
type SourceKind uint8

const (
	SourceString SourceKind = iota
	SourceBytes
	SourceBytesOffset
	SourceReader
)

func (k SourceKind) String() string {
	switch k {
	case SourceString:
		return "string"
	case SourceBytes:
		return "bytes"
	case SourceBytesOffset:
		return "bytes-offset"
	case SourceReader:
		return "reader"
	default:
		return "unknown"
	}
}

// Source is where a Reader takes its frames from. Build one with
// FromString, FromBytes, FromBytesOffset or FromReader.
type Source struct {
	kind   SourceKind
	text   string
	data   []byte
	offset int
	length int
	r      io.Reader
}

// FromString reads frames from s.
func FromString(s string) Source {
	return Source{kind: SourceString, text: s}
}

// FromBytes reads frames from b.
func FromBytes(b []byte) Source {
	return Source{kind: SourceBytes, data: b}
}

// FromBytesOffset reads frames from b[offset:offset+length].
func FromBytesOffset(b []byte, offset, length int) Source {
	return Source{kind: SourceBytesOffset, data: b, offset: offset, length: length}
}

// FromReader reads frames from r.
func FromReader(r io.Reader) Source {
	return Source{kind: SourceReader, r: r}
}

// Kind returns the variant held by s.
func (s Source) Kind() SourceKind { return s.kind }

func (s Source) open() (io.Reader, error) {
	switch s.kind {
	case SourceString:
		return strings.NewReader(s.text), nil
	case SourceBytes:
		return bytes.NewReader(s.data), nil
	case SourceBytesOffset:
		if s.offset < 0 || s.length < 0 || s.offset > len(s.data) || s.length > len(s.data)-s.offset {
			return nil, ErrInvalidSource.New(s.kind, "range out of bounds")
		}
		return bytes.NewReader(s.data[s.offset : s.offset+s.length]), nil
	case SourceReader:
		if s.r == nil {
			return nil, ErrInvalidSource.New(s.kind, "nil reader")
		}
		return s.r, nil
	default:
		return nil, ErrInvalidSource.New(s.kind, "unknown kind")
	}
}
