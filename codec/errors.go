package codec

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrWriterClosed is returned when writing to a closed Writer.
	ErrWriterClosed = errors.NewKind("writer is closed")

	// ErrUnknownSymbolText is returned when a symbol with no known text must
	// be re-interned into another table.
	ErrUnknownSymbolText = errors.NewKind("symbol id %d has no known text")

	// ErrInvalidSource is returned when a Source cannot be opened.
	ErrInvalidSource = errors.NewKind("invalid %s source: %s")

	// ErrBadSymtabFrame is returned when a symtab frame does not hold a
	// symbol table declaration.
	ErrBadSymtabFrame = errors.NewKind("bad symtab frame seq %d: %s")
)
