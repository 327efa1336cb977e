package stream

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrPayloadTooLarge is returned for a payload over the reader's limit.
	ErrPayloadTooLarge = errors.NewKind("gs1: payload of %v bytes exceeds limit of %d")

	// ErrSeqGap is returned when a frame skips or repeats a sequence number.
	ErrSeqGap = errors.NewKind("gs1: sid %d: expected seq %d, got %d")

	// ErrAfterFinal is returned for a frame following its stream's final frame.
	ErrAfterFinal = errors.NewKind("gs1: sid %d: frame seq %d after end of stream")

	// ErrNoTableDigest is returned when a frame carries a base digest but no
	// table digest is known for its stream yet.
	ErrNoTableDigest = errors.NewKind("gs1: sid %d: cannot verify base without a table digest")

	// ErrRemote carries the text of an err frame.
	ErrRemote = errors.NewKind("gs1: sid %d: remote error: %s")

	// ErrMalformedSymbols is returned for a symbols payload that is not a
	// run of uvarints.
	ErrMalformedSymbols = errors.NewKind("gs1: malformed symbol id at payload offset %d")
)

// HeaderError reports a frame header that cannot be parsed.
type HeaderError struct {
	Offset int64  // stream offset of the frame
	Field  string // offending header key; empty for structural problems
	Reason string
}

func (e *HeaderError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("gs1: frame at offset %d: field %s: %s", e.Offset, e.Field, e.Reason)
	}
	return fmt.Sprintf("gs1: frame at offset %d: %s", e.Offset, e.Reason)
}

// CRCMismatchError is returned when a payload fails CRC verification.
type CRCMismatchError struct {
	Offset   int64
	Expected uint32
	Got      uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("gs1: frame at offset %d: crc mismatch: header says %s, payload is %s",
		e.Offset, formatCRC(e.Expected), formatCRC(e.Got))
}

// BaseMismatchError is returned when a frame was encoded against a
// different symbol table than the reader holds.
type BaseMismatchError struct {
	SID      uint64
	Expected uint64 // from the frame
	Got      uint64 // held by the reader
}

func (e *BaseMismatchError) Error() string {
	return fmt.Sprintf("gs1: sid %d: base digest mismatch: frame has %s, table is %s",
		e.SID, FormatDigest(e.Expected), FormatDigest(e.Got))
}
