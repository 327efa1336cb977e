package stream

import (
	"io"
	"strconv"
)

// Writer encodes frames to an io.Writer. It is not safe for concurrent use.
type Writer struct {
	out      io.Writer
	crc      bool
	compress bool
	buf      []byte
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCRC adds a crc field to every frame with a payload.
func WithCRC() WriterOption {
	return func(w *Writer) { w.crc = true }
}

// WithCompression zstd-compresses every non-empty payload.
func WithCompression() WriterOption {
	return func(w *Writer) { w.compress = true }
}

// NewWriter returns a Writer over out.
func NewWriter(out io.Writer, opts ...WriterOption) *Writer {
	w := &Writer{out: out}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteFrame encodes f as one header line, its payload and a newline, in a
// single write to the underlying writer. f.CRC and f.Compressed are
// recomputed from the writer's options; f.Base and f.Final are sent as set.
func (w *Writer) WriteFrame(f *Frame) error {
	payload := f.Payload
	compressed := f.Compressed || (w.compress && len(payload) > 0)
	if compressed {
		var err error
		if payload, err = Compress(payload); err != nil {
			return err
		}
	}

	b := append(w.buf[:0], headerOpen...)
	b = append(b, "v="...)
	b = strconv.AppendInt(b, Version, 10)
	b = append(b, " sid="...)
	b = strconv.AppendUint(b, f.SID, 10)
	b = append(b, " seq="...)
	b = strconv.AppendUint(b, f.Seq, 10)
	b = append(b, " kind="...)
	b = append(b, f.Kind.String()...)
	b = append(b, " len="...)
	b = strconv.AppendInt(b, int64(len(payload)), 10)
	if (w.crc && len(payload) > 0) || f.CRC != nil {
		b = append(b, " crc="...)
		b = append(b, formatCRC(ComputeCRC(payload))...)
	}
	if f.Base != nil {
		b = append(b, " base="...)
		b = append(b, FormatDigest(*f.Base)...)
	}
	if compressed {
		b = append(b, " comp=zstd"...)
	}
	if f.Final {
		b = append(b, " final=true"...)
	}
	b = append(b, headerClose, '\n')
	b = append(b, payload...)
	b = append(b, '\n')
	w.buf = b

	_, err := w.out.Write(b)
	return err
}

// WriteSymtab writes a symtab frame carrying a GLYPH-T declaration.
func (w *Writer) WriteSymtab(sid, seq uint64, decl []byte, base *uint64) error {
	return w.WriteFrame(&Frame{SID: sid, Seq: seq, Kind: KindSymtab, Payload: decl, Base: base})
}

// WriteSymbols writes a symbols frame.
func (w *Writer) WriteSymbols(sid, seq uint64, ids []uint64, base *uint64) error {
	return w.WriteFrame(&Frame{SID: sid, Seq: seq, Kind: KindSymbols, Payload: EncodeSymbolIDs(ids), Base: base})
}

// WriteFinal writes an empty symbols frame marking the end of sid.
func (w *Writer) WriteFinal(sid, seq uint64) error {
	return w.WriteFrame(&Frame{SID: sid, Seq: seq, Kind: KindSymbols, Final: true})
}

// WriteErr writes an err frame with a text message.
func (w *Writer) WriteErr(sid, seq uint64, msg string) error {
	return w.WriteFrame(&Frame{SID: sid, Seq: seq, Kind: KindErr, Payload: []byte(msg), Final: true})
}
