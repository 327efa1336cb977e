package codec

import (
	"io"

	"go.uber.org/zap"

	"github.com/Neumenon/glyphsym/glyph"
	"github.com/Neumenon/glyphsym/stream"
	"github.com/Neumenon/glyphsym/symtab"
)

// flushThreshold is the number of buffered symbol IDs that triggers a
// symbols frame.
const flushThreshold = 1024

// Writer encodes symbols as GS1-T frames. It is the only mutator of its
// local table. The first flush declares the whole table; later flushes
// declare only symbols added since, in append form. A Writer is not safe
// for concurrent use.
type Writer struct {
	out *stream.Writer

	// table may be a read-only table shared with other writers; it is
	// replaced by a private copy on the first new symbol.
	table   *symtab.LocalTable
	catalog symtab.Catalog
	factory glyph.ValueFactory

	streamCopy bool
	sid        uint64
	seq        uint64

	pending       []uint64
	declared      bool
	declaredMaxID int

	// copyTable and copyMaxID cache the last reader table found to be a
	// prefix of ours.
	copyTable *symtab.LocalTable
	copyMaxID int

	closed bool
	logger *zap.Logger
}

// SymbolTable returns the table symbols are currently interned into.
func (w *Writer) SymbolTable() *symtab.LocalTable { return w.table }

// Catalog returns the builder's catalog.
func (w *Writer) Catalog() symtab.Catalog { return w.catalog }

// IsStreamCopyOptimized reports whether CopyFrom may copy IDs verbatim.
func (w *Writer) IsStreamCopyOptimized() bool { return w.streamCopy }

// WriteSymbol interns text and buffers its ID.
func (w *Writer) WriteSymbol(text string) error {
	if w.closed {
		return ErrWriterClosed.New()
	}
	id, err := w.intern(text)
	if err != nil {
		return err
	}
	return w.writeID(id)
}

func (w *Writer) intern(text string) (int, error) {
	if id := w.table.FindSymbol(text); id != symtab.UnknownSymbolID {
		return id, nil
	}
	if w.table.IsReadOnly() {
		w.table = w.table.Copy()
		w.logger.Debug("copied shared symbol table on first new symbol",
			zap.String("symbol", text),
			zap.Int("max_id", w.table.MaxID()))
	}
	return w.table.Intern(text)
}

// WriteSymbolID buffers an ID that is already bound (or reserved) in the
// writer's table.
func (w *Writer) WriteSymbolID(id int) error {
	if w.closed {
		return ErrWriterClosed.New()
	}
	if id < 1 || id > w.table.MaxID() {
		return symtab.ErrSymbolIDOutOfRange.New(id, w.table.MaxID())
	}
	return w.writeID(id)
}

func (w *Writer) writeID(id int) error {
	w.pending = append(w.pending, uint64(id))
	if len(w.pending) >= flushThreshold {
		return w.Flush()
	}
	return nil
}

// Flush writes any table changes followed by the buffered symbols.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrWriterClosed.New()
	}
	if err := w.flushSymtab(); err != nil {
		return err
	}
	if len(w.pending) == 0 {
		return nil
	}

	base := symtab.Digest(w.table, w.table.MaxID())
	if err := w.out.WriteSymbols(w.sid, w.nextSeq(), w.pending, &base); err != nil {
		return err
	}
	w.logger.Debug("flushed symbols", zap.Int("count", len(w.pending)), zap.Uint64("sid", w.sid))
	w.pending = w.pending[:0]
	return nil
}

func (w *Writer) flushSymtab() error {
	maxID := w.table.MaxID()

	if !w.declared {
		if len(w.pending) == 0 && maxID == w.table.SystemSymbolTable().MaxID() {
			return nil
		}
		payload := glyph.Emit(w.table.Declaration(w.factory))
		if err := w.out.WriteSymtab(w.sid, w.nextSeq(), []byte(payload), nil); err != nil {
			return err
		}
		w.declared = true
		w.declaredMaxID = maxID
		return nil
	}

	if maxID == w.declaredMaxID {
		return nil
	}
	base := symtab.Digest(w.table, w.declaredMaxID)
	payload := glyph.Emit(w.table.DeclarationAppend(w.factory, w.declaredMaxID))
	if err := w.out.WriteSymtab(w.sid, w.nextSeq(), []byte(payload), &base); err != nil {
		return err
	}
	w.declaredMaxID = maxID
	return nil
}

func (w *Writer) nextSeq() uint64 {
	seq := w.seq
	w.seq++
	return seq
}

// Close flushes and writes the final frame. Closing twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if err := w.Flush(); err != nil {
		return err
	}
	w.closed = true
	return w.out.WriteFinal(w.sid, w.nextSeq())
}

// CopyFrom writes every remaining symbol of r. With stream copy
// optimization on, IDs are copied verbatim while r's table is a prefix of
// the writer's; otherwise each symbol is re-interned by text.
func (w *Writer) CopyFrom(r *Reader) error {
	for {
		sym, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if w.streamCopy && w.isPrefix(r.SymbolTable()) {
			if err := w.WriteSymbolID(sym.ID); err != nil {
				return err
			}
			continue
		}
		if !sym.Known {
			return ErrUnknownSymbolText.New(sym.ID)
		}
		if err := w.WriteSymbol(sym.Text); err != nil {
			return err
		}
	}
}

// isPrefix reports whether IDs 1..src.MaxID() mean the same in src and in
// the writer's table.
func (w *Writer) isPrefix(src *symtab.LocalTable) bool {
	maxID := src.MaxID()
	if src == w.copyTable && maxID <= w.copyMaxID {
		return true
	}
	if maxID > w.table.MaxID() {
		return false
	}
	if symtab.Digest(src, maxID) != symtab.Digest(w.table, maxID) {
		return false
	}
	w.copyTable, w.copyMaxID = src, maxID
	return true
}
