package codec

import (
	"io"

	"go.uber.org/zap"

	"github.com/Neumenon/glyphsym/glyph"
	"github.com/Neumenon/glyphsym/stream"
	"github.com/Neumenon/glyphsym/symtab"
)

// Symbol is one decoded symbol. Text is the placeholder "$<id>" when the
// ID has no known text.
type Symbol struct {
	ID    int
	Text  string
	Known bool
}

// Reader decodes a GS1-T symbol stream, rebuilding the writer's local
// table from symtab frames. It follows the stream id of the first frame it
// sees and skips frames of other streams. A Reader is not safe for
// concurrent use.
type Reader struct {
	frames   *stream.Reader
	dispatch *stream.Dispatcher

	system  *symtab.SharedTable
	catalog symtab.Catalog
	table   *symtab.LocalTable

	sid     uint64
	started bool
	pending []uint64
	done    bool

	// degraded is set while the table imports a substitute; base digests
	// cannot be checked then since the import's text is unknown here.
	degraded bool

	frameOpts []stream.ReaderOption
	logger    *zap.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithReaderCatalog resolves imports named by symtab frames.
func WithReaderCatalog(cat symtab.Catalog) ReaderOption {
	return func(r *Reader) {
		r.catalog = cat
	}
}

// WithReaderLogger sets the reader's logger.
func WithReaderLogger(l *zap.Logger) ReaderOption {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFrameOptions passes options to the underlying frame reader.
func WithFrameOptions(opts ...stream.ReaderOption) ReaderOption {
	return func(r *Reader) {
		r.frameOpts = append(r.frameOpts, opts...)
	}
}

// NewReader opens src.
func NewReader(src Source, opts ...ReaderOption) (*Reader, error) {
	in, err := src.open()
	if err != nil {
		return nil, err
	}

	r := &Reader{
		system: symtab.SystemTable(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.table, err = symtab.NewLocalTable(r.system); err != nil {
		return nil, err
	}
	r.frames = stream.NewReader(in, r.frameOpts...)
	r.dispatch = stream.NewDispatcher()
	r.dispatch.Handle(stream.KindSymtab, r.onSymtab)
	r.dispatch.Handle(stream.KindSymbols, r.onSymbols)
	r.dispatch.OnFinal(func(uint64) error {
		r.done = true
		return nil
	})
	return r, nil
}

// SymbolTable returns the table in effect for the symbols read so far.
func (r *Reader) SymbolTable() *symtab.LocalTable { return r.table }

// Next returns the next symbol, or io.EOF at the end of the stream.
func (r *Reader) Next() (Symbol, error) {
	for len(r.pending) == 0 {
		if r.done {
			return Symbol{}, io.EOF
		}
		if err := r.readFrame(); err != nil {
			return Symbol{}, err
		}
	}

	id := int(r.pending[0])
	r.pending = r.pending[1:]
	if id < 1 || id > r.table.MaxID() {
		return Symbol{}, symtab.ErrSymbolIDOutOfRange.New(id, r.table.MaxID())
	}
	text, ok := r.table.FindKnownSymbol(id)
	if !ok {
		text = symtab.UnknownSymbolText(id)
	}
	return Symbol{ID: id, Text: text, Known: ok}, nil
}

// ReadAll returns the text of every remaining symbol.
func (r *Reader) ReadAll() ([]string, error) {
	var out []string
	for {
		sym, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, sym.Text)
	}
}

func (r *Reader) readFrame() error {
	frame, err := r.frames.Next()
	if err == io.EOF {
		// A stream cut short of its final frame still ends cleanly.
		r.done = true
		return nil
	}
	if err != nil {
		return err
	}

	if !r.started {
		r.started = true
		r.sid = frame.SID
		r.dispatch.Cursor.SetDigest(r.sid, symtab.Digest(r.table, r.table.MaxID()))
	}
	if frame.SID != r.sid {
		r.logger.Debug("skipping frame of other stream", zap.Uint64("sid", frame.SID))
		return nil
	}
	if r.degraded && frame.Base != nil {
		r.dispatch.Cursor.SetDigest(r.sid, *frame.Base)
	}
	return r.dispatch.Dispatch(frame)
}

func (r *Reader) onSymtab(f *stream.Frame) error {
	decl, err := glyph.Parse(string(f.Payload))
	if err != nil {
		return ErrBadSymtabFrame.New(f.Seq, err.Error())
	}
	table, err := symtab.NewLocalTableFromDeclaration(r.system, r.catalog, decl, r.table)
	if err != nil {
		return err
	}
	r.table = table
	r.dispatch.Cursor.SetDigest(f.SID, symtab.Digest(table, table.MaxID()))

	wasDegraded := r.degraded
	r.degraded = false
	for _, imp := range table.ImportedTables() {
		if imp.IsSubstitute() {
			r.degraded = true
			if !wasDegraded {
				r.logger.Warn("import not in catalog, reading with substitute",
					zap.Stringer("import", imp))
			}
		}
	}

	r.logger.Debug("symbol table updated",
		zap.Uint64("seq", f.Seq),
		zap.Int("max_id", table.MaxID()),
		zap.Int("imports", len(table.ImportedTables())))
	return nil
}

func (r *Reader) onSymbols(f *stream.Frame) error {
	ids, err := stream.DecodeSymbolIDs(f.Payload)
	if err != nil {
		return err
	}
	r.pending = append(r.pending, ids...)
	return nil
}
