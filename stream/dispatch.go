package stream

// FrameFunc handles one accepted frame.
type FrameFunc func(f *Frame) error

// Dispatcher runs frames through a Cursor and hands accepted ones to the
// handler registered for their kind. Duplicates are dropped. Err frames
// without a handler become ErrRemote errors.
type Dispatcher struct {
	Cursor *Cursor

	handlers map[FrameKind]FrameFunc
	onFinal  func(sid uint64) error
}

// NewDispatcher returns a Dispatcher with a fresh Cursor.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		Cursor:   NewCursor(),
		handlers: make(map[FrameKind]FrameFunc),
	}
}

// Handle registers fn for frames of kind.
func (d *Dispatcher) Handle(kind FrameKind, fn FrameFunc) {
	d.handlers[kind] = fn
}

// OnFinal registers fn to run after a stream's final frame is handled.
func (d *Dispatcher) OnFinal(fn func(sid uint64) error) {
	d.onFinal = fn
}

// Dispatch accepts f and calls its handler.
func (d *Dispatcher) Dispatch(f *Frame) error {
	dup, err := d.Cursor.Accept(f)
	if err != nil || dup {
		return err
	}

	if fn, ok := d.handlers[f.Kind]; ok {
		err = fn(f)
	} else if f.Kind == KindErr {
		err = ErrRemote.New(f.SID, string(f.Payload))
	}
	if err != nil {
		return err
	}

	if f.Final && d.onFinal != nil {
		return d.onFinal(f.SID)
	}
	return nil
}
