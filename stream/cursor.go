package stream

import "slices"

// SIDState is what a Cursor knows about one stream.
type SIDState struct {
	Started   bool
	NextSeq   uint64
	Digest    uint64 // digest of the receiver's symbol table
	HasDigest bool
	Final     bool
}

// Cursor tracks sequence numbers and table digests per stream id.
type Cursor struct {
	states map[uint64]*SIDState
}

// NewCursor returns an empty Cursor.
func NewCursor() *Cursor {
	return &Cursor{states: make(map[uint64]*SIDState)}
}

func (c *Cursor) state(sid uint64) *SIDState {
	st, ok := c.states[sid]
	if !ok {
		st = &SIDState{}
		c.states[sid] = st
	}
	return st
}

// State returns a copy of the state of sid.
func (c *Cursor) State(sid uint64) (SIDState, bool) {
	st, ok := c.states[sid]
	if !ok {
		return SIDState{}, false
	}
	return *st, true
}

// SetDigest records the digest base fields of sid are checked against.
func (c *Cursor) SetDigest(sid, digest uint64) {
	st := c.state(sid)
	st.Digest = digest
	st.HasDigest = true
}

// Forget drops all state for sid.
func (c *Cursor) Forget(sid uint64) {
	delete(c.states, sid)
}

// SIDs returns the known stream ids in ascending order.
func (c *Cursor) SIDs() []uint64 {
	sids := make([]uint64, 0, len(c.states))
	for sid := range c.states {
		sids = append(sids, sid)
	}
	slices.Sort(sids)
	return sids
}

// Accept checks f against its stream's state and advances it. The first
// frame of a stream may carry any seq; later frames must follow on. A
// frame whose seq was already seen is reported as a duplicate and leaves
// the state untouched.
func (c *Cursor) Accept(f *Frame) (duplicate bool, err error) {
	st := c.state(f.SID)
	if st.Final {
		return false, ErrAfterFinal.New(f.SID, f.Seq)
	}
	if st.Started {
		switch {
		case f.Seq < st.NextSeq:
			return true, nil
		case f.Seq > st.NextSeq:
			return false, ErrSeqGap.New(f.SID, st.NextSeq, f.Seq)
		}
	}
	if f.Base != nil {
		if !st.HasDigest {
			return false, ErrNoTableDigest.New(f.SID)
		}
		if *f.Base != st.Digest {
			return false, &BaseMismatchError{SID: f.SID, Expected: *f.Base, Got: st.Digest}
		}
	}

	st.Started = true
	st.NextSeq = f.Seq + 1
	st.Final = f.Final
	return false, nil
}
