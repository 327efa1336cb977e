package symtab

import "sync"

// symbolStore is the two-way text/ID mapping behind every table kind.
// IDs run from base+1 to base+len(byID); an empty slot is a gap with no
// text. A text is bound in both directions or not at all.
type symbolStore struct {
	mu     sync.Mutex
	base   int
	byText map[string]int
	byID   []string
	frozen bool
}

func newSymbolStore(base, capacity int) *symbolStore {
	return &symbolStore{
		base:   base,
		byText: make(map[string]int, capacity),
		byID:   make([]string, 0, capacity),
	}
}

// appendSlot binds text to the next ID. Empty or already-bound text
// becomes a gap. Reports whether text was bound.
func (s *symbolStore) appendSlot(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(text)
}

func (s *symbolStore) appendLocked(text string) bool {
	if text == "" {
		s.byID = append(s.byID, "")
		return false
	}
	if _, dup := s.byText[text]; dup {
		s.byID = append(s.byID, "")
		return false
	}
	s.byID = append(s.byID, text)
	s.byText[text] = s.base + len(s.byID)
	return true
}

// padTo extends the store with gaps up to maxID.
func (s *symbolStore) padTo(maxID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.base+len(s.byID) < maxID {
		s.byID = append(s.byID, "")
	}
}

// intern returns the ID bound to text, binding it first when the store is
// not frozen. added is false when the text was already present.
func (s *symbolStore) intern(text string) (id int, added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byText[text]; ok {
		return id, false, nil
	}
	if s.frozen {
		return 0, false, errFrozen
	}
	s.appendLocked(text)
	return s.base + len(s.byID), true, nil
}

var errFrozen = stdError("frozen")

func (s *symbolStore) find(text string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byText[text]
	return id, ok
}

func (s *symbolStore) text(id int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := id - s.base - 1
	if i < 0 || i >= len(s.byID) || s.byID[i] == "" {
		return "", false
	}
	return s.byID[i], true
}

func (s *symbolStore) maxID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base + len(s.byID)
}

// slots returns the texts bound after fromID, gaps as "".
func (s *symbolStore) slots(fromID int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := fromID - s.base
	if start < 0 {
		start = 0
	}
	if start >= len(s.byID) {
		return nil
	}
	out := make([]string, len(s.byID)-start)
	copy(out, s.byID[start:])
	return out
}

func (s *symbolStore) freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

func (s *symbolStore) isFrozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}

// clone returns an unfrozen copy.
func (s *symbolStore) clone() *symbolStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &symbolStore{
		base:   s.base,
		byText: make(map[string]int, len(s.byText)),
		byID:   make([]string, len(s.byID)),
	}
	copy(c.byID, s.byID)
	for k, v := range s.byText {
		c.byText[k] = v
	}
	return c
}
