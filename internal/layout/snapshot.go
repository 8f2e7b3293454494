package layout

import "sync/atomic"

type versioned struct {
	layout  *KeyboardLayout
	version uint64
}

// Snapshot holds the current layout. Readers always observe a complete
// layout; Store replaces it in one step and bumps the version.
type Snapshot struct {
	cur atomic.Pointer[versioned]
}

// NewSnapshot returns a Snapshot holding l at version 1.
func NewSnapshot(l *KeyboardLayout) *Snapshot {
	s := &Snapshot{}
	s.cur.Store(&versioned{layout: l, version: 1})
	return s
}

// Load returns the current layout, or nil if none was stored.
func (s *Snapshot) Load() *KeyboardLayout {
	v := s.cur.Load()
	if v == nil {
		return nil
	}
	return v.layout
}

// Version returns the number of layouts stored so far.
func (s *Snapshot) Version() uint64 {
	v := s.cur.Load()
	if v == nil {
		return 0
	}
	return v.version
}

// Store publishes l and returns its version.
func (s *Snapshot) Store(l *KeyboardLayout) uint64 {
	for {
		old := s.cur.Load()
		next := &versioned{layout: l, version: 1}
		if old != nil {
			next.version = old.version + 1
		}
		if s.cur.CompareAndSwap(old, next) {
			return next.version
		}
	}
}
