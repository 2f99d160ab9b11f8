package shm

import (
	"sync"
	"sync/atomic"
)

// Area is a named, fixed-capacity, access-typed byte region.
type Area struct {
	index  uint8
	access AccessType

	lock sync.Mutex
	data []byte

	dirty  atomic.Bool
	reads  atomic.Uint64
	writes atomic.Uint64
}

// AreaStats is a snapshot of area counters.
type AreaStats struct {
	Index    uint8
	Access   AccessType
	Capacity int
	Dirty    bool
	Reads    uint64
	Writes   uint64
}

// NewArea creates a zero-filled area.
func NewArea(index uint8, capacity uint16, access AccessType) *Area {
	return &Area{
		index:  index,
		access: access,
		data:   make([]byte, capacity),
	}
}

// Index returns the registration index.
func (a *Area) Index() uint8 { return a.index }

// Access returns the access type.
func (a *Area) Access() AccessType { return a.access }

// Capacity returns the fixed size of the area.
func (a *Area) Capacity() int { return len(a.data) }

// IsDirty reports whether the area was written since the last read. It
// doesn't take the lock; the read that follows is authoritative.
func (a *Area) IsDirty() bool {
	return a.dirty.Load()
}

// Write replaces the area content with b, zero-filling the rest, and
// marks the area dirty. On error the area is left untouched.
func (a *Area) Write(b []byte) error {
	if !a.access.CanWrite() {
		return areaErr(a.index, "write", ErrAccessDenied)
	}
	if len(b) > len(a.data) {
		return areaErr(a.index, "write", ErrInvalidSize)
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	n := copy(a.data, b)
	clear(a.data[n:])
	a.dirty.Store(true)
	a.writes.Add(1)
	return nil
}

// Read copies the whole area into out and clears the dirty flag. out must
// hold at least Capacity bytes; on error out is not modified.
func (a *Area) Read(out []byte) (int, error) {
	if !a.access.CanRead() {
		return 0, areaErr(a.index, "read", ErrAccessDenied)
	}
	if len(out) < len(a.data) {
		return 0, areaErr(a.index, "read", ErrInvalidSize)
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	n := copy(out, a.data)
	a.dirty.Store(false)
	a.reads.Add(1)
	return n, nil
}

// Stats returns the current counters.
func (a *Area) Stats() AreaStats {
	return AreaStats{
		Index:    a.index,
		Access:   a.access,
		Capacity: len(a.data),
		Dirty:    a.dirty.Load(),
		Reads:    a.reads.Load(),
		Writes:   a.writes.Load(),
	}
}
