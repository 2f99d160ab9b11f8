package shm

import (
	"sync/atomic"

	"github.com/golang/glog"
)

// MaxAreas is the size of the area table.
const MaxAreas = 32

// Manager is the registry of shared areas. Each slot is written once, on
// registration, and never cleared, so lookups take no lock; only the area
// mutex is contended at runtime.
//
// One Manager is created at startup and handed to every component that
// exchanges data through it.
type Manager struct {
	areas [MaxAreas]atomic.Pointer[Area]
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register creates the area at index.
func (m *Manager) Register(index uint8, capacity uint16, access AccessType) error {
	if int(index) >= MaxAreas || !access.IsValid() {
		return areaErr(index, "register", ErrInvalidArgument)
	}
	if !m.areas[index].CompareAndSwap(nil, NewArea(index, capacity, access)) {
		return areaErr(index, "register", ErrInvalidState)
	}
	glog.V(2).Infof("area %d registered: %d bytes %s", index, capacity, access)
	return nil
}

// Area returns the area registered at index.
func (m *Manager) Area(index uint8) (*Area, error) {
	if int(index) >= MaxAreas {
		return nil, areaErr(index, "lookup", ErrInvalidArgument)
	}
	a := m.areas[index].Load()
	if a == nil {
		return nil, areaErr(index, "lookup", ErrNoMemory)
	}
	return a, nil
}

// IsRegistered reports whether an area exists at index.
func (m *Manager) IsRegistered(index uint8) bool {
	_, err := m.Area(index)
	return err == nil
}

// Write writes b into the area at index.
func (m *Manager) Write(index uint8, b []byte) error {
	a, err := m.Area(index)
	if err != nil {
		return err
	}
	return a.Write(b)
}

// Read copies the area at index into out.
func (m *Manager) Read(index uint8, out []byte) (int, error) {
	a, err := m.Area(index)
	if err != nil {
		return 0, err
	}
	return a.Read(out)
}

// ReadAll returns a copy of the whole area at index.
func (m *Manager) ReadAll(index uint8) ([]byte, error) {
	a, err := m.Area(index)
	if err != nil {
		return nil, err
	}
	out := make([]byte, a.Capacity())
	if _, err = a.Read(out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsDirty reports whether the area at index has unread data. Unknown
// indices are never dirty.
func (m *Manager) IsDirty(index uint8) bool {
	a, err := m.Area(index)
	if err != nil {
		return false
	}
	return a.IsDirty()
}

// Capacity returns the size of the area at index.
func (m *Manager) Capacity(index uint8) (int, error) {
	a, err := m.Area(index)
	if err != nil {
		return 0, err
	}
	return a.Capacity(), nil
}

// Indices lists registered indices in ascending order.
func (m *Manager) Indices() []uint8 {
	var indices []uint8
	for i := range m.areas {
		if m.areas[i].Load() != nil {
			indices = append(indices, uint8(i))
		}
	}
	return indices
}

// Stats returns counters of all registered areas.
func (m *Manager) Stats() []AreaStats {
	var stats []AreaStats
	for i := range m.areas {
		if a := m.areas[i].Load(); a != nil {
			stats = append(stats, a.Stats())
		}
	}
	return stats
}
