package msgs

import (
	"encoding"
	"errors"
	"fmt"

	"github.com/robotalks/titan.go/pkg/l0/shm"
)

var (
	// ErrShortBuffer indicates the data is too short for the payload.
	ErrShortBuffer = errors.New("short buffer")
	// ErrTooManyEntries indicates a schedule exceeding MaxScheduleEntries.
	ErrTooManyEntries = errors.New("too many entries")
	// ErrInvalidInterval indicates a negative or unrepresentable interval.
	ErrInvalidInterval = errors.New("invalid interval")
)

// Serializable is a payload stored in a shared area.
type Serializable interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Load reads the area at index and decodes it into msg.
func Load(m *shm.Manager, index uint8, msg Serializable) error {
	data, err := m.ReadAll(index)
	if err != nil {
		return err
	}
	if err = msg.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("area %d: decode %T: %w", index, msg, err)
	}
	return nil
}

// Store encodes msg into the area at index.
func Store(m *shm.Manager, index uint8, msg Serializable) error {
	data, err := msg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("area %d: encode %T: %w", index, msg, err)
	}
	return m.Write(index, data)
}
