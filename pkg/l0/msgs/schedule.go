package msgs

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	// MaxScheduleEntries is the capacity of a Schedule.
	MaxScheduleEntries = 16
	// ScheduleEntrySize is the encoded size of one ScheduleEntry.
	ScheduleEntrySize = 11
	// ScheduleSize is the area size able to hold a full Schedule.
	ScheduleSize = 1 + MaxScheduleEntries*ScheduleEntrySize

	maxIntervalMicros = uint64(math.MaxInt64 / int64(time.Microsecond))
)

// ScheduleEntry is a periodic transmission of Area to Address.
type ScheduleEntry struct {
	Address uint16
	Area    uint8
	// Interval is encoded in microseconds.
	Interval time.Duration
}

// Schedule is the list of periodic transmissions of a process.
//
// Layout: count(1) followed by count entries of
// address(2 LE) area(1) interval_us(8 LE).
type Schedule struct {
	Entries []ScheduleEntry
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Schedule) MarshalBinary() ([]byte, error) {
	if len(s.Entries) > MaxScheduleEntries {
		return nil, ErrTooManyEntries
	}
	b := make([]byte, 1+len(s.Entries)*ScheduleEntrySize)
	b[0] = byte(len(s.Entries))
	off := 1
	for _, e := range s.Entries {
		if e.Interval < 0 {
			return nil, ErrInvalidInterval
		}
		binary.LittleEndian.PutUint16(b[off:], e.Address)
		b[off+2] = e.Area
		binary.LittleEndian.PutUint64(b[off+3:], uint64(e.Interval/time.Microsecond))
		off += ScheduleEntrySize
	}
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Schedule) UnmarshalBinary(b []byte) error {
	if len(b) < 1 {
		return ErrShortBuffer
	}
	count := int(b[0])
	if count > MaxScheduleEntries {
		return ErrTooManyEntries
	}
	if len(b) < 1+count*ScheduleEntrySize {
		return ErrShortBuffer
	}
	entries := make([]ScheduleEntry, count)
	off := 1
	for i := range entries {
		us := binary.LittleEndian.Uint64(b[off+3:])
		if us > maxIntervalMicros {
			return ErrInvalidInterval
		}
		entries[i] = ScheduleEntry{
			Address:  binary.LittleEndian.Uint16(b[off:]),
			Area:     b[off+2],
			Interval: time.Duration(us) * time.Microsecond,
		}
		off += ScheduleEntrySize
	}
	s.Entries = entries
	return nil
}
