package shm

import "fmt"

// AccessType restricts the operations allowed on an area.
type AccessType uint8

// Access types.
const (
	ReadOnly AccessType = iota
	WriteOnly
	ReadWrite
)

// CanRead reports whether reads are allowed.
func (a AccessType) CanRead() bool {
	return a == ReadOnly || a == ReadWrite
}

// CanWrite reports whether writes are allowed.
func (a AccessType) CanWrite() bool {
	return a == WriteOnly || a == ReadWrite
}

// IsValid checks a is a known access type.
func (a AccessType) IsValid() bool {
	return a <= ReadWrite
}

func (a AccessType) String() string {
	switch a {
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	case ReadWrite:
		return "read-write"
	}
	return fmt.Sprintf("access(%d)", uint8(a))
}

// ParseAccessType parses the String form of an access type.
func ParseAccessType(s string) (AccessType, error) {
	switch s {
	case "read-only", "ro":
		return ReadOnly, nil
	case "write-only", "wo":
		return WriteOnly, nil
	case "read-write", "rw", "":
		return ReadWrite, nil
	}
	return 0, fmt.Errorf("unknown access type %q", s)
}
