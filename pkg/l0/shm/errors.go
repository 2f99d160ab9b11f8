package shm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates an index outside the area table.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState indicates the index is already registered.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidSize indicates data that doesn't fit the area, or an output
	// buffer smaller than the area.
	ErrInvalidSize = errors.New("invalid size")
	// ErrNoMemory indicates nothing is registered at the index.
	ErrNoMemory = errors.New("no memory")
	// ErrAccessDenied indicates the access type forbids the operation.
	ErrAccessDenied = errors.New("access denied")
)

// AreaError records the failed operation and the area it was applied to.
type AreaError struct {
	Index uint8
	Op    string
	Err   error
}

// Error implements error.
func (e *AreaError) Error() string {
	return fmt.Sprintf("area %d: %s: %v", e.Index, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *AreaError) Unwrap() error {
	return e.Err
}

func areaErr(index uint8, op string, err error) error {
	return &AreaError{Index: index, Op: op, Err: err}
}
