package comm

import (
	"errors"
	"io"
	"net"
)

var (
	// ErrNoTransport indicates the process has no transport installed.
	ErrNoTransport = errors.New("no transport")
	// ErrNotConfigured indicates the process has no device address.
	ErrNotConfigured = errors.New("address not configured")
	// ErrAlreadyInstalled indicates Install was called twice.
	ErrAlreadyInstalled = errors.New("transport already installed")
	// ErrAlreadyConfigured indicates Configure was called twice.
	ErrAlreadyConfigured = errors.New("address already configured")
	// ErrInvalidAddress indicates a reserved device address.
	ErrInvalidAddress = errors.New("invalid device address")
	// ErrUnreadableArea indicates a request or schedule area the process
	// can't read.
	ErrUnreadableArea = errors.New("area not readable")
	// ErrNak indicates the peer rejected the request.
	ErrNak = errors.New("negative acknowledgement")
	// ErrNoReply indicates the peer acknowledged a read without answering it.
	ErrNoReply = errors.New("no reply")
)

// IsClosed reports whether err means the transport is gone for good.
func IsClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}
