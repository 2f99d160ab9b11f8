// Package loopback provides an in-memory transport pair.
package loopback

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/robotalks/titan.go/pkg/l0/wire"
)

const (
	// DefaultReadTimeout is how long Read waits for a chunk.
	DefaultReadTimeout = 10 * time.Millisecond
	// DefaultQueueSize is the number of chunks buffered per direction.
	DefaultQueueSize = 64
)

// ErrBusy indicates the peer hasn't drained its queue.
var ErrBusy = errors.New("loopback: busy")

// Endpoint is one side of a Pipe. Each Write is received by a single Read
// on the other side.
type Endpoint struct {
	ReadTimeout time.Duration
	Size        int

	rx   <-chan []byte
	tx   chan<- []byte
	pipe *pipe
}

type pipe struct {
	done chan struct{}
	once sync.Once
}

// Pipe creates two connected endpoints.
func Pipe() (*Endpoint, *Endpoint) {
	p := &pipe{done: make(chan struct{})}
	a2b, b2a := make(chan []byte, DefaultQueueSize), make(chan []byte, DefaultQueueSize)
	return &Endpoint{ReadTimeout: DefaultReadTimeout, Size: wire.MaxFrameSize, rx: b2a, tx: a2b, pipe: p},
		&Endpoint{ReadTimeout: DefaultReadTimeout, Size: wire.MaxFrameSize, rx: a2b, tx: b2a, pipe: p}
}

// Write implements comm.Transport.
func (e *Endpoint) Write(b []byte) error {
	if len(b) > e.Size {
		return io.ErrShortWrite
	}
	select {
	case <-e.pipe.done:
		return io.ErrClosedPipe
	default:
	}
	select {
	case e.tx <- append([]byte(nil), b...):
		return nil
	default:
		return ErrBusy
	}
}

// Read implements comm.Transport. A chunk larger than buf is truncated.
func (e *Endpoint) Read(buf []byte) (int, error) {
	select {
	case b := <-e.rx:
		return copy(buf, b), nil
	case <-e.pipe.done:
		return 0, io.EOF
	case <-time.After(e.ReadTimeout):
		return 0, nil
	}
}

// BufferSize implements comm.Transport.
func (e *Endpoint) BufferSize() int {
	return e.Size
}

// Close closes both endpoints.
func (e *Endpoint) Close() error {
	e.pipe.once.Do(func() { close(e.pipe.done) })
	return nil
}
