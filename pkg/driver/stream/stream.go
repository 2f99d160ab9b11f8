// Package stream provides a transport over a stream connection, e.g. a TCP
// bridge to a serial line.
package stream

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/titan.go/pkg/l0/wire"
)

// DefaultReadTimeout is used when Config.ReadTimeout is not set.
const DefaultReadTimeout = 100 * time.Millisecond

const lenPrefixSize = 4

// ErrChunkTooLarge indicates a length prefix larger than the buffer size.
var ErrChunkTooLarge = errors.New("stream: chunk too large")

// Config specifies the transport.
type Config struct {
	ReadTimeout time.Duration
	BufferSize  int
	// Framed prefixes each chunk with its 4-byte little-endian length so
	// every Write arrives as a single Read on the other side.
	Framed bool
}

// Transport implements comm.Transport over a net.Conn.
type Transport struct {
	conn   net.Conn
	reader *bufio.Reader
	conf   Config

	writeLock sync.Mutex
}

// New wraps an established connection.
func New(conn net.Conn, conf Config) *Transport {
	if conf.ReadTimeout <= 0 {
		conf.ReadTimeout = DefaultReadTimeout
	}
	if conf.BufferSize <= 0 {
		conf.BufferSize = wire.MaxFrameSize
	}
	return &Transport{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, conf.BufferSize+lenPrefixSize),
		conf:   conf,
	}
}

// Dial connects to a TCP address.
func Dial(ctx context.Context, address string, conf Config) (*Transport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	glog.Infof("stream connected to %s", conn.RemoteAddr())
	return New(conn, conf), nil
}

// Write implements comm.Transport.
func (t *Transport) Write(b []byte) error {
	if len(b) > t.conf.BufferSize {
		return io.ErrShortWrite
	}
	t.writeLock.Lock()
	defer t.writeLock.Unlock()
	if t.conf.Framed {
		var prefix [lenPrefixSize]byte
		binary.LittleEndian.PutUint32(prefix[:], uint32(len(b)))
		if _, err := t.conn.Write(prefix[:]); err != nil {
			return err
		}
	}
	_, err := t.conn.Write(b)
	return err
}

// Read implements comm.Transport.
func (t *Transport) Read(buf []byte) (int, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.conf.ReadTimeout)); err != nil {
		return 0, err
	}
	var n int
	var err error
	if t.conf.Framed {
		n, err = t.readChunk(buf)
	} else {
		n, err = t.reader.Read(buf)
	}
	if err != nil && os.IsTimeout(err) {
		return n, nil
	}
	return n, err
}

// readChunk only consumes a chunk once it's completely buffered, so a
// timeout never leaves the stream in the middle of a chunk.
func (t *Transport) readChunk(buf []byte) (int, error) {
	prefix, err := t.reader.Peek(lenPrefixSize)
	if err != nil {
		return 0, err
	}
	size := int(binary.LittleEndian.Uint32(prefix))
	if size > t.conf.BufferSize {
		return 0, ErrChunkTooLarge
	}
	chunk, err := t.reader.Peek(lenPrefixSize + size)
	if err != nil {
		return 0, err
	}
	n := copy(buf, chunk[lenPrefixSize:])
	_, err = t.reader.Discard(lenPrefixSize + size)
	return n, err
}

// BufferSize implements comm.Transport.
func (t *Transport) BufferSize() int {
	return t.conf.BufferSize
}

// Close implements io.Closer.
func (t *Transport) Close() error {
	return t.conn.Close()
}
