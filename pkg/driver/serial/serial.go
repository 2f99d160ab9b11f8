// Package serial provides the UART transport.
package serial

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/titan.go/pkg/l0/wire"
)

// Defaults.
const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 100 * time.Millisecond
	// DefaultByteGap ends a chunk when the line is quiet for that long.
	DefaultByteGap = 5 * time.Millisecond
)

// Config specifies the port.
type Config struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
	ByteGap     time.Duration
	BufferSize  int
}

type port interface {
	io.ReadWriteCloser
	SetReadTimeout(time.Duration) error
}

// Transport implements comm.Transport over a serial port.
type Transport struct {
	port        port
	name        string
	readTimeout time.Duration
	byteGap     time.Duration
	size        int

	writeLock sync.Mutex
}

// Open opens the serial port.
func Open(conf Config) (*Transport, error) {
	baud := conf.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	p, err := serial.Open(conf.Port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("serial %s: %w", conf.Port, err)
	}
	glog.Infof("serial %s opened at %d baud", conf.Port, baud)
	return newTransport(p, conf), nil
}

func newTransport(p port, conf Config) *Transport {
	t := &Transport{
		port:        p,
		name:        conf.Port,
		readTimeout: conf.ReadTimeout,
		byteGap:     conf.ByteGap,
		size:        conf.BufferSize,
	}
	if t.readTimeout <= 0 {
		t.readTimeout = DefaultReadTimeout
	}
	if t.byteGap <= 0 {
		t.byteGap = DefaultByteGap
	}
	if t.size <= 0 {
		t.size = wire.MaxFrameSize
	}
	return t
}

// Write implements comm.Transport.
func (t *Transport) Write(b []byte) error {
	t.writeLock.Lock()
	defer t.writeLock.Unlock()
	for len(b) > 0 {
		n, err := t.port.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// Read implements comm.Transport. It waits up to the read timeout for the
// first bytes, then keeps reading until the line is quiet for the byte
// gap or buf is full.
func (t *Transport) Read(buf []byte) (int, error) {
	if len(buf) > t.size {
		buf = buf[:t.size]
	}
	if err := t.port.SetReadTimeout(t.readTimeout); err != nil {
		return 0, err
	}
	n, err := t.port.Read(buf)
	if err != nil || n == 0 {
		return n, err
	}
	if err = t.port.SetReadTimeout(t.byteGap); err != nil {
		return n, err
	}
	for n < len(buf) {
		c, err := t.port.Read(buf[n:])
		if err != nil {
			return n, err
		}
		if c == 0 {
			break
		}
		n += c
	}
	return n, nil
}

// BufferSize implements comm.Transport.
func (t *Transport) BufferSize() int {
	return t.size
}

// Close implements io.Closer.
func (t *Transport) Close() error {
	glog.Infof("serial %s closed", t.name)
	return t.port.Close()
}
