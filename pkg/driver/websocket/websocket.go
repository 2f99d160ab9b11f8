// Package websocket provides a transport over websocket binary messages.
package websocket

import (
	"io"
	"net/url"
	"os"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/robotalks/titan.go/pkg/l0/wire"
)

// DefaultReadTimeout is used when ReadTimeout is not set.
const DefaultReadTimeout = 100 * time.Millisecond

// Transport implements comm.Transport. Each Write is sent as one binary
// message.
type Transport struct {
	ReadTimeout time.Duration

	conn      *websocket.Conn
	size      int
	writeLock sync.Mutex
}

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *Transport {
	conn.PayloadType = websocket.BinaryFrame
	return &Transport{ReadTimeout: DefaultReadTimeout, conn: conn, size: wire.MaxFrameSize}
}

// Dial connects to a ws:// or wss:// URL.
func Dial(serverURL string) (*Transport, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	origin := &url.URL{Scheme: "http", Host: u.Host}
	if u.Scheme == "wss" {
		origin.Scheme = "https"
	}
	conn, err := websocket.Dial(serverURL, "", origin.String())
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// Write implements comm.Transport.
func (t *Transport) Write(b []byte) error {
	if len(b) > t.size {
		return io.ErrShortWrite
	}
	t.writeLock.Lock()
	defer t.writeLock.Unlock()
	return websocket.Message.Send(t.conn, b)
}

// Read implements comm.Transport. A message larger than buf is truncated.
func (t *Transport) Read(buf []byte) (int, error) {
	timeout := t.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	var msg []byte
	if err := websocket.Message.Receive(t.conn, &msg); err != nil {
		if os.IsTimeout(err) {
			return 0, nil
		}
		return 0, err
	}
	return copy(buf, msg), nil
}

// BufferSize implements comm.Transport.
func (t *Transport) BufferSize() int {
	return t.size
}

// Close implements io.Closer.
func (t *Transport) Close() error {
	return t.conn.Close()
}
