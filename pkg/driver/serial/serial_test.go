package serial

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePort struct {
	chunks   [][]byte
	written  []byte
	timeouts []time.Duration
	maxWrite int
	closed   bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.closed {
		return 0, io.EOF
	}
	if len(p.chunks) == 0 {
		return 0, nil
	}
	n := copy(b, p.chunks[0])
	if n < len(p.chunks[0]) {
		p.chunks[0] = p.chunks[0][n:]
	} else {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	n := len(b)
	if p.maxWrite > 0 && n > p.maxWrite {
		n = p.maxWrite
	}
	p.written = append(p.written, b[:n]...)
	return n, nil
}

func (p *fakePort) SetReadTimeout(d time.Duration) error {
	p.timeouts = append(p.timeouts, d)
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestReadCollectsChunks(t *testing.T) {
	p := &fakePort{chunks: [][]byte{{1, 2}, {3}, {4, 5, 6}}}
	tr := newTransport(p, Config{Port: "fake"})
	buf := make([]byte, 16)
	n, err := tr.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, buf[:n])
	require.Equal(t, []time.Duration{DefaultReadTimeout, DefaultByteGap}, p.timeouts)

	n, err = tr.Read(buf)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestReadBounded(t *testing.T) {
	p := &fakePort{chunks: [][]byte{{1, 2, 3, 4, 5}}}
	tr := newTransport(p, Config{BufferSize: 3, ReadTimeout: time.Second})
	require.Equal(t, 3, tr.BufferSize())
	buf := make([]byte, 16)
	n, err := tr.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, buf[:n])
	require.Equal(t, time.Second, p.timeouts[0])

	n, err = tr.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{4, 5}, buf[:n])
}

func TestWriteLoops(t *testing.T) {
	p := &fakePort{maxWrite: 2}
	tr := newTransport(p, Config{})
	require.NoError(t, tr.Write([]byte{1, 2, 3, 4, 5}))
	require.Equal(t, []byte{1, 2, 3, 4, 5}, p.written)
}

func TestClose(t *testing.T) {
	p := &fakePort{}
	tr := newTransport(p, Config{})
	require.NoError(t, tr.Close())
	_, err := tr.Read(make([]byte, 4))
	require.ErrorIs(t, err, io.EOF)
}
