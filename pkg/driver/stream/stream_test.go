package stream

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func pipe(t *testing.T, conf Config) (*Transport, *Transport) {
	a, b := net.Pipe()
	ta, tb := New(a, conf), New(b, conf)
	t.Cleanup(func() {
		ta.Close()
		tb.Close()
	})
	return ta, tb
}

func TestRaw(t *testing.T) {
	a, b := pipe(t, Config{ReadTimeout: 20 * time.Millisecond})
	buf := make([]byte, 16)
	n, err := b.Read(buf)
	require.NoError(t, err)
	require.Zero(t, n)

	go func() { a.Write([]byte{1, 2, 3}) }()
	require.Eventually(t, func() bool {
		n, err = b.Read(buf)
		return err == nil && n > 0
	}, time.Second, time.Millisecond)
	require.Equal(t, []byte{1, 2, 3}, buf[:n])
}

func TestFramed(t *testing.T) {
	a, b := pipe(t, Config{ReadTimeout: 20 * time.Millisecond, Framed: true})
	go func() {
		a.Write([]byte{1, 2, 3})
		a.Write([]byte{4})
	}()
	buf := make([]byte, 16)
	var chunks [][]byte
	require.Eventually(t, func() bool {
		n, err := b.Read(buf)
		if err == nil && n > 0 {
			chunks = append(chunks, append([]byte(nil), buf[:n]...))
		}
		return len(chunks) == 2
	}, time.Second, time.Millisecond)
	require.Equal(t, [][]byte{{1, 2, 3}, {4}}, chunks)
}

func TestFramedTooLarge(t *testing.T) {
	a, b := pipe(t, Config{ReadTimeout: 100 * time.Millisecond, Framed: true, BufferSize: 8})
	require.Equal(t, 8, b.BufferSize())
	require.Error(t, a.Write(make([]byte, 9)))

	raw := a.conn
	go func() { raw.Write([]byte{0xff, 0, 0, 0}) }()
	require.Eventually(t, func() bool {
		_, err := b.Read(make([]byte, 8))
		return err == ErrChunkTooLarge
	}, time.Second, time.Millisecond)
}

func TestClosed(t *testing.T) {
	a, b := pipe(t, Config{})
	require.NoError(t, a.Close())
	_, err := b.Read(make([]byte, 4))
	require.Error(t, err)
}
