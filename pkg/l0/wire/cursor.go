package wire

import "encoding/binary"

// cursor walks a frame field by field. Every read fails closed when the
// remaining bytes are not enough, so offsets are never computed by hand.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

func (c *cursor) next(n int) ([]byte, bool) {
	if n < 0 || c.remaining() < n {
		return nil, false
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, true
}

func (c *cursor) uint8() (byte, bool) {
	b, ok := c.next(1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

func (c *cursor) uint16() (uint16, bool) {
	b, ok := c.next(2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

func (c *cursor) uint32() (uint32, bool) {
	b, ok := c.next(4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

// writer is the encoding side of cursor.
type writer struct {
	buf []byte
	off int
}

func (w *writer) uint8(v byte) {
	w.buf[w.off] = v
	w.off++
}

func (w *writer) uint16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[w.off:], v)
	w.off += 2
}

func (w *writer) uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

func (w *writer) bytes(b []byte) {
	w.off += copy(w.buf[w.off:], b)
}
