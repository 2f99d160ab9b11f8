package wire

import "bytes"

// Frame constants.
const (
	StartByte byte = 0x02
	EndByte   byte = 0x03

	// HeaderSize covers start byte, uuid, length, command, area and address.
	HeaderSize = 11
	CRCSize    = 4
	EndSize    = 1
	Overhead   = HeaderSize + CRCSize + EndSize

	MaxPayloadSize = 1024
	MaxFrameSize   = MaxPayloadSize + Overhead
)

// Reserved addresses.
const (
	// BroadcastAddress is accepted by every device.
	BroadcastAddress uint16 = 0xFFFF
	// InvalidAddress is never accepted on the wire.
	InvalidAddress uint16 = 0xFFFE
)

// FrameSize returns the encoded size of a frame carrying payloadLen bytes.
func FrameSize(payloadLen int) int {
	return payloadLen + Overhead
}

// Decode extracts a Package from buf. The first start byte found marks the
// frame; anything before it is ignored.
//
// The declared length is bounded before the payload is touched. The CRC is
// then verified before the command and address are interpreted, so a
// corrupted header is reported as ErrInvalidCrc unless the corrupted
// length no longer fits buf, which is ErrInvalidPayloadPointer.
func Decode(buf []byte) (*Package, error) {
	start := bytes.IndexByte(buf, StartByte)
	if start < 0 {
		return nil, ErrInvalidStartByte
	}
	c := cursor{buf: buf, off: start + 1}

	uuid, ok := c.uint32()
	if !ok {
		return nil, ErrInvalidPayloadPointer
	}
	length, ok := c.uint16()
	if !ok {
		return nil, ErrInvalidPayloadPointer
	}
	if length > MaxPayloadSize {
		return nil, ErrInvalidPayloadSize
	}
	cmd, ok := c.uint8()
	if !ok {
		return nil, ErrInvalidPayloadPointer
	}
	area, ok := c.uint8()
	if !ok {
		return nil, ErrInvalidPayloadPointer
	}
	address, ok := c.uint16()
	if !ok {
		return nil, ErrInvalidPayloadPointer
	}
	payload, ok := c.next(int(length))
	if !ok {
		return nil, ErrInvalidPayloadPointer
	}

	covered := buf[start:c.off]
	crc, ok := c.uint32()
	if !ok || Checksum(covered) != crc {
		return nil, ErrInvalidCrc
	}
	if end, ok := c.uint8(); !ok || end != EndByte {
		return nil, ErrInvalidEndByte
	}

	if !Command(cmd).IsValid() {
		return nil, ErrInvalidCommand
	}
	if address == InvalidAddress {
		return nil, ErrInvalidAddress
	}
	return NewPackage(uuid, address, Command(cmd), area, payload)
}

// Encode writes p as a frame into buf and returns the number of bytes
// written.
func Encode(p *Package, buf []byte) (int, error) {
	if p == nil {
		return 0, ErrInvalidPayloadPointer
	}
	if len(p.payload) > MaxPayloadSize {
		return 0, ErrInvalidPayloadSize
	}
	if len(buf) < p.FrameSize() {
		return 0, ErrBufferTooSmall
	}
	w := writer{buf: buf}
	w.uint8(StartByte)
	w.uint32(p.uuid)
	w.uint16(uint16(len(p.payload)))
	w.uint8(byte(p.command))
	w.uint8(p.area)
	w.uint16(p.address)
	w.bytes(p.payload)
	w.uint32(Checksum(buf[:w.off]))
	w.uint8(EndByte)
	return w.off, nil
}
