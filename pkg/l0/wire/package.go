package wire

import (
	"fmt"
	"io"
)

// Package is one protocol message. It owns its payload: the bytes are
// copied in on construction and copied out by Payload and Consume, so a
// Package never aliases a transport buffer or a shared area.
type Package struct {
	uuid    uint32
	address uint16
	command Command
	area    uint8
	payload []byte
}

// NewPackage creates a Package. The payload size is the full length of
// payload, trailing zeros included.
func NewPackage(uuid uint32, address uint16, cmd Command, area uint8, payload []byte) (*Package, error) {
	if len(payload) > MaxPayloadSize {
		return nil, ErrInvalidPayloadSize
	}
	p := &Package{
		uuid:    uuid,
		address: address,
		command: cmd,
		area:    area,
		payload: make([]byte, len(payload)),
	}
	copy(p.payload, payload)
	return p, nil
}

// UUID is the session/correlation id.
func (p *Package) UUID() uint32 { return p.uuid }

// Address is the destination address.
func (p *Package) Address() uint16 { return p.address }

// Command is the carried command.
func (p *Package) Command() Command { return p.command }

// MemoryArea is the shared area index the command refers to.
func (p *Package) MemoryArea() uint8 { return p.area }

// Size is the payload length.
func (p *Package) Size() int { return len(p.payload) }

// Payload returns a copy of the payload.
func (p *Package) Payload() []byte {
	b := make([]byte, len(p.payload))
	copy(b, p.payload)
	return b
}

// Consume copies the payload into dst and returns the number of bytes
// copied. Nothing is copied if dst can't hold the whole payload.
func (p *Package) Consume(dst []byte) int {
	if len(dst) < len(p.payload) {
		return 0
	}
	return copy(dst, p.payload)
}

// FrameSize is the encoded size of the package.
func (p *Package) FrameSize() int {
	return FrameSize(len(p.payload))
}

// Bytes returns the encoded frame.
func (p *Package) Bytes() []byte {
	b := make([]byte, p.FrameSize())
	n, err := Encode(p, b)
	if err != nil {
		return nil
	}
	return b[:n]
}

// WriteTo writes the encoded frame in a single Write.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	b := make([]byte, p.FrameSize())
	n, err := Encode(p, b)
	if err != nil {
		return 0, err
	}
	written, err := w.Write(b[:n])
	return int64(written), err
}

func (p *Package) String() string {
	return fmt.Sprintf("%s uuid=%08x addr=%04x area=%d size=%d",
		p.command, p.uuid, p.address, p.area, len(p.payload))
}
