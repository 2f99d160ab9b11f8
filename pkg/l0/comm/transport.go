package comm

import "github.com/robotalks/titan.go/pkg/l0/wire"

// Link level acknowledgement bytes.
const (
	AckByte byte = 0x06
	NakByte byte = 0x15
)

var (
	// Ack is sent after a request was handled.
	Ack = []byte{AckByte}
	// Nak is sent after a request failed or a frame was rejected.
	Nak = []byte{NakByte}
)

// Transport is a byte oriented link to peers.
type Transport interface {
	// Write sends b in one go.
	Write(b []byte) error
	// Read receives into buf. It returns 0 with no error when nothing
	// arrived within the transport's own timeout.
	Read(buf []byte) (int, error)
	// BufferSize is the largest chunk the transport sends or receives in
	// one call.
	BufferSize() int
}

func bufferSize(t Transport) int {
	if n := t.BufferSize(); n > 0 {
		return n
	}
	return wire.MaxFrameSize
}

// isAckOrNak checks if b is a bare acknowledgement.
func isAckOrNak(b []byte) (ack, ok bool) {
	if len(b) != 1 {
		return false, false
	}
	switch b[0] {
	case AckByte:
		return true, true
	case NakByte:
		return false, true
	}
	return false, false
}
