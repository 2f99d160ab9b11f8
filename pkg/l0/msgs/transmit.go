package msgs

import "encoding/binary"

// TransmitRequestSize is the encoded size of TransmitRequest.
const TransmitRequestSize = 3

// TransmitRequest asks a process to send the content of Area to the
// peer at Address once.
type TransmitRequest struct {
	Address uint16
	Area    uint8
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *TransmitRequest) MarshalBinary() ([]byte, error) {
	b := make([]byte, TransmitRequestSize)
	binary.LittleEndian.PutUint16(b, r.Address)
	b[2] = r.Area
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *TransmitRequest) UnmarshalBinary(b []byte) error {
	if len(b) < TransmitRequestSize {
		return ErrShortBuffer
	}
	r.Address = binary.LittleEndian.Uint16(b)
	r.Area = b[2]
	return nil
}
