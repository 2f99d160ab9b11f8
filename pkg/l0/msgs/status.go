package msgs

// ConnectionStatusSize is the encoded size of ConnectionStatus.
const ConnectionStatusSize = 2

// ConnectionStatus reports the state of the access point and the station
// interfaces of the network task.
type ConnectionStatus struct {
	APStatus  byte
	STAStatus byte
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *ConnectionStatus) MarshalBinary() ([]byte, error) {
	return []byte{s.APStatus, s.STAStatus}, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *ConnectionStatus) UnmarshalBinary(b []byte) error {
	if len(b) < ConnectionStatusSize {
		return ErrShortBuffer
	}
	s.APStatus, s.STAStatus = b[0], b[1]
	return nil
}
