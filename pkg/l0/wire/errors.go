package wire

import "fmt"

// ProtocolError is the reason a frame was rejected.
type ProtocolError int

// Protocol errors. Values match the codes used by the firmware.
const (
	ErrInvalidStartByte      ProtocolError = -1
	ErrInvalidPayloadSize    ProtocolError = -2
	ErrInvalidCommand        ProtocolError = -3
	ErrInvalidMemoryArea     ProtocolError = -4
	ErrInvalidPayloadPointer ProtocolError = -5
	ErrInvalidCrc            ProtocolError = -6
	ErrInvalidEndByte        ProtocolError = -7
	ErrInvalidAddress        ProtocolError = -8
	ErrBufferTooSmall        ProtocolError = -9
)

var protocolErrorNames = map[ProtocolError]string{
	ErrInvalidStartByte:      "invalid start byte",
	ErrInvalidPayloadSize:    "invalid payload size",
	ErrInvalidCommand:        "invalid command",
	ErrInvalidMemoryArea:     "invalid memory area",
	ErrInvalidPayloadPointer: "invalid payload pointer",
	ErrInvalidCrc:            "invalid crc",
	ErrInvalidEndByte:        "invalid end byte",
	ErrInvalidAddress:        "invalid address",
	ErrBufferTooSmall:        "buffer too small",
}

// Error implements error.
func (e ProtocolError) Error() string {
	if name, ok := protocolErrorNames[e]; ok {
		return "protocol: " + name
	}
	return fmt.Sprintf("protocol: error %d", int(e))
}

// Name returns a short identifier usable as a metric label.
func (e ProtocolError) Name() string {
	switch e {
	case ErrInvalidStartByte:
		return "start_byte"
	case ErrInvalidPayloadSize:
		return "payload_size"
	case ErrInvalidCommand:
		return "command"
	case ErrInvalidMemoryArea:
		return "memory_area"
	case ErrInvalidPayloadPointer:
		return "payload_pointer"
	case ErrInvalidCrc:
		return "crc"
	case ErrInvalidEndByte:
		return "end_byte"
	case ErrInvalidAddress:
		return "address"
	case ErrBufferTooSmall:
		return "buffer_size"
	}
	return "unknown"
}
