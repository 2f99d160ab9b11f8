package msgs

import (
	"fmt"

	"github.com/golang/protobuf/proto"
)

// Field numbers of Credentials.
const (
	credentialsSSID     = 1
	credentialsPassword = 2

	wireVarint = 0
	wireBytes  = 2
)

// Credentials are the WiFi station credentials, encoded in protobuf wire
// format with ssid as field 1 and password as field 2.
type Credentials struct {
	SSID     string
	Password string
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c *Credentials) MarshalBinary() ([]byte, error) {
	buf := proto.NewBuffer(nil)
	if err := encodeString(buf, credentialsSSID, c.SSID); err != nil {
		return nil, err
	}
	if err := encodeString(buf, credentialsPassword, c.Password); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. A zero byte in
// place of a field key ends the message, as areas are zero padded.
func (c *Credentials) UnmarshalBinary(b []byte) error {
	*c = Credentials{}
	buf := proto.NewBuffer(b)
	for len(buf.Unread()) > 0 {
		if buf.Unread()[0] == 0 {
			break
		}
		key, err := buf.DecodeVarint()
		if err != nil {
			return err
		}
		field, wireType := key>>3, key&7
		switch wireType {
		case wireBytes:
			s, err := buf.DecodeStringBytes()
			if err != nil {
				return err
			}
			switch field {
			case credentialsSSID:
				c.SSID = s
			case credentialsPassword:
				c.Password = s
			}
		case wireVarint:
			if _, err := buf.DecodeVarint(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("credentials: field %d: unsupported wire type %d", field, wireType)
		}
	}
	return nil
}

func encodeString(buf *proto.Buffer, field uint64, s string) error {
	if s == "" {
		return nil
	}
	if err := buf.EncodeVarint(field<<3 | wireBytes); err != nil {
		return err
	}
	return buf.EncodeStringBytes(s)
}
