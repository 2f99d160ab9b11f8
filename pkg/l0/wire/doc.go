// Package wire implements the frame codec spoken between devices.
package wire

// A frame is a fixed 11-byte header, an opaque payload, a CRC32 and an
// end byte. All multi-byte fields are little-endian:
//
//	0x02 | uuid(4) | length(2) | command(1) | area(1) | address(2) | payload | crc32(4) | 0x03
//
// The CRC is computed over everything from the start byte to the end of the
// payload. It's the only integrity check: frames are neither encrypted nor
// authenticated.
//
// Decode tolerates garbage before the start byte but does not try to
// resynchronize on a later start byte once a candidate frame fails.
