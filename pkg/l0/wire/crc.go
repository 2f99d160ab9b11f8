package wire

import "hash/crc32"

var crcTable = crc32.MakeTable(crc32.IEEE)

// Checksum computes the frame CRC32 (IEEE, reflected) over b.
func Checksum(b []byte) uint32 {
	return crc32.Checksum(b, crcTable)
}
