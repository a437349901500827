package apngasm

// crcTable holds the CRCs of all 8-bit values for the reversed polynomial
// 0xEDB88320. It is built once at package initialization and never written
// again.
var crcTable = makeCRCTable()

func makeCRCTable() *[256]uint32 {
	t := new([256]uint32)
	for n := range t {
		c := uint32(n)
		for range 8 {
			if c&1 != 0 {
				c = 0xedb88320 ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		t[n] = c
	}
	return t
}

// UpdateChecksum folds b into a running CRC. The running value must start
// at 0xFFFFFFFF and be complemented when done; Checksum does both.
func UpdateChecksum(crc uint32, b []byte) uint32 {
	for _, v := range b {
		crc = crcTable[byte(crc)^v] ^ (crc >> 8)
	}
	return crc
}

// Checksum returns the PNG CRC-32 of b.
func Checksum(b []byte) uint32 {
	return UpdateChecksum(0xffffffff, b) ^ 0xffffffff
}

// chunkChecksum returns the CRC stored after a chunk: it covers the type tag
// and the payload, not the length field.
func chunkChecksum(typ string, data []byte) uint32 {
	crc := uint32(0xffffffff)
	for i := 0; i < len(typ); i++ {
		crc = crcTable[byte(crc)^typ[i]] ^ (crc >> 8)
	}
	return UpdateChecksum(crc, data) ^ 0xffffffff
}
