// Package apngasm assembles Animated PNG (APNG) files from still PNG frames.
//
// The package works on the PNG container only. Chunk payloads such as
// compressed image data are copied around as opaque bytes and never inflated.
// A typical pipeline is Parse on every frame, Assemble, then Serialize; Encode
// runs all three.
//
// For format details, see:
//
// https://wiki.mozilla.org/APNG_Specification
// https://www.w3.org/TR/PNG/
package apngasm

import "bytes"

// Signature is the fixed 8-byte header that starts every PNG file.
const Signature = "\x89PNG\r\n\x1a\n"

// Chunk type tags used by the assembler.
const (
	TypeIHDR = "IHDR"
	TypePLTE = "PLTE"
	TypeTRNS = "tRNS"
	TypeIDAT = "IDAT"
	TypeIEND = "IEND"
	TypeACTL = "acTL"
	TypeFCTL = "fcTL"
	TypeFDAT = "fdAT"
)

const (
	ihdrLength = 13
	actlLength = 8
	fctlLength = 26

	// chunkOverhead is the length, type and CRC fields around a payload.
	chunkOverhead = 12
)

// Chunk is one PNG chunk: a 4-byte type tag and its payload. The CRC is not
// stored; it is recomputed on write.
type Chunk struct {
	Type string
	Data []byte
}

// Clone returns a copy of c that shares no memory with it.
func (c Chunk) Clone() Chunk {
	return Chunk{Type: c.Type, Data: bytes.Clone(c.Data)}
}

// FrameSet is the ordered chunk sequence of one parsed still PNG.
type FrameSet []Chunk

// Header returns the payload of the leading chunk, which is IHDR for any
// FrameSet produced by Parse.
func (fs FrameSet) Header() []byte {
	if len(fs) == 0 {
		return nil
	}
	return fs[0].Data
}

// ImageData returns the IDAT chunks in file order.
func (fs FrameSet) ImageData() []Chunk {
	return fs.all(TypeIDAT)
}

// find returns the first chunk of the given type.
func (fs FrameSet) find(typ string) (Chunk, bool) {
	for _, c := range fs {
		if c.Type == typ {
			return c, true
		}
	}
	return Chunk{}, false
}

func (fs FrameSet) all(typ string) []Chunk {
	var out []Chunk
	for _, c := range fs {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

// Big-endian.
func writeUint16(b []uint8, u uint16) {
	b[0] = uint8(u >> 8)
	b[1] = uint8(u)
}

// Big-endian.
func writeUint32(b []uint8, u uint32) {
	b[0] = uint8(u >> 24)
	b[1] = uint8(u >> 16)
	b[2] = uint8(u >> 8)
	b[3] = uint8(u)
}
