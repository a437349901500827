package apngasm

import (
	"bytes"
	"fmt"
	"io"
)

// Serialize returns the PNG signature followed by every chunk with its length
// and CRC. It validates all chunks first and returns no bytes on failure.
func Serialize(chunks []Chunk) ([]byte, error) {
	size, err := encodedSize(chunks)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := WriteChunks(buf, chunks); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteChunks streams the same bytes Serialize returns to w. Chunks are
// validated before the first write.
func WriteChunks(w io.Writer, chunks []Chunk) (int64, error) {
	if _, err := encodedSize(chunks); err != nil {
		return 0, err
	}
	e := encoder{writer: w}
	e.writeString(Signature)
	for _, c := range chunks {
		e.writeChunk(c.Data, c.Type)
	}
	return e.n, e.err
}

// encodedSize checks every chunk and returns the length of the serialized
// file.
func encodedSize(chunks []Chunk) (uint64, error) {
	size := uint64(len(Signature))
	for i, c := range chunks {
		if len(c.Type) != 4 {
			return 0, fmt.Errorf("%w: chunk %d has type %q", ErrInvalidChunkType, i, c.Type)
		}
		if _, err := chunkLength(len(c.Data)); err != nil {
			return 0, fmt.Errorf("chunk %d (%s): %w", i, c.Type, err)
		}
		size += chunkOverhead + uint64(len(c.Data))
	}
	return size, nil
}

func chunkLength(n int) (uint32, error) {
	l := uint32(n)
	if n < 0 || int(l) != n {
		return 0, fmt.Errorf("%w: %d bytes", ErrChunkTooLarge, n)
	}
	return l, nil
}

type encoder struct {
	writer io.Writer
	n      int64

	tmpHeader [8]byte
	tmpFooter [4]byte

	err error
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	var n int
	n, e.err = e.writer.Write(b)
	e.n += int64(n)
}

func (e *encoder) writeString(s string) {
	if e.err != nil {
		return
	}
	var n int
	n, e.err = io.WriteString(e.writer, s)
	e.n += int64(n)
}

func (e *encoder) writeChunk(b []byte, name string) {
	if e.err != nil {
		return
	}

	// Write header (length, type).
	n, err := chunkLength(len(b))
	if err != nil {
		e.err = err
		return
	}
	writeUint32(e.tmpHeader[:4], n)
	e.tmpHeader[4] = name[0]
	e.tmpHeader[5] = name[1]
	e.tmpHeader[6] = name[2]
	e.tmpHeader[7] = name[3]
	e.write(e.tmpHeader[:8])

	// Write data.
	e.write(b)

	// Write footer (crc).
	writeUint32(e.tmpFooter[:4], chunkChecksum(name, b))
	e.write(e.tmpFooter[:4])
}
