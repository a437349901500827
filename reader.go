package apngasm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Reader splits a PNG file into chunks. The zero value is ready to use and
// ignores stored CRCs.
type Reader struct {
	// VerifyChecksums rejects chunks whose stored CRC does not match their
	// type and payload. Frames coming from a trusted encoder do not need it.
	VerifyChecksums bool
}

// Parse splits b into chunks with a zero Reader.
func Parse(b []byte) (FrameSet, error) {
	var r Reader
	return r.Parse(b)
}

// Parse splits b into chunks. The first chunk must be a 13-byte IHDR and the
// last an empty IEND. Payloads are copied, so the result does not alias b.
func (r *Reader) Parse(b []byte) (FrameSet, error) {
	if len(b) < len(Signature) || string(b[:len(Signature)]) != Signature {
		return nil, fmt.Errorf("%w: bad signature", ErrMalformedContainer)
	}
	c := chunkFetcher{
		bb:     bytes.NewBuffer(b[len(Signature):]),
		verify: r.VerifyChecksums,
	}
	var chunks FrameSet
	for c.bb.Len() > 0 {
		ch, err := c.next()
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %w", ErrMalformedContainer, len(chunks), err)
		}
		chunks = append(chunks, ch)
	}
	if err := checkFrameSet(chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

type chunkFetcher struct {
	bb     *bytes.Buffer
	tmp    [8]byte
	verify bool
}

func (c *chunkFetcher) next() (Chunk, error) {
	if _, err := io.ReadFull(c.bb, c.tmp[:8]); err != nil {
		return Chunk{}, fmt.Errorf("truncated chunk header: %w", io.ErrUnexpectedEOF)
	}
	length := binary.BigEndian.Uint32(c.tmp[:4])
	typ := string(c.tmp[4:8])

	// Check before allocating: the length field is untrusted.
	if uint64(c.bb.Len()) < uint64(length)+4 {
		return Chunk{}, fmt.Errorf("%s declares %d payload bytes, %d left: %w", typ, length, c.bb.Len(), io.ErrUnexpectedEOF)
	}
	data := make([]byte, length)
	copy(data, c.bb.Next(int(length)))

	stored := binary.BigEndian.Uint32(c.bb.Next(4))
	if c.verify {
		if sum := chunkChecksum(typ, data); sum != stored {
			return Chunk{}, fmt.Errorf("%s crc mismatch: stored %#08x, computed %#08x", typ, stored, sum)
		}
	}
	return Chunk{Type: typ, Data: data}, nil
}

func checkFrameSet(fs FrameSet) error {
	if len(fs) == 0 {
		return fmt.Errorf("%w: no chunks", ErrMalformedContainer)
	}
	if first := fs[0]; first.Type != TypeIHDR || len(first.Data) != ihdrLength {
		return fmt.Errorf("%w: first chunk is %s with %d bytes, want %d-byte IHDR", ErrMalformedContainer, first.Type, len(first.Data), ihdrLength)
	}
	if last := fs[len(fs)-1]; last.Type != TypeIEND || len(last.Data) != 0 {
		return fmt.Errorf("%w: last chunk is %s with %d bytes, want empty IEND", ErrMalformedContainer, last.Type, len(last.Data))
	}
	return nil
}
