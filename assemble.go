package apngasm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// colorTypePaletted is the IHDR color type of images that need a PLTE chunk.
const colorTypePaletted = 3

// maxDelay is the largest delay, in milliseconds, an fcTL numerator can hold
// over the fixed denominator of 1000.
const maxDelay = math.MaxUint16

// Assembler combines still frames into one animation. The zero value loops
// forever and emits exactly IHDR, acTL, then the frames.
type Assembler struct {
	// LoopCount is written as acTL num_plays. 0 indicates infinite looping.
	LoopCount uint32

	// KeepPalette copies frame 0's PLTE and tRNS chunks in front of acTL.
	// Every frame must then carry the same palette, since an APNG has one.
	// Paletted frames are rejected without it.
	KeepPalette bool
}

// Assemble combines frames with a zero Assembler.
func Assemble(frames []FrameSet, delays []int) ([]Chunk, error) {
	var a Assembler
	return a.Assemble(frames, delays)
}

// Assemble returns the chunks of an animated PNG showing frames[i] for
// delays[i] milliseconds. Frame 0's IDAT chunks are kept as the default
// image; later frames are converted to fdAT. All inputs are validated before
// any chunk is built, and the result shares no memory with frames.
func (a *Assembler) Assemble(frames []FrameSet, delays []int) ([]Chunk, error) {
	if err := a.validate(frames, delays); err != nil {
		return nil, err
	}

	ihdr := frames[0][0]
	width := binary.BigEndian.Uint32(ihdr.Data[0:4])
	height := binary.BigEndian.Uint32(ihdr.Data[4:8])

	n := 2 + len(frames) + 1
	for _, fs := range frames {
		n += len(fs)
	}
	out := make([]Chunk, 0, n)

	out = append(out, ihdr.Clone())
	if a.KeepPalette {
		for _, typ := range []string{TypePLTE, TypeTRNS} {
			if c, ok := frames[0].find(typ); ok {
				out = append(out, c.Clone())
			}
		}
	}
	out = append(out, AnimationControl{
		NumFrames: uint32(len(frames)),
		NumPlays:  a.LoopCount,
	}.Chunk())

	var seq sequence
	for i, fs := range frames {
		out = append(out, FrameControl{
			SequenceNumber: seq.next(),
			Width:          width,
			Height:         height,
			DelayNum:       uint16(delays[i]),
			DelayDen:       delayDenominator,
		}.Chunk())

		for _, c := range fs.ImageData() {
			if i == 0 {
				out = append(out, c.Clone())
				continue
			}
			data := make([]byte, 4+len(c.Data))
			writeUint32(data[0:4], seq.next())
			copy(data[4:], c.Data)
			out = append(out, Chunk{Type: TypeFDAT, Data: data})
		}
	}

	out = append(out, Chunk{Type: TypeIEND})
	return out, nil
}

func (a *Assembler) validate(frames []FrameSet, delays []int) error {
	if len(frames) == 0 {
		return fmt.Errorf("%w: need at least one frame", ErrInvalidAnimationDescriptor)
	}
	if len(frames) != len(delays) {
		return fmt.Errorf("%w: %d frames but %d delays", ErrInvalidAnimationDescriptor, len(frames), len(delays))
	}
	if uint64(len(frames)) > math.MaxUint32 {
		return fmt.Errorf("%w: too many frames", ErrInvalidAnimationDescriptor)
	}

	for i, fs := range frames {
		if err := checkFrameSet(fs); err != nil {
			return fmt.Errorf("%w: frame %d: %w", ErrInvalidAnimationDescriptor, i, err)
		}
	}
	header := frames[0].Header()
	for i, fs := range frames[1:] {
		if !bytes.Equal(fs.Header(), header) {
			return fmt.Errorf("%w: frame %d IHDR differs from frame 0", ErrInvalidAnimationDescriptor, i+1)
		}
	}

	if header[9] == colorTypePaletted && !a.KeepPalette {
		return fmt.Errorf("%w: paletted frames need KeepPalette", ErrInvalidAnimationDescriptor)
	}

	for i, d := range delays {
		if d < 0 || d > maxDelay {
			return fmt.Errorf("%w: frame %d delay %dms outside [0, %d]", ErrInvalidAnimationDescriptor, i, d, maxDelay)
		}
	}

	if a.KeepPalette {
		for _, typ := range []string{TypePLTE, TypeTRNS} {
			want, _ := frames[0].find(typ)
			for i, fs := range frames[1:] {
				got, _ := fs.find(typ)
				if got.Type != want.Type || !bytes.Equal(got.Data, want.Data) {
					return fmt.Errorf("%w: frame %d %s differs from frame 0", ErrInvalidAnimationDescriptor, i+1, typ)
				}
			}
		}
	}

	// Each fcTL and fdAT takes one sequence number.
	var total uint64
	for i, fs := range frames {
		total++
		if i > 0 {
			total += uint64(len(fs.ImageData()))
		}
	}
	if total > math.MaxUint32+1 {
		return fmt.Errorf("%w: %d sequence numbers needed", ErrInvalidAnimationDescriptor, total)
	}
	return nil
}

// Millis converts a delay in milliseconds to the integer an fcTL numerator
// stores. Fractional, negative and oversized values are rejected.
func Millis(ms float64) (int, error) {
	if math.IsNaN(ms) || ms != math.Trunc(ms) || ms < 0 || ms > maxDelay {
		return 0, fmt.Errorf("%w: delay %vms is not a whole number in [0, %d]", ErrInvalidAnimationDescriptor, ms, maxDelay)
	}
	return int(ms), nil
}

// sequence hands out fcTL and fdAT sequence numbers across the whole file.
type sequence uint32

func (s *sequence) next() uint32 {
	n := uint32(*s)
	*s++
	return n
}
