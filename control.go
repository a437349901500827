package apngasm

import (
	"encoding/binary"
	"fmt"
)

// DisposeOp selects how the frame area is treated before the next frame.
type DisposeOp uint8

const (
	DisposeOpNone       DisposeOp = 0
	DisposeOpBackground DisposeOp = 1
	DisposeOpPrevious   DisposeOp = 2
)

// BlendOp selects how a frame is composited onto the output buffer.
type BlendOp uint8

const (
	BlendOpSource BlendOp = 0
	BlendOpOver   BlendOp = 1
)

// delayDenominator makes every fcTL delay a count of milliseconds.
const delayDenominator = 1000

// AnimationControl is the payload of an acTL chunk.
type AnimationControl struct {
	NumFrames uint32 // Number of frames
	NumPlays  uint32 // Number of times to loop. 0 indicates infinite looping.
}

// Chunk encodes a as an acTL chunk.
func (a AnimationControl) Chunk() Chunk {
	b := make([]byte, actlLength)
	writeUint32(b[0:4], a.NumFrames)
	writeUint32(b[4:8], a.NumPlays)
	return Chunk{Type: TypeACTL, Data: b}
}

// ParseAnimationControl decodes an acTL chunk.
func ParseAnimationControl(c Chunk) (AnimationControl, error) {
	if c.Type != TypeACTL || len(c.Data) != actlLength {
		return AnimationControl{}, fmt.Errorf("%w: not an acTL chunk (%q, %d bytes)", ErrMalformedContainer, c.Type, len(c.Data))
	}
	return AnimationControl{
		NumFrames: binary.BigEndian.Uint32(c.Data[0:4]),
		NumPlays:  binary.BigEndian.Uint32(c.Data[4:8]),
	}, nil
}

// FrameControl is the payload of an fcTL chunk.
type FrameControl struct {
	SequenceNumber uint32    // Sequence number of the animation chunk, starting from 0
	Width          uint32    // Width of the following frame
	Height         uint32    // Height of the following frame
	XOffset        uint32    // X position at which to render the following frame
	YOffset        uint32    // Y position at which to render the following frame
	DelayNum       uint16    // Frame delay fraction numerator
	DelayDen       uint16    // Frame delay fraction denominator
	DisposeOp      DisposeOp // Type of frame area disposal to be done after rendering this frame
	BlendOp        BlendOp   // Type of frame area rendering for this frame
}

// Chunk encodes f as an fcTL chunk.
func (f FrameControl) Chunk() Chunk {
	b := make([]byte, fctlLength)
	writeUint32(b[0:4], f.SequenceNumber)
	writeUint32(b[4:8], f.Width)
	writeUint32(b[8:12], f.Height)
	writeUint32(b[12:16], f.XOffset)
	writeUint32(b[16:20], f.YOffset)
	writeUint16(b[20:22], f.DelayNum)
	writeUint16(b[22:24], f.DelayDen)
	b[24] = byte(f.DisposeOp)
	b[25] = byte(f.BlendOp)
	return Chunk{Type: TypeFCTL, Data: b}
}

// ParseFrameControl decodes an fcTL chunk.
func ParseFrameControl(c Chunk) (FrameControl, error) {
	if c.Type != TypeFCTL || len(c.Data) != fctlLength {
		return FrameControl{}, fmt.Errorf("%w: not an fcTL chunk (%q, %d bytes)", ErrMalformedContainer, c.Type, len(c.Data))
	}
	b := c.Data
	return FrameControl{
		SequenceNumber: binary.BigEndian.Uint32(b[0:4]),
		Width:          binary.BigEndian.Uint32(b[4:8]),
		Height:         binary.BigEndian.Uint32(b[8:12]),
		XOffset:        binary.BigEndian.Uint32(b[12:16]),
		YOffset:        binary.BigEndian.Uint32(b[16:20]),
		DelayNum:       binary.BigEndian.Uint16(b[20:22]),
		DelayDen:       binary.BigEndian.Uint16(b[22:24]),
		DisposeOp:      DisposeOp(b[24]),
		BlendOp:        BlendOp(b[25]),
	}, nil
}

// SequenceNumber returns the sequence number that leads an fcTL or fdAT
// payload.
func SequenceNumber(c Chunk) (uint32, bool) {
	if (c.Type != TypeFCTL && c.Type != TypeFDAT) || len(c.Data) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(c.Data[0:4]), true
}
