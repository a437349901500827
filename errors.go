package apngasm

import "errors"

var (
	// ErrMalformedContainer is returned when input bytes do not form a
	// well-formed PNG chunk stream.
	ErrMalformedContainer = errors.New("apng: malformed container")

	// ErrInvalidAnimationDescriptor is returned when frames and delays cannot
	// be combined into one animation.
	ErrInvalidAnimationDescriptor = errors.New("apng: invalid animation descriptor")

	// ErrChunkTooLarge is returned when a payload does not fit the 32-bit
	// length field.
	ErrChunkTooLarge = errors.New("apng: chunk is too large")

	// ErrInvalidChunkType is returned when a chunk type tag is not 4 bytes.
	ErrInvalidChunkType = errors.New("apng: invalid chunk type")
)
