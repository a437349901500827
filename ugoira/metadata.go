// Package ugoira turns Pixiv animation archives into APNG files.
//
// An archive is a ZIP of numbered frame images. Frame order and per-frame
// delays come from separate JSON metadata shaped like Pixiv's
// ugoira_meta response, or from an animation.json entry inside the archive:
//
//	{"frames": [{"file": "000000.jpg", "delay": 100}, ...]}
package ugoira

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNoFrames is returned when metadata lists no frames.
	ErrNoFrames = errors.New("ugoira: no frames")

	// ErrMissingFrame is returned when metadata names a file the archive
	// does not contain.
	ErrMissingFrame = errors.New("ugoira: missing frame")

	// ErrNoMetadata is returned when an archive has no embedded metadata.
	ErrNoMetadata = errors.New("ugoira: no metadata")
)

// MetadataName is the archive entry read by Archive.Metadata.
const MetadataName = "animation.json"

// Frame names one image in the archive and how long it is shown.
type Frame struct {
	File  string  `json:"file"`
	Delay float64 `json:"delay"` // milliseconds
}

// Metadata describes the frame sequence of an archive.
type Metadata struct {
	Frames   []Frame `json:"frames"`
	MimeType string  `json:"mime_type,omitempty"`
}

// metadataEnvelope matches the Pixiv API response, which nests the metadata
// under "body".
type metadataEnvelope struct {
	Body *Metadata `json:"body"`
}

// ReadMetadata decodes frame metadata from r. Both the bare form and the
// {"body": {...}} API envelope are accepted.
func ReadMetadata(r io.Reader) (*Metadata, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var env metadataEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("ugoira: decoding metadata: %w", err)
	}
	meta := env.Body
	if meta == nil {
		meta = new(Metadata)
		if err := json.Unmarshal(raw, meta); err != nil {
			return nil, fmt.Errorf("ugoira: decoding metadata: %w", err)
		}
	}
	if len(meta.Frames) == 0 {
		return nil, ErrNoFrames
	}
	return meta, nil
}
