package ugoira

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/setanarut/apngasm"
)

// Archive is an opened ugoira ZIP.
type Archive struct {
	zr     *zip.Reader
	closer io.Closer
}

// OpenArchive opens the ZIP file at path. Close releases it.
func OpenArchive(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &Archive{zr: &rc.Reader, closer: rc}, nil
}

// NewArchive reads a ZIP of the given size from r.
func NewArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return &Archive{zr: zr}, nil
}

// Close closes the underlying file, if OpenArchive opened one.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Metadata reads the animation.json entry of the archive.
func (a *Archive) Metadata() (*Metadata, error) {
	f, err := a.zr.Open(MetadataName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoMetadata
		}
		return nil, err
	}
	defer f.Close()
	return ReadMetadata(f)
}

// Frames returns one PNG buffer and one whole-millisecond delay per metadata
// frame, in metadata order. PNG entries are returned as stored; any other
// image format is decoded and re-encoded as PNG.
func (a *Archive) Frames(meta *Metadata) ([][]byte, []int, error) {
	if meta == nil || len(meta.Frames) == 0 {
		return nil, nil, ErrNoFrames
	}
	pngs := make([][]byte, len(meta.Frames))
	delays := make([]int, len(meta.Frames))
	for i, fr := range meta.Frames {
		d, err := apngasm.Millis(fr.Delay)
		if err != nil {
			return nil, nil, fmt.Errorf("frame %d (%s): %w", i, fr.File, err)
		}
		delays[i] = d

		raw, err := fs.ReadFile(a.zr, fr.File)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil, fmt.Errorf("%w: %s", ErrMissingFrame, fr.File)
			}
			return nil, nil, err
		}
		if pngs[i], err = toPNG(raw); err != nil {
			return nil, nil, fmt.Errorf("frame %d (%s): %w", i, fr.File, err)
		}
	}
	return pngs, delays, nil
}

func toPNG(raw []byte) ([]byte, error) {
	if bytes.HasPrefix(raw, []byte(apngasm.Signature)) {
		return raw, nil
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("ugoira: decoding frame: %w", err)
	}
	// Normalize to NRGBA so every re-encoded frame gets an 8-bit IHDR.
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, nrgba); err != nil {
		return nil, fmt.Errorf("ugoira: encoding frame: %w", err)
	}
	return buf.Bytes(), nil
}

// Convert builds an APNG from the archive's frames. A nil asm uses the zero
// Assembler.
func Convert(a *Archive, meta *Metadata, asm *apngasm.Assembler) ([]byte, error) {
	if asm == nil {
		asm = new(apngasm.Assembler)
	}
	pngs, delays, err := a.Frames(meta)
	if err != nil {
		return nil, err
	}
	return asm.Encode(pngs, delays)
}
