package apngasm

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
)

// Encode parses every PNG in pngs, assembles them with a zero Assembler and
// returns the serialized APNG file.
func Encode(pngs [][]byte, delays []int) ([]byte, error) {
	var a Assembler
	return a.Encode(pngs, delays)
}

// Encode parses every PNG in pngs, assembles them and returns the serialized
// APNG file. Nothing is returned unless every step succeeds.
func (a *Assembler) Encode(pngs [][]byte, delays []int) ([]byte, error) {
	frames := make([]FrameSet, len(pngs))
	for i, b := range pngs {
		fs, err := Parse(b)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		frames[i] = fs
	}
	chunks, err := a.Assemble(frames, delays)
	if err != nil {
		return nil, err
	}
	return Serialize(chunks)
}

// EncodeImages encodes every image as a still PNG and assembles the results.
// The encoder must pick the same IHDR for every image, so mixing opaque and
// translucent frames of one image type fails.
//
// Images obtained via image.SubImage() are not supported, If an image is a
// sub-image, copy it into a new image before encoding.
//
// Paletted images keep the palette of the first frame, which every frame must
// share.
func EncodeImages(images []image.Image, delays []int) ([]byte, error) {
	a := Assembler{KeepPalette: paletted(images)}
	return a.EncodeImages(images, delays)
}

// paletted reports whether image/png will store the first image with a
// palette.
func paletted(images []image.Image) bool {
	if len(images) == 0 || images[0] == nil {
		return false
	}
	pal, ok := images[0].ColorModel().(color.Palette)
	return ok && len(pal) <= 256
}

// EncodeImages is like the package-level EncodeImages but assembles with a.
// Paletted images need KeepPalette and one shared palette.
func (a *Assembler) EncodeImages(images []image.Image, delays []int) ([]byte, error) {
	pngs, err := encodePNGs(images)
	if err != nil {
		return nil, err
	}
	return a.Encode(pngs, delays)
}

// Save writes the APNG built from images and delays to filePath.
func Save(filePath string, images []image.Image, delays []int) error {
	b, err := EncodeImages(images, delays)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, b, 0o644)
}

// encodePNGs runs image/png over all images in parallel. Results keep the
// order of images.
func encodePNGs(images []image.Image) ([][]byte, error) {
	out := make([][]byte, len(images))
	errs := make([]error, len(images))
	for i, img := range images {
		if img == nil {
			return nil, fmt.Errorf("%w: frame %d is nil", ErrInvalidAnimationDescriptor, i)
		}
	}

	var wg sync.WaitGroup
	for i, img := range images {
		wg.Add(1)
		go func(index int, img image.Image) {
			defer wg.Done()
			bb := &bytes.Buffer{}
			if err := png.Encode(bb, img); err != nil {
				errs[index] = fmt.Errorf("apng: png encoding error for frame %d: %w", index, err)
				return
			}
			out[index] = bb.Bytes()
		}(i, img)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
