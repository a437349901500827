package main

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/setanarut/apngasm"
	"github.com/setanarut/apngasm/ugoira"
)

// writeTestPNG writes an 8x8 frame filled with c and returns its
// path.
func writeTestPNG(t *testing.T, dir, name string, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func frameControls(t *testing.T, path string) (apngasm.AnimationControl, []apngasm.FrameControl) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	chunks, err := apngasm.Parse(b)
	require.NoError(t, err)

	actl, err := apngasm.ParseAnimationControl(chunks[1])
	require.NoError(t, err)
	var fcs []apngasm.FrameControl
	for _, c := range chunks {
		if c.Type == apngasm.TypeFCTL {
			fc, err := apngasm.ParseFrameControl(c)
			require.NoError(t, err)
			fcs = append(fcs, fc)
		}
	}
	return actl, fcs
}

func TestRunFrames(t *testing.T) {
	dir := t.TempDir()
	a := writeTestPNG(t, dir, "a.png", color.NRGBA{R: 255, A: 255})
	b := writeTestPNG(t, dir, "b.png", color.NRGBA{G: 255, A: 255})
	out := filepath.Join(dir, "anim.png")

	require.NoError(t, runFrames([]string{"-delays", "100, 250", "-loop", "2", "-o", out, a, b}))

	actl, fcs := frameControls(t, out)
	require.Equal(t, apngasm.AnimationControl{NumFrames: 2, NumPlays: 2}, actl)
	require.Len(t, fcs, 2)
	require.Equal(t, uint16(100), fcs[0].DelayNum)
	require.Equal(t, uint16(250), fcs[1].DelayNum)
}

func TestRunFramesUniformDelay(t *testing.T) {
	dir := t.TempDir()
	a := writeTestPNG(t, dir, "a.png", color.NRGBA{R: 255, A: 255})
	out := filepath.Join(dir, "anim.png")

	require.NoError(t, runFrames([]string{"-delay", "40", "-o", out, a, a, a}))
	actl, fcs := frameControls(t, out)
	require.Equal(t, uint32(3), actl.NumFrames)
	for _, fc := range fcs {
		require.Equal(t, uint16(40), fc.DelayNum)
	}
}

func TestRunFramesErrors(t *testing.T) {
	dir := t.TempDir()
	a := writeTestPNG(t, dir, "a.png", color.NRGBA{R: 255, A: 255})
	translucent := writeTestPNG(t, dir, "t.png", color.NRGBA{R: 255, A: 10})
	out := filepath.Join(dir, "anim.png")

	err := runFrames([]string{"-o", out})
	require.ErrorContains(t, err, "missing input files")

	err = runFrames([]string{"-loop", "4294967296", "-o", out, a})
	require.ErrorContains(t, err, "-loop")

	err = runFrames([]string{"-delays", "10,x", "-o", out, a, a})
	require.ErrorContains(t, err, "bad delay")

	err = runFrames([]string{"-delays", "10", "-o", out, a, a})
	require.ErrorIs(t, err, apngasm.ErrInvalidAnimationDescriptor)

	err = runFrames([]string{"-o", out, a, translucent})
	require.ErrorIs(t, err, apngasm.ErrInvalidAnimationDescriptor)

	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr), "no output on failure")
}

func TestRunUgoira(t *testing.T) {
	dir := t.TempDir()
	var frames [][]byte
	for _, c := range []color.NRGBA{{R: 255, A: 255}, {B: 255, A: 255}} {
		b, err := os.ReadFile(writeTestPNG(t, dir, "f.png", c))
		require.NoError(t, err)
		frames = append(frames, b)
	}

	archive := filepath.Join(dir, "12345_ugoira600x600.zip")
	f, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for i, name := range []string{"000000.png", "000001.png"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(frames[i])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	meta := filepath.Join(dir, "meta.json")
	require.NoError(t, os.WriteFile(meta, []byte(`{"body":{"frames":[{"file":"000000.png","delay":70},{"file":"000001.png","delay":90}]}}`), 0o644))

	err = runUgoira([]string{archive})
	require.ErrorIs(t, err, ugoira.ErrNoMetadata)

	require.NoError(t, runUgoira([]string{"-meta", meta, archive}))

	actl, fcs := frameControls(t, filepath.Join(dir, "12345_ugoira600x600.png"))
	require.Equal(t, uint32(2), actl.NumFrames)
	require.Equal(t, uint16(70), fcs[0].DelayNum)
	require.Equal(t, uint16(90), fcs[1].DelayNum)
}

func TestRunInfo(t *testing.T) {
	dir := t.TempDir()
	a := writeTestPNG(t, dir, "a.png", color.NRGBA{R: 255, A: 255})
	out := filepath.Join(dir, "anim.png")
	require.NoError(t, runFrames([]string{"-delay", "100", "-o", out, a, a}))

	var buf bytes.Buffer
	require.NoError(t, runInfo([]string{"-crc", out}, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	require.True(t, strings.HasPrefix(lines[0], "IHDR"))
	require.Contains(t, lines[1], "frames=2 plays=0")
	require.Contains(t, lines[2], "seq=0 size=8x8")
	require.Contains(t, lines[2], "delay=100/1000")
	require.Contains(t, lines[4], "seq=1")
	require.Contains(t, lines[5], "seq=2")
	require.True(t, strings.HasPrefix(lines[6], "IEND"))

	err := runInfo([]string{filepath.Join(dir, "missing.png")}, &buf)
	require.Error(t, err)
}

func TestCheckLoop(t *testing.T) {
	require.NoError(t, checkLoop(0))
	require.NoError(t, checkLoop(math.MaxUint32))
	if strconv.IntSize == 64 {
		big := uint64(math.MaxUint32) + 1
		require.ErrorContains(t, checkLoop(uint(big)), "exceeds")
	}
}

func TestOutputPath(t *testing.T) {
	require.Equal(t, "x.apng", outputPath("x.apng", "in.zip"))
	require.Equal(t, filepath.Join("dir", "in.png"), outputPath("", filepath.Join("dir", "in.zip")))
}
