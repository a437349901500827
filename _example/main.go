package main

import (
	"image"
	"image/color"
	"log"
	"math/rand/v2"
	"os"

	"github.com/setanarut/apngasm"
)

const FrameCount int = 30

func main() {
	paletted := make([]image.Image, FrameCount)
	rgba := make([]image.Image, FrameCount)
	delays := make([]int, FrameCount)
	for i := range FrameCount {
		paletted[i] = generatePalettedFrame(600, 200)
		rgba[i] = generateRGBAFrame(600, 200)
		delays[i] = 60
	}

	if err := apngasm.Save("outRGBA.png", rgba, delays); err != nil {
		log.Fatal(err)
	}

	a := apngasm.Assembler{KeepPalette: true}
	b, err := a.EncodeImages(paletted, delays)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("outPaletted.png", b, 0o644); err != nil {
		log.Fatal(err)
	}
}

func generateRGBAFrame(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.SetRGBA(x, y, noisePalette[rand.IntN(4)].(color.RGBA))
		}
	}
	return img
}

func generatePalettedFrame(width, height int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, width, height), noisePalette)
	for y := range height {
		for x := range width {
			img.SetColorIndex(x, y, uint8(rand.IntN(4)))
		}
	}
	return img
}

var noisePalette = []color.Color{
	color.RGBA{R: 0, G: 0, B: 0, A: 255},   // Black
	color.RGBA{R: 255, G: 0, B: 0, A: 255}, // Red
	color.RGBA{R: 0, G: 255, B: 0, A: 255}, // Green
	color.RGBA{R: 0, G: 0, B: 255, A: 255}, // Blue
}
