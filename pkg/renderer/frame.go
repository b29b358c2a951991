package renderer

import (
	"image"
	"image/color"
)

// Frame is a rendered image: width x height RGB triples, row-major, origin top-left.
// It implements image.Image so it can be handed to any encoder as is.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8 // 3 bytes per pixel
}

// NewFrame creates a black frame
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// PixOffset returns the index of the first byte of pixel (x, y) in Pix
func (f *Frame) PixOffset(x, y int) int {
	return (y*f.Width + x) * 3
}

// SetRGB writes the color channels of c at (x, y). Alpha is dropped.
func (f *Frame) SetRGB(x, y int, c color.RGBA) {
	i := f.PixOffset(x, y)
	f.Pix[i+0] = c.R
	f.Pix[i+1] = c.G
	f.Pix[i+2] = c.B
}

// RGBAt returns the opaque color at (x, y)
func (f *Frame) RGBAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(f.Bounds())) {
		return color.RGBA{}
	}
	i := f.PixOffset(x, y)
	return color.RGBA{R: f.Pix[i+0], G: f.Pix[i+1], B: f.Pix[i+2], A: 255}
}

// ColorModel implements image.Image
func (f *Frame) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At implements image.Image
func (f *Frame) At(x, y int) color.Color {
	return f.RGBAt(x, y)
}

// Opaque lets the PNG encoder write 8-bit RGB without an alpha channel
func (f *Frame) Opaque() bool {
	return true
}
