// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package darkroom

import (
	"fmt"
	"image"
)

// RawPixelData is a decoded 8-bit RGB image: Width*Height*3 bytes,
// row-major, no padding, no alpha. Backends never modify Pix.
type RawPixelData struct {
	Width  int
	Height int
	Pix    []byte
}

// NewRawPixelData validates the buffer length against the dimensions.
func NewRawPixelData(width, height int, pix []byte) (RawPixelData, error) {
	d := RawPixelData{Width: width, Height: height, Pix: pix}
	if err := d.Validate(); err != nil {
		return RawPixelData{}, err
	}
	return d, nil
}

// Validate checks that the dimensions are positive and Pix holds exactly
// Width*Height*3 bytes.
func (d RawPixelData) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, d.Width, d.Height)
	}
	if want := d.Width * d.Height * 3; len(d.Pix) != want {
		return fmt.Errorf("%w: have %d bytes, want %d for %dx%d RGB",
			ErrInvalidImage, len(d.Pix), want, d.Width, d.Height)
	}
	return nil
}

// RawPixelDataFromImage flattens any image into an RGB buffer, dropping alpha.
func RawPixelDataFromImage(img image.Image) RawPixelData {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h*3)

	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w*4]
			out := pix[y*w*3 : (y+1)*w*3]
			for x := 0; x < w; x++ {
				out[x*3+0] = row[x*4+0]
				out[x*3+1] = row[x*4+1]
				out[x*3+2] = row[x*4+2]
			}
		}
	default:
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				pix[i+0] = uint8(r >> 8)
				pix[i+1] = uint8(g >> 8)
				pix[i+2] = uint8(bl >> 8)
				i += 3
			}
		}
	}
	return RawPixelData{Width: w, Height: h, Pix: pix}
}

// At returns the RGB triple at (x, y).
func (d RawPixelData) At(x, y int) (r, g, b uint8) {
	i := (y*d.Width + x) * 3
	return d.Pix[i], d.Pix[i+1], d.Pix[i+2]
}

// Frame is backend output: Width*Height*4 bytes of RGBA, alpha always 255.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// NewFrame allocates a frame of the given size. Pixels are zero.
func NewFrame(width, height int) *Frame {
	return &Frame{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

// Image wraps the frame's pixels as an *image.RGBA without copying.
func (f *Frame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// At returns the RGBA quadruple at (x, y).
func (f *Frame) At(x, y int) (r, g, b, a uint8) {
	i := (y*f.Width + x) * 4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]
}

// MaxDiff returns the largest per-channel difference between two frames of
// equal size, or -1 if their dimensions differ.
func MaxDiff(a, b *Frame) int {
	if a.Width != b.Width || a.Height != b.Height || len(a.Pix) != len(b.Pix) {
		return -1
	}
	worst := 0
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		worst = max(worst, d)
	}
	return worst
}
