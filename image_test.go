// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package darkroom

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNewRawPixelData(t *testing.T) {
	if _, err := NewRawPixelData(2, 2, make([]byte, 12)); err != nil {
		t.Fatalf("valid buffer: %v", err)
	}
	tests := []struct {
		name string
		w, h int
		n    int
	}{
		{"short", 2, 2, 11},
		{"long", 2, 2, 13},
		{"rgba sized", 2, 2, 16},
		{"zero width", 0, 2, 0},
		{"negative height", 2, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRawPixelData(tt.w, tt.h, make([]byte, tt.n))
			if !errors.Is(err, ErrInvalidImage) {
				t.Errorf("err = %v, want ErrInvalidImage", err)
			}
		})
	}
}

func TestRawPixelDataFromImage(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 3, 2))
	rgba.Set(2, 1, color.RGBA{10, 20, 30, 255})
	d := RawPixelDataFromImage(rgba)
	if d.Width != 3 || d.Height != 2 || len(d.Pix) != 18 {
		t.Fatalf("got %dx%d with %d bytes", d.Width, d.Height, len(d.Pix))
	}
	if r, g, b := d.At(2, 1); r != 10 || g != 20 || b != 30 {
		t.Errorf("At(2, 1) = %d,%d,%d", r, g, b)
	}

	// Non-RGBA source with a non-zero origin.
	gray := image.NewGray(image.Rect(5, 5, 7, 6))
	gray.SetGray(6, 5, color.Gray{Y: 77})
	d = RawPixelDataFromImage(gray)
	if d.Width != 2 || d.Height != 1 {
		t.Fatalf("got %dx%d", d.Width, d.Height)
	}
	if r, g, b := d.At(1, 0); r != 77 || g != 77 || b != 77 {
		t.Errorf("At(1, 0) = %d,%d,%d, want 77,77,77", r, g, b)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFrameImage(t *testing.T) {
	f := NewFrame(4, 3)
	img := f.Image()
	img.Set(1, 2, color.RGBA{1, 2, 3, 255})
	if r, g, b, a := f.At(1, 2); r != 1 || g != 2 || b != 3 || a != 255 {
		t.Errorf("frame does not share pixels with Image(): %d,%d,%d,%d", r, g, b, a)
	}
	if img.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestMaxDiff(t *testing.T) {
	a, b := NewFrame(2, 2), NewFrame(2, 2)
	if got := MaxDiff(a, b); got != 0 {
		t.Errorf("equal frames: %d", got)
	}
	a.Pix[5] = 9
	b.Pix[5] = 2
	b.Pix[0] = 4
	if got := MaxDiff(a, b); got != 7 {
		t.Errorf("MaxDiff = %d, want 7", got)
	}
	if got := MaxDiff(a, NewFrame(2, 3)); got != -1 {
		t.Errorf("size mismatch: %d, want -1", got)
	}
}
