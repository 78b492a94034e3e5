// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package testimage generates deterministic source images for tests.
package testimage

import (
	"math/rand"

	"github.com/gogpu/darkroom"
)

// Uniform returns a w x h image of uniformly random RGB values.
func Uniform(w, h int, seed uint64) darkroom.RawPixelData {
	rng := rand.New(rand.NewSource(int64(seed))) //nolint:gosec // deterministic test data
	pix := make([]byte, w*h*3)
	for i := range pix {
		pix[i] = uint8(rng.Intn(256))
	}
	return darkroom.RawPixelData{Width: w, Height: h, Pix: pix}
}

// Scene returns a photo-like image: a diagonal luminance ramp with a warm
// cast on the left, a cool cast on the right and mild per-pixel noise.
func Scene(w, h int, seed uint64) darkroom.RawPixelData {
	rng := rand.New(rand.NewSource(int64(seed) + 1)) //nolint:gosec // deterministic test data
	pix := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := 255 * float64(x+y) / float64(max(w+h-2, 1))
			warm := 20 * (0.5 - float64(x)/float64(max(w-1, 1)))
			noise := rng.NormFloat64() * 6
			i := (y*w + x) * 3
			pix[i+0] = clampByte(base + warm + noise)
			pix[i+1] = clampByte(base + noise)
			pix[i+2] = clampByte(base - warm + noise)
		}
	}
	return darkroom.RawPixelData{Width: w, Height: h, Pix: pix}
}

// Solid returns a w x h image filled with one color.
func Solid(w, h int, r, g, b uint8) darkroom.RawPixelData {
	pix := make([]byte, w*h*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = r, g, b
	}
	return darkroom.RawPixelData{Width: w, Height: h, Pix: pix}
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
