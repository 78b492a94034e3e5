// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package adjust holds the per-step color formulas shared by every backend.
//
// The scalar functions here are the normative definition. Per-channel steps
// are also exposed as 256-entry tables; because every step quantizes its
// result to an integer level, chaining tables is exactly equivalent to
// chaining the scalar functions.
package adjust

import (
	"math"

	"github.com/gogpu/darkroom"
)

// Luma weights (ITU-R BT.601).
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Quantize clamps v to [0, 255] and rounds half up. NaN maps to 0.
func Quantize(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Floor(v + 0.5))
}

// Luma returns 0.299R + 0.587G + 0.114B in level units [0, 255].
func Luma(r, g, b uint8) float64 {
	return lumaR*float64(r) + lumaG*float64(g) + lumaB*float64(b)
}

// WhiteBalanceGains returns the per-channel multipliers for a white balance.
//
// Warmer temperatures raise red and lower blue by up to 30% at the range
// ends; cooler ones do the opposite. Tint scales green by up to 20%, and a
// magenta (positive) tint also lifts red and blue by up to 10%.
func WhiteBalanceGains(a darkroom.WhiteBalance) (r, g, b float64) {
	t := (a.Temperature - darkroom.NeutralTemperature) / 4500
	n := a.Tint / darkroom.MaxTint

	r = 1 + 0.3*t
	b = 1 - 0.3*t
	g = 1 - 0.2*n
	if n > 0 {
		r *= 1 + 0.1*n
		b *= 1 + 0.1*n
	}
	return r, g, b
}

// Gain multiplies a level and quantizes.
func Gain(v uint8, k float64) uint8 {
	return Quantize(float64(v) * k)
}

// ExposureLevel scales v by 2^ev.
func ExposureLevel(v uint8, ev float64) uint8 {
	return Gain(v, math.Exp2(ev))
}

// ContrastLevel stretches v around 128 by 1 + c/100.
func ContrastLevel(v uint8, c float64) uint8 {
	return Quantize((float64(v)-128)*(1+c/100) + 128)
}

// BlackWhitePoints returns the remapped black and white points. Positive
// values move a point by half a level per unit, negative by 0.3.
func BlackWhitePoints(a darkroom.BlacksWhites) (bp, wp float64) {
	if a.Blacks > 0 {
		bp = a.Blacks * 0.5
	} else {
		bp = a.Blacks * 0.3
	}
	wp = 255
	if a.Whites > 0 {
		wp += a.Whites * 0.5
	} else {
		wp += a.Whites * 0.3
	}
	return bp, wp
}

// BlacksWhitesLevel remaps v linearly so bp goes to 0 and wp to 255.
func BlacksWhitesLevel(v uint8, bp, wp float64) uint8 {
	return Quantize((float64(v) - bp) / (wp - bp) * 255)
}

// HighlightsShadowsFactor returns the multiplier for a pixel of the given
// luma. Pixels darker than mid-gray follow shadows, the rest highlights;
// the effect grows linearly toward black and white respectively.
func HighlightsShadowsFactor(a darkroom.HighlightsShadows, luma float64) float64 {
	l := luma / 255
	if l < 0.5 {
		return 1 + (a.Shadows/100)*(1-2*l)
	}
	return 1 + (a.Highlights/100)*(2*l-1)
}

// HighlightsShadowsPixel applies highlights/shadows to one pixel.
func HighlightsShadowsPixel(a darkroom.HighlightsShadows, r, g, b uint8) (uint8, uint8, uint8) {
	k := HighlightsShadowsFactor(a, Luma(r, g, b))
	return Gain(r, k), Gain(g, k), Gain(b, k)
}

// SaturationVibranceFactor returns the blend factor around gray. Vibrance is
// attenuated by the pixel's existing chroma (max - min), so muted pixels
// move more than saturated ones.
func SaturationVibranceFactor(a darkroom.SaturationVibrance, r, g, b uint8) float64 {
	hi := max(r, g, b)
	lo := min(r, g, b)
	chroma := float64(hi-lo) / 255
	return (1 + a.Saturation/100) * (1 + (a.Vibrance/100)*(1-chroma))
}

// SaturationVibrancePixel applies saturation/vibrance to one pixel.
func SaturationVibrancePixel(a darkroom.SaturationVibrance, r, g, b uint8) (uint8, uint8, uint8) {
	gray := Luma(r, g, b)
	k := SaturationVibranceFactor(a, r, g, b)
	blend := func(v uint8) uint8 { return Quantize(gray + (float64(v)-gray)*k) }
	return blend(r), blend(g), blend(b)
}
