// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package adjust

import "github.com/gogpu/darkroom"

// step applies one adjustment to a pixel.
type step func(r, g, b uint8) (uint8, uint8, uint8)

// stepFor returns the scalar implementation of a.
func stepFor(a darkroom.Adjustment) step {
	switch v := a.(type) {
	case darkroom.WhiteBalance:
		kr, kg, kb := WhiteBalanceGains(v)
		return func(r, g, b uint8) (uint8, uint8, uint8) {
			return Gain(r, kr), Gain(g, kg), Gain(b, kb)
		}
	case darkroom.Exposure:
		return func(r, g, b uint8) (uint8, uint8, uint8) {
			return ExposureLevel(r, v.Value), ExposureLevel(g, v.Value), ExposureLevel(b, v.Value)
		}
	case darkroom.Contrast:
		return func(r, g, b uint8) (uint8, uint8, uint8) {
			return ContrastLevel(r, v.Value), ContrastLevel(g, v.Value), ContrastLevel(b, v.Value)
		}
	case darkroom.HighlightsShadows:
		return func(r, g, b uint8) (uint8, uint8, uint8) {
			return HighlightsShadowsPixel(v, r, g, b)
		}
	case darkroom.BlacksWhites:
		bp, wp := BlackWhitePoints(v)
		return func(r, g, b uint8) (uint8, uint8, uint8) {
			return BlacksWhitesLevel(r, bp, wp), BlacksWhitesLevel(g, bp, wp), BlacksWhitesLevel(b, bp, wp)
		}
	case darkroom.ToneCurve:
		l := v.LUTs()
		return func(r, g, b uint8) (uint8, uint8, uint8) {
			return l.RGB[l.Red[r]], l.RGB[l.Green[g]], l.RGB[l.Blue[b]]
		}
	case darkroom.SaturationVibrance:
		return func(r, g, b uint8) (uint8, uint8, uint8) {
			return SaturationVibrancePixel(v, r, g, b)
		}
	}
	return nil
}

// Reference renders p over src one pixel and one adjustment at a time,
// without tables or parallelism. It is the oracle backends are tested
// against.
func Reference(src darkroom.RawPixelData, p *darkroom.Pipeline) *darkroom.Frame {
	var steps []step
	for _, a := range p.Active() {
		a = a.Clamp()
		if a.IsNeutral() {
			continue
		}
		steps = append(steps, stepFor(a))
	}

	region := darkroom.CropRegion(p.CropRect(), src.Width, src.Height)
	out := darkroom.NewFrame(region.Width(), region.Height())
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			r, g, b := src.At(region.X0+x, region.Y0+y)
			for _, s := range steps {
				r, g, b = s(r, g, b)
			}
			i := (y*out.Width + x) * 4
			out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = r, g, b, 0xFF
		}
	}
	return out
}
