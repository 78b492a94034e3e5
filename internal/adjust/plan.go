// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package adjust

import "github.com/gogpu/darkroom"

// Lookup returns the tables for a per-channel adjustment, calling build on
// a miss. A nil Lookup always builds.
type Lookup func(a darkroom.Adjustment, build func() Tables) Tables

// Plan is a pipeline compiled into four stages:
//
//	pre:  white balance, exposure, contrast fused into one table per channel
//	hs:   highlights/shadows (per pixel)
//	post: blacks/whites and tone curve fused into one table per channel
//	sv:   saturation/vibrance (per pixel)
//
// A stage whose adjustments are all neutral is skipped.
type Plan struct {
	Pre        Tables
	PreActive  bool
	HS         darkroom.HighlightsShadows
	HSActive   bool
	Post       Tables
	PostActive bool
	SV         darkroom.SaturationVibrance
	SVActive   bool
}

// NewPlan compiles p. Adjustment values are clamped to their documented
// ranges first.
func NewPlan(p *darkroom.Pipeline, lookup Lookup) *Plan {
	if lookup == nil {
		lookup = func(_ darkroom.Adjustment, build func() Tables) Tables { return build() }
	}
	tables := func(a darkroom.Adjustment) Tables {
		return lookup(a, func() Tables {
			t, _ := TablesFor(a)
			return t
		})
	}

	pl := &Plan{Pre: IdentityTables(), Post: IdentityTables()}
	for _, a := range p.Active() {
		a = a.Clamp()
		if a.IsNeutral() {
			continue
		}
		switch v := a.(type) {
		case darkroom.WhiteBalance, darkroom.Exposure, darkroom.Contrast:
			pl.Pre = pl.Pre.Then(tables(a))
			pl.PreActive = true
		case darkroom.HighlightsShadows:
			pl.HS, pl.HSActive = v, true
		case darkroom.BlacksWhites, darkroom.ToneCurve:
			pl.Post = pl.Post.Then(tables(a))
			pl.PostActive = true
		case darkroom.SaturationVibrance:
			pl.SV, pl.SVActive = v, true
		}
	}
	return pl
}

// IsIdentity reports whether the plan leaves every pixel unchanged.
func (pl *Plan) IsIdentity() bool {
	return !pl.PreActive && !pl.HSActive && !pl.PostActive && !pl.SVActive
}

// Apply adjusts packed RGB pixels in place. len(pix) must be a multiple of 3.
func (pl *Plan) Apply(pix []byte) {
	if pl.IsIdentity() {
		return
	}
	for i := 0; i+2 < len(pix); i += 3 {
		r, g, b := pix[i], pix[i+1], pix[i+2]
		if pl.PreActive {
			r, g, b = pl.Pre[0][r], pl.Pre[1][g], pl.Pre[2][b]
		}
		if pl.HSActive {
			r, g, b = HighlightsShadowsPixel(pl.HS, r, g, b)
		}
		if pl.PostActive {
			r, g, b = pl.Post[0][r], pl.Post[1][g], pl.Post[2][b]
		}
		if pl.SVActive {
			r, g, b = SaturationVibrancePixel(pl.SV, r, g, b)
		}
		pix[i], pix[i+1], pix[i+2] = r, g, b
	}
}

// ExpandRGBA writes src RGB pixels to dst as RGBA with alpha 255.
// len(dst) must be len(src)/3*4.
func ExpandRGBA(dst, src []byte) {
	for i, j := 0, 0; i+2 < len(src); i, j = i+3, j+4 {
		dst[j] = src[i]
		dst[j+1] = src[i+1]
		dst[j+2] = src[i+2]
		dst[j+3] = 0xFF
	}
}
