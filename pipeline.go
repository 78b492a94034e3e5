// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package darkroom

import "maps"

// Pipeline owns exactly one adjustment of every kind plus an optional crop.
// A new pipeline is neutral: every adjustment at its default, no crop. The
// zero value is ready to use and equally neutral.
//
// Pipeline is not safe for concurrent mutation. Backends read it only for
// the duration of a Process call; callers that keep editing while a frame
// renders should pass a Clone.
type Pipeline struct {
	adj     [kindCount]Adjustment
	crop    *CropRect
	unknown []map[string]any
}

// NewPipeline returns a neutral pipeline.
func NewPipeline() *Pipeline {
	p := &Pipeline{}
	p.ResetAll()
	return p
}

// Set replaces the adjustment of a's kind. There is never more than one
// adjustment per kind.
func (p *Pipeline) Set(a Adjustment) {
	if a == nil {
		return
	}
	if tc, ok := a.(ToneCurve); ok {
		a = tc.Clone()
	}
	p.adj[a.Kind()] = a
}

// Get returns the adjustment of the given kind.
func (p *Pipeline) Get(kind Kind) Adjustment {
	if kind >= kindCount {
		return nil
	}
	return p.at(kind)
}

// at returns the adjustment in slot kind, or its default when the slot was
// never filled.
func (p *Pipeline) at(kind Kind) Adjustment {
	if a := p.adj[kind]; a != nil {
		return a
	}
	return Default(kind)
}

// WhiteBalance returns the current white balance adjustment.
func (p *Pipeline) WhiteBalance() WhiteBalance { return p.at(KindWhiteBalance).(WhiteBalance) }

// Exposure returns the current exposure adjustment.
func (p *Pipeline) Exposure() Exposure { return p.at(KindExposure).(Exposure) }

// Contrast returns the current contrast adjustment.
func (p *Pipeline) Contrast() Contrast { return p.at(KindContrast).(Contrast) }

// HighlightsShadows returns the current highlights/shadows adjustment.
func (p *Pipeline) HighlightsShadows() HighlightsShadows {
	return p.at(KindHighlightsShadows).(HighlightsShadows)
}

// BlacksWhites returns the current blacks/whites adjustment.
func (p *Pipeline) BlacksWhites() BlacksWhites { return p.at(KindBlacksWhites).(BlacksWhites) }

// SaturationVibrance returns the current saturation/vibrance adjustment.
func (p *Pipeline) SaturationVibrance() SaturationVibrance {
	return p.at(KindSaturationVibrance).(SaturationVibrance)
}

// ToneCurve returns the current tone curve.
func (p *Pipeline) ToneCurve() ToneCurve { return p.at(KindToneCurve).(ToneCurve) }

// Adjustments returns all seven adjustments in application order.
func (p *Pipeline) Adjustments() []Adjustment {
	out := make([]Adjustment, 0, len(Order))
	for _, k := range Order {
		out = append(out, p.at(k))
	}
	return out
}

// Active returns the non-neutral adjustments in application order.
func (p *Pipeline) Active() []Adjustment {
	var out []Adjustment
	for _, k := range Order {
		if a := p.at(k); !a.IsNeutral() {
			out = append(out, a)
		}
	}
	return out
}

// IsNeutral reports whether the pipeline leaves every pixel unchanged and
// does not crop.
func (p *Pipeline) IsNeutral() bool {
	return p.crop == nil && len(p.Active()) == 0
}

// Reset restores one kind to its default.
func (p *Pipeline) Reset(kind Kind) {
	if kind < kindCount {
		p.adj[kind] = Default(kind)
	}
}

// ResetAll restores every adjustment to its default. The crop is kept.
func (p *Pipeline) ResetAll() {
	for k := Kind(0); k < kindCount; k++ {
		p.adj[k] = Default(k)
	}
}

// SetCrop sets the crop rectangle. FullFrame clears the crop.
func (p *Pipeline) SetCrop(c CropRect) {
	if c.IsFull() {
		p.crop = nil
		return
	}
	p.crop = &c
}

// ClearCrop removes the crop.
func (p *Pipeline) ClearCrop() { p.crop = nil }

// Crop returns the crop rectangle and whether one is set.
func (p *Pipeline) Crop() (CropRect, bool) {
	if p.crop == nil {
		return FullFrame, false
	}
	return *p.crop, true
}

// CropRect returns the crop as a pointer suitable for CropRegion. It is nil
// when no crop is set.
func (p *Pipeline) CropRect() *CropRect {
	if p.crop == nil {
		return nil
	}
	c := *p.crop
	return &c
}

// OutputSize returns the dimensions a backend produces for a w x h source.
func (p *Pipeline) OutputSize(w, h int) (int, int) {
	r := CropRegion(p.crop, w, h)
	return r.Width(), r.Height()
}

// Unknown returns the imported entries whose type was not recognized.
// They are exported again unchanged.
func (p *Pipeline) Unknown() []map[string]any {
	out := make([]map[string]any, len(p.unknown))
	for i, m := range p.unknown {
		out[i] = maps.Clone(m)
	}
	return out
}

// Clone returns a deep copy of p.
func (p *Pipeline) Clone() *Pipeline {
	c := &Pipeline{}
	for k := Kind(0); k < kindCount; k++ {
		c.adj[k] = p.at(k)
	}
	c.adj[KindToneCurve] = p.ToneCurve().Clone()
	if p.crop != nil {
		cr := *p.crop
		c.crop = &cr
	}
	c.unknown = p.Unknown()
	return c
}
