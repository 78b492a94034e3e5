// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package darkroom

import "math"

// CropRect is a normalized crop rectangle. All edges are fractions of the
// source dimensions in [0, 1] with Left < Right and Top < Bottom.
type CropRect struct {
	Left, Top, Right, Bottom float64
}

// FullFrame is the crop that selects the whole image. It is treated as no crop.
var FullFrame = CropRect{0, 0, 1, 1}

// IsFull reports whether c is exactly (0, 0, 1, 1).
func (c CropRect) IsFull() bool { return c == FullFrame }

// Valid reports whether every edge is within [0, 1] and the rectangle has
// positive area.
func (c CropRect) Valid() bool {
	in := func(v float64) bool { return v >= 0 && v <= 1 }
	return in(c.Left) && in(c.Top) && in(c.Right) && in(c.Bottom) &&
		c.Left < c.Right && c.Top < c.Bottom
}

// Sanitize clamps every edge to [0, 1]. A rectangle that is empty or
// inverted after clamping becomes FullFrame.
func (c CropRect) Sanitize() CropRect {
	s := CropRect{
		Left:   clamp(c.Left, 0, 1),
		Top:    clamp(c.Top, 0, 1),
		Right:  clamp(c.Right, 0, 1),
		Bottom: clamp(c.Bottom, 0, 1),
	}
	if s.Left >= s.Right || s.Top >= s.Bottom {
		return FullFrame
	}
	return s
}

// Region is a pixel rectangle [X0, X1) x [Y0, Y1) inside a source image.
type Region struct {
	X0, Y0, X1, Y1 int
}

// Width returns the number of columns in r.
func (r Region) Width() int { return r.X1 - r.X0 }

// Height returns the number of rows in r.
func (r Region) Height() int { return r.Y1 - r.Y0 }

// IsFull reports whether r covers a whole w x h image.
func (r Region) IsFull(w, h int) bool {
	return r.X0 == 0 && r.Y0 == 0 && r.X1 == w && r.Y1 == h
}

// CropRegion converts a normalized crop into pixel bounds for a w x h source.
//
// A nil or full-frame crop yields the whole image without any rounding.
// Otherwise each edge is rounded to the nearest pixel on its own, so the
// output width is round(Right*w) - round(Left*w) and never the rounded
// product of the span. Bounds are clamped to the image; a degenerate result
// keeps at least one pixel in each direction.
//
// Both backends derive their iteration domain from this function.
func CropRegion(c *CropRect, w, h int) Region {
	if c == nil || c.IsFull() {
		return Region{0, 0, w, h}
	}
	s := c.Sanitize()
	r := Region{
		X0: roundEdge(s.Left, w),
		Y0: roundEdge(s.Top, h),
		X1: roundEdge(s.Right, w),
		Y1: roundEdge(s.Bottom, h),
	}
	if r.X1 <= r.X0 {
		r.X0, r.X1 = fitSpan(r.X0, w)
	}
	if r.Y1 <= r.Y0 {
		r.Y0, r.Y1 = fitSpan(r.Y0, h)
	}
	return r
}

func roundEdge(frac float64, n int) int {
	v := int(math.Round(frac * float64(n)))
	return min(max(v, 0), n)
}

// fitSpan returns a one-pixel span starting at or before start.
func fitSpan(start, n int) (int, int) {
	if n == 0 {
		return 0, 0
	}
	if start >= n {
		start = n - 1
	}
	return start, start + 1
}
