// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package darkroom

import (
	"math"
	"slices"
)

// CurvePoint is one control point of a tone curve. Both coordinates are
// levels in [0, 255].
type CurvePoint struct {
	X, Y float64
}

// IdentityCurve returns the default curve [(0,0), (255,255)].
func IdentityCurve() []CurvePoint {
	return []CurvePoint{{0, 0}, {255, 255}}
}

// isIdentityCurve reports whether pts is exactly the default pair, in order.
func isIdentityCurve(pts []CurvePoint) bool {
	return len(pts) == 2 && pts[0] == CurvePoint{0, 0} && pts[1] == CurvePoint{255, 255}
}

// ToneCurve remaps levels through four independent curves. Red, Green and
// Blue are applied to their own channel first, then RGB is applied to the
// three results.
type ToneCurve struct {
	RGB   []CurvePoint
	Red   []CurvePoint
	Green []CurvePoint
	Blue  []CurvePoint
}

// NewToneCurve returns a tone curve with all four curves at identity.
func NewToneCurve() ToneCurve {
	return ToneCurve{
		RGB:   IdentityCurve(),
		Red:   IdentityCurve(),
		Green: IdentityCurve(),
		Blue:  IdentityCurve(),
	}
}

func (ToneCurve) Kind() Kind        { return KindToneCurve }
func (ToneCurve) Reset() Adjustment { return Default(KindToneCurve) }
func (ToneCurve) sealed()           {}

// IsNeutral is IsDefault.
func (c ToneCurve) IsNeutral() bool { return c.IsDefault() }

// IsDefault is true only when all four curves are exactly the identity pair.
// A curve whose points merely lie on the diagonal is not default.
func (c ToneCurve) IsDefault() bool {
	return isIdentityCurve(c.RGB) && isIdentityCurve(c.Red) &&
		isIdentityCurve(c.Green) && isIdentityCurve(c.Blue)
}

// Clamp returns a copy with every curve sorted by X and every coordinate
// clamped to [0, 255].
func (c ToneCurve) Clamp() Adjustment { return c.Normalize() }

// Normalize returns a deep copy with every curve sorted by X and every
// coordinate clamped to [0, 255].
func (c ToneCurve) Normalize() ToneCurve {
	return ToneCurve{
		RGB:   normalizeCurve(c.RGB),
		Red:   normalizeCurve(c.Red),
		Green: normalizeCurve(c.Green),
		Blue:  normalizeCurve(c.Blue),
	}
}

// Clone returns a deep copy of c.
func (c ToneCurve) Clone() ToneCurve {
	return ToneCurve{
		RGB:   slices.Clone(c.RGB),
		Red:   slices.Clone(c.Red),
		Green: slices.Clone(c.Green),
		Blue:  slices.Clone(c.Blue),
	}
}

// Equal reports whether both tone curves hold the same points.
func (c ToneCurve) Equal(o ToneCurve) bool {
	return slices.Equal(c.RGB, o.RGB) && slices.Equal(c.Red, o.Red) &&
		slices.Equal(c.Green, o.Green) && slices.Equal(c.Blue, o.Blue)
}

// CurveLUTs holds the four generated lookup tables of a tone curve.
type CurveLUTs struct {
	RGB, Red, Green, Blue [256]uint8
}

// LUTs generates the lookup tables for all four curves.
func (c ToneCurve) LUTs() CurveLUTs {
	return CurveLUTs{
		RGB:   CurveLUT(c.RGB),
		Red:   CurveLUT(c.Red),
		Green: CurveLUT(c.Green),
		Blue:  CurveLUT(c.Blue),
	}
}

// IdentityCurveLUTs returns four identity tables.
func IdentityCurveLUTs() CurveLUTs {
	id := IdentityLUT()
	return CurveLUTs{RGB: id, Red: id, Green: id, Blue: id}
}

func normalizeCurve(pts []CurvePoint) []CurvePoint {
	out := make([]CurvePoint, len(pts))
	for i, p := range pts {
		out[i] = CurvePoint{clamp(p.X, 0, 255), clamp(p.Y, 0, 255)}
	}
	sortCurve(out)
	return out
}

func sortCurve(pts []CurvePoint) {
	slices.SortStableFunc(pts, func(a, b CurvePoint) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})
}

// IdentityLUT returns the table mapping every level to itself.
func IdentityLUT() [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = uint8(i)
	}
	return lut
}

// CurveLUT converts control points into a dense 256-entry table.
//
// Fewer than two points yield the identity table. Points are sorted by X
// (the input slice is not modified). The exact identity pair returns the
// identity table without evaluating anything. Levels left of the first
// point take its Y, levels right of the last point take its Y. Two points
// interpolate linearly; three or more use a Catmull-Rom spline per segment,
// substituting the segment's own endpoint where a neighbour is missing.
func CurveLUT(points []CurvePoint) [256]uint8 {
	if len(points) < 2 {
		return IdentityLUT()
	}
	pts := slices.Clone(points)
	sortCurve(pts)
	if isIdentityCurve(pts) {
		return IdentityLUT()
	}

	var lut [256]uint8
	first, last := pts[0], pts[len(pts)-1]

	for i := 0; i < 256 && float64(i) < first.X; i++ {
		lut[i] = quantizeLevel(first.Y)
	}

	for seg := 0; seg < len(pts)-1; seg++ {
		p1, p2 := pts[seg], pts[seg+1]
		p0, p3 := p1, p2
		if seg > 0 {
			p0 = pts[seg-1]
		}
		if seg+2 < len(pts) {
			p3 = pts[seg+2]
		}

		start := int(math.Ceil(p1.X))
		end := int(math.Floor(p2.X))
		for x := max(start, 0); x <= min(end, 255); x++ {
			span := p2.X - p1.X
			t := 0.0
			if span > 0 {
				t = (float64(x) - p1.X) / span
			}
			var y float64
			if len(pts) == 2 {
				y = p1.Y + (p2.Y-p1.Y)*t
			} else {
				y = catmullRom(p0.Y, p1.Y, p2.Y, p3.Y, t)
			}
			lut[x] = quantizeLevel(y)
		}
	}

	for i := 255; i >= 0 && float64(i) > last.X; i-- {
		lut[i] = quantizeLevel(last.Y)
	}
	return lut
}

// catmullRom evaluates the uniform Catmull-Rom segment between p1 and p2.
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * (2*p1 +
		(-p0+p2)*t +
		(2*p0-5*p1+4*p2-p3)*t2 +
		(-p0+3*p1-3*p2+p3)*t3)
}

// quantizeLevel clamps v to [0, 255] and rounds half up.
func quantizeLevel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Floor(v + 0.5))
}
