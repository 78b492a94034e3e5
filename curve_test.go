// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package darkroom

import (
	"math"
	"slices"
	"testing"
)

// -------------------------------------------------------------------
// CurveLUT Tests
// -------------------------------------------------------------------

func TestCurveLUT_Identity(t *testing.T) {
	id := IdentityLUT()
	for i, v := range id {
		if int(v) != i {
			t.Fatalf("IdentityLUT()[%d] = %d", i, v)
		}
	}

	tests := []struct {
		name string
		pts  []CurvePoint
	}{
		{"nil", nil},
		{"single point", []CurvePoint{{128, 40}}},
		{"identity pair", IdentityCurve()},
		{"identity pair reversed", []CurvePoint{{255, 255}, {0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurveLUT(tt.pts); got != id {
				t.Errorf("CurveLUT(%v) is not identity", tt.pts)
			}
		})
	}
}

func TestCurveLUT_Linear(t *testing.T) {
	lut := CurveLUT([]CurvePoint{{0, 255}, {255, 0}})
	for i, v := range lut {
		if int(v) != 255-i {
			t.Fatalf("inverted[%d] = %d, want %d", i, v, 255-i)
		}
	}

	lut = CurveLUT([]CurvePoint{{0, 20}, {255, 235}})
	for i, v := range lut {
		want := 20 + float64(i)*215/255
		if math.Abs(float64(v)-want) > 0.5 {
			t.Fatalf("lut[%d] = %d, want %.2f", i, v, want)
		}
	}
}

func TestCurveLUT_FlatOutsideRange(t *testing.T) {
	lut := CurveLUT([]CurvePoint{{50, 30}, {200, 220}})
	for i := 0; i <= 50; i++ {
		if lut[i] != 30 {
			t.Errorf("lut[%d] = %d, want 30", i, lut[i])
		}
	}
	for i := 200; i < 256; i++ {
		if lut[i] != 220 {
			t.Errorf("lut[%d] = %d, want 220", i, lut[i])
		}
	}
}

func TestCurveLUT_PassesThroughControlPoints(t *testing.T) {
	pts := []CurvePoint{{0, 0}, {64, 80}, {128, 120}, {192, 170}, {255, 255}}
	lut := CurveLUT(pts)
	for _, p := range pts {
		if got := lut[int(p.X)]; float64(got) != p.Y {
			t.Errorf("lut[%v] = %d, want %v", p.X, got, p.Y)
		}
	}
	for i := 1; i < 256; i++ {
		if lut[i] < lut[i-1] {
			t.Errorf("not monotonic at %d: %d < %d", i, lut[i], lut[i-1])
		}
	}
}

func TestCurveLUT_UnsortedInput(t *testing.T) {
	sorted := []CurvePoint{{0, 10}, {90, 70}, {170, 200}, {255, 250}}
	shuffled := []CurvePoint{{170, 200}, {0, 10}, {255, 250}, {90, 70}}
	orig := slices.Clone(shuffled)

	if CurveLUT(sorted) != CurveLUT(shuffled) {
		t.Error("point order changed the table")
	}
	if !slices.Equal(shuffled, orig) {
		t.Error("CurveLUT modified its input")
	}
}

func TestQuantizeLevel(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-3, 0},
		{0, 0},
		{0.49, 0},
		{0.5, 1},
		{127.5, 128},
		{254.6, 255},
		{300, 255},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := quantizeLevel(tt.in); got != tt.want {
			t.Errorf("quantizeLevel(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// -------------------------------------------------------------------
// ToneCurve Tests
// -------------------------------------------------------------------

func TestToneCurve_Default(t *testing.T) {
	tc := NewToneCurve()
	if !tc.IsDefault() || !tc.IsNeutral() {
		t.Error("NewToneCurve should be default")
	}
	if tc.LUTs() != IdentityCurveLUTs() {
		t.Error("default curve LUTs are not identity")
	}
	if !Default(KindToneCurve).IsNeutral() {
		t.Error("Default(KindToneCurve) is not neutral")
	}

	// Points on the diagonal are still an edit.
	tc.Green = []CurvePoint{{0, 0}, {128, 128}, {255, 255}}
	if tc.IsDefault() {
		t.Error("three diagonal points reported as default")
	}
}

func TestToneCurve_Normalize(t *testing.T) {
	tc := NewToneCurve()
	tc.RGB = []CurvePoint{{300, 260}, {-5, 10}, {128, 100}}
	n := tc.Normalize()

	want := []CurvePoint{{0, 10}, {128, 100}, {255, 255}}
	if !slices.Equal(n.RGB, want) {
		t.Errorf("Normalize().RGB = %v, want %v", n.RGB, want)
	}
	if tc.RGB[0].X != 300 {
		t.Error("Normalize modified the receiver")
	}
	if c, ok := tc.Clamp().(ToneCurve); !ok || !c.Equal(n) {
		t.Error("Clamp does not match Normalize")
	}
}

func TestToneCurve_CloneIndependent(t *testing.T) {
	tc := NewToneCurve()
	tc.Red = []CurvePoint{{0, 0}, {100, 140}, {255, 255}}
	c := tc.Clone()
	if !c.Equal(tc) {
		t.Fatal("clone differs from original")
	}
	c.Red[1].Y = 10
	if tc.Red[1].Y != 140 {
		t.Error("clone shares point storage with original")
	}
	if c.Equal(tc) {
		t.Error("Equal ignored a changed point")
	}
}

func TestToneCurve_ChannelLUTs(t *testing.T) {
	tc := NewToneCurve()
	tc.Blue = []CurvePoint{{0, 255}, {255, 0}}
	luts := tc.LUTs()
	if luts.RGB != IdentityLUT() || luts.Red != IdentityLUT() || luts.Green != IdentityLUT() {
		t.Error("untouched channels are not identity")
	}
	if luts.Blue[0] != 255 || luts.Blue[255] != 0 {
		t.Errorf("blue endpoints = %d, %d, want 255, 0", luts.Blue[0], luts.Blue[255])
	}
}
