// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package adjust

import (
	"math"

	"github.com/gogpu/darkroom"
)

// LUT is a 256-entry level mapping.
type LUT = [256]uint8

// Tables holds one LUT per channel, in R, G, B order.
type Tables [3]LUT

// IdentityTables maps every channel level to itself.
func IdentityTables() Tables {
	id := darkroom.IdentityLUT()
	return Tables{id, id, id}
}

func uniform(l LUT) Tables { return Tables{l, l, l} }

// Then returns the tables that apply t first and next second.
func (t Tables) Then(next Tables) Tables {
	var out Tables
	for c := range out {
		for i := range out[c] {
			out[c][i] = next[c][t[c][i]]
		}
	}
	return out
}

// IsIdentity reports whether every channel maps each level to itself.
func (t Tables) IsIdentity() bool {
	for c := range t {
		for i, v := range t[c] {
			if int(v) != i {
				return false
			}
		}
	}
	return true
}

// WhiteBalanceTables builds per-channel gain tables.
func WhiteBalanceTables(a darkroom.WhiteBalance) Tables {
	kr, kg, kb := WhiteBalanceGains(a)
	var t Tables
	for i := range 256 {
		v := uint8(i)
		t[0][i] = Gain(v, kr)
		t[1][i] = Gain(v, kg)
		t[2][i] = Gain(v, kb)
	}
	return t
}

// ExposureTables builds the 2^ev gain table for all channels.
func ExposureTables(a darkroom.Exposure) Tables {
	k := math.Exp2(a.Value)
	var l LUT
	for i := range l {
		l[i] = Gain(uint8(i), k)
	}
	return uniform(l)
}

// ContrastTables builds the contrast table for all channels.
func ContrastTables(a darkroom.Contrast) Tables {
	var l LUT
	for i := range l {
		l[i] = ContrastLevel(uint8(i), a.Value)
	}
	return uniform(l)
}

// BlacksWhitesTables builds the black/white point remap for all channels.
func BlacksWhitesTables(a darkroom.BlacksWhites) Tables {
	bp, wp := BlackWhitePoints(a)
	var l LUT
	for i := range l {
		l[i] = BlacksWhitesLevel(uint8(i), bp, wp)
	}
	return uniform(l)
}

// ToneCurveTables fuses each channel curve with the RGB curve that follows it.
func ToneCurveTables(a darkroom.ToneCurve) Tables {
	luts := a.LUTs()
	ch := Tables{luts.Red, luts.Green, luts.Blue}
	return ch.Then(uniform(luts.RGB))
}

// TablesFor builds the tables of a per-channel adjustment. ok is false for
// adjustments that depend on the whole pixel.
func TablesFor(a darkroom.Adjustment) (t Tables, ok bool) {
	switch v := a.(type) {
	case darkroom.WhiteBalance:
		return WhiteBalanceTables(v), true
	case darkroom.Exposure:
		return ExposureTables(v), true
	case darkroom.Contrast:
		return ContrastTables(v), true
	case darkroom.BlacksWhites:
		return BlacksWhitesTables(v), true
	case darkroom.ToneCurve:
		return ToneCurveTables(v), true
	}
	return Tables{}, false
}
