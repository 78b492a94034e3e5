// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package darkroom

import (
	"fmt"
	"math"
)

// Kind identifies an adjustment type. The string form is the stable tag
// used for lookup, replacement and serialization.
type Kind uint8

const (
	KindWhiteBalance Kind = iota
	KindExposure
	KindContrast
	KindHighlightsShadows
	KindBlacksWhites
	KindSaturationVibrance
	KindToneCurve

	// kindCount is the number of adjustment kinds.
	kindCount
)

var kindNames = [kindCount]string{
	KindWhiteBalance:       "white_balance",
	KindExposure:           "exposure",
	KindContrast:           "contrast",
	KindHighlightsShadows:  "highlights_shadows",
	KindBlacksWhites:       "blacks_whites",
	KindSaturationVibrance: "saturation_vibrance",
	KindToneCurve:          "tone_curve",
}

// String returns the serialization tag of the kind.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind maps a serialization tag back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Order is the canonical application order. Both backends apply the
// adjustments in exactly this sequence.
var Order = [...]Kind{
	KindWhiteBalance,
	KindExposure,
	KindContrast,
	KindHighlightsShadows,
	KindBlacksWhites,
	KindToneCurve,
	KindSaturationVibrance,
}

// Documented parameter ranges.
const (
	MinTemperature     = 2000.0
	MaxTemperature     = 10000.0
	NeutralTemperature = 5500.0
	MaxTint            = 150.0
	MaxExposure        = 5.0
	MaxPercent         = 100.0
)

// Adjustment is one non-destructive edit. The set of implementations is
// closed: WhiteBalance, Exposure, Contrast, HighlightsShadows,
// BlacksWhites, SaturationVibrance and ToneCurve.
type Adjustment interface {
	// Kind returns the type tag.
	Kind() Kind

	// IsNeutral reports whether applying the adjustment leaves every
	// pixel unchanged, so backends can skip it.
	IsNeutral() bool

	// Reset returns the neutral value of the same kind.
	Reset() Adjustment

	// Clamp returns a copy with every field limited to its documented range.
	Clamp() Adjustment

	sealed()
}

// Default returns the neutral adjustment for kind.
func Default(kind Kind) Adjustment {
	switch kind {
	case KindWhiteBalance:
		return WhiteBalance{Temperature: NeutralTemperature}
	case KindExposure:
		return Exposure{}
	case KindContrast:
		return Contrast{}
	case KindHighlightsShadows:
		return HighlightsShadows{}
	case KindBlacksWhites:
		return BlacksWhites{}
	case KindSaturationVibrance:
		return SaturationVibrance{}
	case KindToneCurve:
		return NewToneCurve()
	}
	panic(fmt.Sprintf("darkroom: unknown adjustment kind %d", kind))
}

// WhiteBalance shifts the color temperature (Kelvin) and the green/magenta tint.
type WhiteBalance struct {
	Temperature float64 // 2000..10000, neutral 5500
	Tint        float64 // -150..150, positive is magenta
}

func (WhiteBalance) Kind() Kind        { return KindWhiteBalance }
func (WhiteBalance) Reset() Adjustment { return Default(KindWhiteBalance) }
func (WhiteBalance) sealed()           {}
func (a WhiteBalance) IsNeutral() bool { return a.Temperature == NeutralTemperature && a.Tint == 0 }
func (a WhiteBalance) Clamp() Adjustment {
	return WhiteBalance{clamp(a.Temperature, MinTemperature, MaxTemperature), clampAbs(a.Tint, MaxTint)}
}

// Exposure scales linear brightness by 2^Value.
type Exposure struct {
	Value float64 // stops, -5..5
}

func (Exposure) Kind() Kind          { return KindExposure }
func (Exposure) Reset() Adjustment   { return Default(KindExposure) }
func (Exposure) sealed()             {}
func (a Exposure) IsNeutral() bool   { return a.Value == 0 }
func (a Exposure) Clamp() Adjustment { return Exposure{clampAbs(a.Value, MaxExposure)} }

// Contrast stretches values around mid-gray.
type Contrast struct {
	Value float64 // -100..100
}

func (Contrast) Kind() Kind          { return KindContrast }
func (Contrast) Reset() Adjustment   { return Default(KindContrast) }
func (Contrast) sealed()             {}
func (a Contrast) IsNeutral() bool   { return a.Value == 0 }
func (a Contrast) Clamp() Adjustment { return Contrast{clampAbs(a.Value, MaxPercent)} }

// HighlightsShadows brightens or darkens the two luminance halves independently.
type HighlightsShadows struct {
	Highlights float64 // -100..100
	Shadows    float64 // -100..100
}

func (HighlightsShadows) Kind() Kind        { return KindHighlightsShadows }
func (HighlightsShadows) Reset() Adjustment { return Default(KindHighlightsShadows) }
func (HighlightsShadows) sealed()           {}
func (a HighlightsShadows) IsNeutral() bool { return a.Highlights == 0 && a.Shadows == 0 }
func (a HighlightsShadows) Clamp() Adjustment {
	return HighlightsShadows{clampAbs(a.Highlights, MaxPercent), clampAbs(a.Shadows, MaxPercent)}
}

// BlacksWhites moves the black and white points of the tonal range.
type BlacksWhites struct {
	Blacks float64 // -100..100
	Whites float64 // -100..100
}

func (BlacksWhites) Kind() Kind        { return KindBlacksWhites }
func (BlacksWhites) Reset() Adjustment { return Default(KindBlacksWhites) }
func (BlacksWhites) sealed()           {}
func (a BlacksWhites) IsNeutral() bool { return a.Blacks == 0 && a.Whites == 0 }
func (a BlacksWhites) Clamp() Adjustment {
	return BlacksWhites{clampAbs(a.Blacks, MaxPercent), clampAbs(a.Whites, MaxPercent)}
}

// SaturationVibrance changes color intensity. Vibrance favours muted pixels.
type SaturationVibrance struct {
	Saturation float64 // -100..100
	Vibrance   float64 // -100..100
}

func (SaturationVibrance) Kind() Kind        { return KindSaturationVibrance }
func (SaturationVibrance) Reset() Adjustment { return Default(KindSaturationVibrance) }
func (SaturationVibrance) sealed()           {}
func (a SaturationVibrance) IsNeutral() bool { return a.Saturation == 0 && a.Vibrance == 0 }
func (a SaturationVibrance) Clamp() Adjustment {
	return SaturationVibrance{clampAbs(a.Saturation, MaxPercent), clampAbs(a.Vibrance, MaxPercent)}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampAbs(v, limit float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, -limit, limit)
}
