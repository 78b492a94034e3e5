// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package darkroom

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Serialized field names.
const (
	keyAdjustments = "adjustments"
	keyCrop        = "crop"
	keyType        = "type"
)

// Map exports the pipeline as a plain key-value structure:
//
//	{
//	  "adjustments": [{"type": "exposure", "value": 1.0}, ...],
//	  "crop": {"left": 0.1, "top": 0.1, "right": 0.9, "bottom": 0.9}
//	}
//
// Adjustments appear in application order, followed by any unrecognized
// entries from a previous import. "crop" is omitted when no crop is set.
// Curves are lists of [x, y] pairs.
func (p *Pipeline) Map() map[string]any {
	list := make([]any, 0, len(Order)+len(p.unknown))
	for _, a := range p.Adjustments() {
		list = append(list, adjustmentMap(a))
	}
	for _, u := range p.unknown {
		list = append(list, maps.Clone(u))
	}

	m := map[string]any{keyAdjustments: list}
	if p.crop != nil {
		m[keyCrop] = map[string]any{
			"left":   p.crop.Left,
			"top":    p.crop.Top,
			"right":  p.crop.Right,
			"bottom": p.crop.Bottom,
		}
	}
	return m
}

func adjustmentMap(a Adjustment) map[string]any {
	m := map[string]any{keyType: a.Kind().String()}
	switch v := a.(type) {
	case WhiteBalance:
		m["temperature"] = v.Temperature
		m["tint"] = v.Tint
	case Exposure:
		m["value"] = v.Value
	case Contrast:
		m["value"] = v.Value
	case HighlightsShadows:
		m["highlights"] = v.Highlights
		m["shadows"] = v.Shadows
	case BlacksWhites:
		m["blacks"] = v.Blacks
		m["whites"] = v.Whites
	case SaturationVibrance:
		m["saturation"] = v.Saturation
		m["vibrance"] = v.Vibrance
	case ToneCurve:
		m["rgb"] = curvePairs(v.RGB)
		m["red"] = curvePairs(v.Red)
		m["green"] = curvePairs(v.Green)
		m["blue"] = curvePairs(v.Blue)
	}
	return m
}

func curvePairs(pts []CurvePoint) [][]float64 {
	out := make([][]float64, len(pts))
	for i, p := range pts {
		out[i] = []float64{p.X, p.Y}
	}
	return out
}

// PipelineFromMap rebuilds a pipeline from the structure produced by Map.
//
// Every kind starts at its default and each field present in the input
// overrides it; absent fields keep the default. Values are clamped to their
// documented ranges. Entries with an unrecognized type are kept verbatim and
// exported again by Map. A later entry of the same kind replaces an earlier
// one. A crop equal to the full frame is stored as no crop.
func PipelineFromMap(m map[string]any) (*Pipeline, error) {
	p := NewPipeline()
	if m == nil {
		return p, nil
	}

	if raw, ok := m[keyAdjustments]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			if typed, ok2 := raw.([]map[string]any); ok2 {
				list = make([]any, len(typed))
				for i := range typed {
					list[i] = typed[i]
				}
			} else {
				return nil, fmt.Errorf("%w: %q is %T, want a list", ErrInvalidPipeline, keyAdjustments, raw)
			}
		}
		for i, item := range list {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: adjustment %d is %T, want an object", ErrInvalidPipeline, i, item)
			}
			if err := p.importEntry(entry); err != nil {
				return nil, fmt.Errorf("adjustment %d: %w", i, err)
			}
		}
	}

	if raw, ok := m[keyCrop]; ok && raw != nil {
		cm, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q is %T, want an object", ErrInvalidPipeline, keyCrop, raw)
		}
		c := FullFrame
		fields := []struct {
			key string
			dst *float64
		}{
			{"left", &c.Left}, {"top", &c.Top}, {"right", &c.Right}, {"bottom", &c.Bottom},
		}
		for _, f := range fields {
			if err := readFloat(cm, f.key, f.dst); err != nil {
				return nil, fmt.Errorf("crop: %w", err)
			}
		}
		p.SetCrop(c.Sanitize())
	}
	return p, nil
}

func (p *Pipeline) importEntry(entry map[string]any) error {
	tag, _ := entry[keyType].(string)
	kind, ok := ParseKind(tag)
	if !ok {
		p.unknown = append(p.unknown, maps.Clone(entry))
		return nil
	}

	var err error
	read := func(key string, dst *float64) {
		if err == nil {
			err = readFloat(entry, key, dst)
		}
	}
	readCurve := func(key string, dst *[]CurvePoint) {
		if err == nil {
			err = readPoints(entry, key, dst)
		}
	}

	var a Adjustment
	switch kind {
	case KindWhiteBalance:
		v := Default(kind).(WhiteBalance)
		read("temperature", &v.Temperature)
		read("tint", &v.Tint)
		a = v
	case KindExposure:
		v := Exposure{}
		read("value", &v.Value)
		a = v
	case KindContrast:
		v := Contrast{}
		read("value", &v.Value)
		a = v
	case KindHighlightsShadows:
		v := HighlightsShadows{}
		read("highlights", &v.Highlights)
		read("shadows", &v.Shadows)
		a = v
	case KindBlacksWhites:
		v := BlacksWhites{}
		read("blacks", &v.Blacks)
		read("whites", &v.Whites)
		a = v
	case KindSaturationVibrance:
		v := SaturationVibrance{}
		read("saturation", &v.Saturation)
		read("vibrance", &v.Vibrance)
		a = v
	case KindToneCurve:
		v := NewToneCurve()
		readCurve("rgb", &v.RGB)
		readCurve("red", &v.Red)
		readCurve("green", &v.Green)
		readCurve("blue", &v.Blue)
		a = v
	}
	if err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}
	p.Set(a.Clamp())
	return nil
}

// readFloat overwrites *dst when key is present. Missing keys are not an error.
func readFloat(m map[string]any, key string, dst *float64) error {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil
	}
	v, ok := toFloat(raw)
	if !ok {
		return fmt.Errorf("%w: field %q is %T, want a number", ErrInvalidPipeline, key, raw)
	}
	*dst = v
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint8:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// readPoints overwrites *dst when key is present. Accepts lists of [x, y]
// pairs in any of the shapes produced by Map or by decoding JSON.
func readPoints(m map[string]any, key string, dst *[]CurvePoint) error {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil
	}
	bad := fmt.Errorf("%w: field %q is %T, want a list of [x, y] pairs", ErrInvalidPipeline, key, raw)

	switch pts := raw.(type) {
	case []CurvePoint:
		*dst = append([]CurvePoint(nil), pts...)
		return nil
	case [][]float64:
		out := make([]CurvePoint, len(pts))
		for i, pair := range pts {
			if len(pair) != 2 {
				return bad
			}
			out[i] = CurvePoint{pair[0], pair[1]}
		}
		*dst = out
		return nil
	case []any:
		out := make([]CurvePoint, len(pts))
		for i, item := range pts {
			pair, ok := item.([]any)
			if !ok || len(pair) != 2 {
				return bad
			}
			x, okX := toFloat(pair[0])
			y, okY := toFloat(pair[1])
			if !okX || !okY {
				return bad
			}
			out[i] = CurvePoint{x, y}
		}
		*dst = out
		return nil
	}
	return bad
}

// MarshalJSON encodes the pipeline in the Map layout.
func (p *Pipeline) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Map())
}

// UnmarshalJSON decodes the Map layout into p, replacing its contents.
func (p *Pipeline) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPipeline, err)
	}
	decoded, err := PipelineFromMap(m)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}
