// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/darkroom"
)

// Buffer layout shared with shaders/adjust.wgsl.
const (
	// paramsSize is the byte size of the Params uniform: 20 four-byte fields.
	paramsSize = 20 * 4

	// lutEntries is the number of u32 entries in the LUT buffer: rgb, red,
	// green and blue tables of 256 entries each.
	lutEntries = 4 * 256
	lutSize    = lutEntries * 4

	// workgroupSize is the edge of the 16x16 compute workgroup.
	workgroupSize = 16
)

// Field indices in the Params uniform.
const (
	fieldTemperature = iota
	fieldTint
	fieldExposure
	fieldContrast
	fieldHighlights
	fieldShadows
	fieldBlacks
	fieldWhites
	fieldSaturation
	fieldVibrance
	fieldCurveEnabled
	fieldSrcWidth
	fieldSrcHeight
	fieldCropEnabled
	fieldCropLeft
	fieldCropTop
	fieldCropRight
	fieldCropBottom
)

// frameParams is the host-side view of the Params uniform.
type frameParams struct {
	values       [10]float32
	curveEnabled bool
	srcW, srcH   uint32
	cropEnabled  bool
	crop         darkroom.Region
}

// newFrameParams collects the scalar parameters of p for a w x h source.
// Values are clamped to their documented ranges.
func newFrameParams(p *darkroom.Pipeline, w, h int, region darkroom.Region) frameParams {
	wb := p.WhiteBalance().Clamp().(darkroom.WhiteBalance)
	exp := p.Exposure().Clamp().(darkroom.Exposure)
	con := p.Contrast().Clamp().(darkroom.Contrast)
	hs := p.HighlightsShadows().Clamp().(darkroom.HighlightsShadows)
	bw := p.BlacksWhites().Clamp().(darkroom.BlacksWhites)
	sv := p.SaturationVibrance().Clamp().(darkroom.SaturationVibrance)

	fp := frameParams{
		curveEnabled: !p.ToneCurve().IsNeutral(),
		srcW:         uint32(w), //nolint:gosec // validated positive image dimensions
		srcH:         uint32(h), //nolint:gosec // validated positive image dimensions
		cropEnabled:  !region.IsFull(w, h),
		crop:         region,
	}
	fp.values = [10]float32{
		fieldTemperature: float32(wb.Temperature),
		fieldTint:        float32(wb.Tint),
		fieldExposure:    float32(exp.Value),
		fieldContrast:    float32(con.Value),
		fieldHighlights:  float32(hs.Highlights),
		fieldShadows:     float32(hs.Shadows),
		fieldBlacks:      float32(bw.Blacks),
		fieldWhites:      float32(bw.Whites),
		fieldSaturation:  float32(sv.Saturation),
		fieldVibrance:    float32(sv.Vibrance),
	}
	return fp
}

// bytes encodes the uniform in little-endian order.
func (fp frameParams) bytes() []byte {
	buf := make([]byte, paramsSize)
	put := func(field int, v uint32) {
		binary.LittleEndian.PutUint32(buf[field*4:], v)
	}
	for i, v := range fp.values {
		put(i, math.Float32bits(v))
	}
	put(fieldCurveEnabled, boolU32(fp.curveEnabled))
	put(fieldSrcWidth, fp.srcW)
	put(fieldSrcHeight, fp.srcH)
	put(fieldCropEnabled, boolU32(fp.cropEnabled))
	if fp.cropEnabled {
		put(fieldCropLeft, uint32(fp.crop.X0))   //nolint:gosec // region is clamped to the image
		put(fieldCropTop, uint32(fp.crop.Y0))    //nolint:gosec // region is clamped to the image
		put(fieldCropRight, uint32(fp.crop.X1))  //nolint:gosec // region is clamped to the image
		put(fieldCropBottom, uint32(fp.crop.Y1)) //nolint:gosec // region is clamped to the image
	}
	return buf
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// packLUTs encodes the tone curve tables as 1024 little-endian u32 values.
// A neutral curve uploads identity tables.
func packLUTs(tc darkroom.ToneCurve) []byte {
	luts := darkroom.IdentityCurveLUTs()
	if !tc.IsNeutral() {
		luts = tc.Normalize().LUTs()
	}
	buf := make([]byte, lutSize)
	for t, table := range [4]*[256]uint8{&luts.RGB, &luts.Red, &luts.Green, &luts.Blue} {
		for i, v := range table {
			binary.LittleEndian.PutUint32(buf[(t*256+i)*4:], uint32(v))
		}
	}
	return buf
}

// packRGB copies packed RGB pixels into a buffer padded to a 4-byte multiple
// so the kernel can read it as array<u32>.
func packRGB(pix []byte) []byte {
	n := (len(pix) + 3) &^ 3
	buf := make([]byte, n)
	copy(buf, pix)
	return buf
}

// workgroups returns the dispatch size covering a w x h output.
func workgroups(w, h int) (x, y uint32) {
	return uint32((w + workgroupSize - 1) / workgroupSize), //nolint:gosec // positive image dimensions
		uint32((h + workgroupSize - 1) / workgroupSize) //nolint:gosec // positive image dimensions
}
