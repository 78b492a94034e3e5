// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

// Band is a half-open row range [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// minBandRows keeps bands from getting so thin that scheduling dominates.
const minBandRows = 8

// Bands splits [0, height) into contiguous bands covering every row once.
//
// With bandHeight > 0 every band except the last has exactly bandHeight
// rows. Otherwise height is divided into up to workers bands of near-equal
// size, none thinner than minBandRows unless the image itself is.
func Bands(height, bandHeight, workers int) []Band {
	if height <= 0 {
		return nil
	}
	if bandHeight <= 0 {
		workers = max(workers, 1)
		n := min(workers, max(height/minBandRows, 1))
		bandHeight = (height + n - 1) / n
	}

	bands := make([]Band, 0, (height+bandHeight-1)/bandHeight)
	for y := 0; y < height; y += bandHeight {
		bands = append(bands, Band{Y0: y, Y1: min(y+bandHeight, height)})
	}
	return bands
}
