// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package darkroom

import "context"

// Backend renders a pipeline over a source image.
//
// Implementations: cpu.Backend and gpu.Backend. Both produce an RGBA frame
// sized by CropRegion and accept at most one Process call at a time; a
// concurrent second call fails with ErrBusy and changes nothing.
type Backend interface {
	// Name identifies the backend in logs ("cpu", "gpu").
	Name() string

	// Process applies p to src and returns a new frame. src is not modified.
	Process(ctx context.Context, src RawPixelData, p *Pipeline) (*Frame, error)

	// Close releases the backend. Further Process calls return ErrClosed.
	Close() error
}

// CheckInput validates the arguments shared by every backend's Process.
func CheckInput(src RawPixelData, p *Pipeline) error {
	if p == nil {
		return ErrNilPipeline
	}
	return src.Validate()
}
