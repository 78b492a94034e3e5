// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package darkroom

import "errors"

var (
	// ErrBusy is returned when Process is called on a backend that is still
	// executing a previous call. The rejected call has no side effects.
	ErrBusy = errors.New("darkroom: backend busy")

	// ErrUnavailable reports that a backend cannot run on this machine
	// (no GPU adapter, driver failure, pipeline creation failure).
	// Callers should fall back to the CPU backend.
	ErrUnavailable = errors.New("darkroom: backend unavailable")

	// ErrClosed is returned by Process after the backend has been closed.
	ErrClosed = errors.New("darkroom: backend closed")

	// ErrInvalidImage reports a source buffer whose length does not match
	// its declared dimensions.
	ErrInvalidImage = errors.New("darkroom: invalid image")

	// ErrNilPipeline is returned when Process receives a nil pipeline.
	ErrNilPipeline = errors.New("darkroom: nil pipeline")

	// ErrInvalidPipeline reports a serialized pipeline whose structure or
	// field types cannot be decoded.
	ErrInvalidPipeline = errors.New("darkroom: invalid pipeline")
)
