// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

// Package gpu is disabled in this build. New always fails with
// darkroom.ErrUnavailable.
package gpu

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/darkroom"
	"github.com/gogpu/gpucontext"
)

// Option configures a Backend during creation.
type Option func()

// WithDeviceProvider is a no-op in nogpu builds.
func WithDeviceProvider(gpucontext.DeviceProvider) Option { return func() {} }

// WithFenceTimeout is a no-op in nogpu builds.
func WithFenceTimeout(time.Duration) Option { return func() {} }

// Backend is never constructed in nogpu builds.
type Backend struct{}

var _ darkroom.Backend = (*Backend)(nil)

// Available always returns false.
func Available() bool { return false }

// New always returns darkroom.ErrUnavailable.
func New(...Option) (*Backend, error) {
	return nil, fmt.Errorf("gpu: %w: built with nogpu", darkroom.ErrUnavailable)
}

func (*Backend) Name() string        { return "gpu" }
func (*Backend) AdapterName() string { return "" }
func (*Backend) Busy() bool          { return false }
func (*Backend) Close() error        { return nil }

func (*Backend) SetLogger(l *slog.Logger) { setLogger(l) }

func (*Backend) Process(context.Context, darkroom.RawPixelData, *darkroom.Pipeline) (*darkroom.Frame, error) {
	return nil, darkroom.ErrUnavailable
}
