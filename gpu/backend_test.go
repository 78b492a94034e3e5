// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/darkroom"
	"github.com/gogpu/darkroom/internal/adjust"
	"github.com/gogpu/darkroom/internal/testimage"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newNoopBackend(t *testing.T) *Backend {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	b, err := New(WithHAL(device, queue))
	if err != nil {
		cleanup()
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		b.Close()
		cleanup()
	})
	return b
}

// mockDevice implements gpucontext.Device for testing.
type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

// mockQueue implements gpucontext.Queue for testing.
type mockQueue struct{}

// mockAdapter implements gpucontext.Adapter for testing.
type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct{}

func (mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

// halMockProvider also exposes HAL handles, like gogpu's provider.
type halMockProvider struct {
	mockProvider
	device hal.Device
	queue  hal.Queue
}

func (m halMockProvider) HalDevice() any { return m.device }
func (m halMockProvider) HalQueue() any  { return m.queue }

// =============================================================================
// Construction
// =============================================================================

func TestNewWithHAL(t *testing.T) {
	b := newNoopBackend(t)
	if b.Name() != "gpu" {
		t.Errorf("Name() = %q, want gpu", b.Name())
	}
	if b.AdapterName() != "external" {
		t.Errorf("AdapterName() = %q, want external", b.AdapterName())
	}
	if b.pipeline == nil || b.bindLayout == nil || b.pipeLayout == nil || b.shader == nil {
		t.Error("pipeline objects not created")
	}
}

func TestNewWithHALMissingQueue(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	_, err := New(WithHAL(device, nil))
	if !errors.Is(err, darkroom.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestNewWithDeviceProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	b, err := New(WithDeviceProvider(halMockProvider{device: device, queue: queue}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.AdapterName() != "shared" {
		t.Errorf("AdapterName() = %q, want shared", b.AdapterName())
	}
	if !b.externalDevice {
		t.Error("shared device not marked external")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewWithDeviceProviderWithoutHAL(t *testing.T) {
	_, err := New(WithDeviceProvider(mockProvider{}))
	if !errors.Is(err, darkroom.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestWithFenceTimeout(t *testing.T) {
	o := defaultOptions()
	WithFenceTimeout(250 * time.Millisecond)(&o)
	if o.fenceTimeout != 250*time.Millisecond {
		t.Errorf("fenceTimeout = %v, want 250ms", o.fenceTimeout)
	}
	WithFenceTimeout(0)(&o)
	if o.fenceTimeout != 250*time.Millisecond {
		t.Errorf("zero timeout overrode value: %v", o.fenceTimeout)
	}
}

// =============================================================================
// Processing on the noop device
// =============================================================================

func TestProcessDimensions(t *testing.T) {
	b := newNoopBackend(t)
	src := testimage.Uniform(50, 40, 3)

	tests := []struct {
		name  string
		crop  *darkroom.CropRect
		wantW int
		wantH int
	}{
		{"full", nil, 50, 40},
		{"center half", &darkroom.CropRect{Left: 0.25, Top: 0.25, Right: 0.75, Bottom: 0.75}, 25, 20},
		{"thin strip", &darkroom.CropRect{Left: 0, Top: 0.5, Right: 1, Bottom: 0.51}, 50, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := darkroom.NewPipeline()
			p.Set(darkroom.Exposure{Value: 0.5})
			if tt.crop != nil {
				p.SetCrop(*tt.crop)
			}
			f, err := b.Process(context.Background(), src, p)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if f.Width != tt.wantW || f.Height != tt.wantH {
				t.Errorf("size %dx%d, want %dx%d", f.Width, f.Height, tt.wantW, tt.wantH)
			}
			if len(f.Pix) != tt.wantW*tt.wantH*4 {
				t.Errorf("len(Pix) = %d, want %d", len(f.Pix), tt.wantW*tt.wantH*4)
			}
		})
	}
}

func TestProcessZeroPipeline(t *testing.T) {
	b := newNoopBackend(t)
	src := testimage.Uniform(12, 9, 4)

	f, err := b.Process(context.Background(), src, &darkroom.Pipeline{})
	if err != nil {
		t.Fatalf("Process(zero pipeline): %v", err)
	}
	if f.Width != 12 || f.Height != 9 {
		t.Errorf("size %dx%d, want 12x9", f.Width, f.Height)
	}

	var p darkroom.Pipeline
	p.Set(darkroom.Exposure{Value: -0.5})
	if _, err := b.Process(context.Background(), src, &p); err != nil {
		t.Errorf("Process(partially set pipeline): %v", err)
	}
}

func TestProcessInvalidInput(t *testing.T) {
	b := newNoopBackend(t)

	_, err := b.Process(context.Background(), darkroom.RawPixelData{Width: 4, Height: 4, Pix: make([]byte, 5)}, darkroom.NewPipeline())
	if !errors.Is(err, darkroom.ErrInvalidImage) {
		t.Errorf("short buffer: err = %v, want ErrInvalidImage", err)
	}
	_, err = b.Process(context.Background(), testimage.Solid(2, 2, 1, 2, 3), nil)
	if !errors.Is(err, darkroom.ErrNilPipeline) {
		t.Errorf("nil pipeline: err = %v, want ErrNilPipeline", err)
	}
}

func TestProcessBusy(t *testing.T) {
	b := newNoopBackend(t)
	src := testimage.Solid(8, 8, 100, 120, 140)

	var inner error
	b.beforeDispatch = func() {
		if !b.Busy() {
			t.Error("Busy() = false during dispatch")
		}
		_, inner = b.Process(context.Background(), src, darkroom.NewPipeline())
	}
	if _, err := b.Process(context.Background(), src, darkroom.NewPipeline()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !errors.Is(inner, darkroom.ErrBusy) {
		t.Errorf("overlapping Process err = %v, want ErrBusy", inner)
	}
	if b.Busy() {
		t.Error("Busy() = true after Process returned")
	}

	b.beforeDispatch = nil
	if _, err := b.Process(context.Background(), src, darkroom.NewPipeline()); err != nil {
		t.Errorf("Process after busy rejection: %v", err)
	}
}

func TestProcessCanceledContext(t *testing.T) {
	b := newNoopBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Process(ctx, testimage.Solid(4, 4, 1, 2, 3), darkroom.NewPipeline())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if b.Busy() {
		t.Error("Busy() = true after canceled call")
	}
}

func TestClose(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	b, err := New(WithHAL(device, queue))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Double close should be safe.
	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if b.pipeline != nil {
		t.Error("pipeline not released")
	}

	_, err = b.Process(context.Background(), testimage.Solid(4, 4, 1, 2, 3), darkroom.NewPipeline())
	if !errors.Is(err, darkroom.ErrClosed) {
		t.Errorf("Process after Close: err = %v, want ErrClosed", err)
	}
}

// =============================================================================
// Equivalence with the CPU reference (requires a GPU)
// =============================================================================

func newHardwareBackend(t *testing.T) *Backend {
	t.Helper()
	if !Available() {
		t.Skip("no GPU adapter available")
	}
	b, err := New()
	if err != nil {
		t.Skipf("GPU not usable: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	t.Logf("adapter: %s", b.AdapterName())
	return b
}

func TestHardwareMatchesReference(t *testing.T) {
	b := newHardwareBackend(t)
	src := testimage.Uniform(97, 61, 7)

	single := singleAdjustmentCases()
	for _, tt := range single {
		t.Run(tt.name, func(t *testing.T) {
			p := darkroom.NewPipeline()
			p.Set(tt.a)
			got, err := b.Process(context.Background(), src, p)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			diff := darkroom.MaxDiff(got, adjust.Reference(src, p))
			t.Logf("max error: %d", diff)
			if diff < 0 || diff > 2 {
				t.Errorf("max error %d exceeds 2", diff)
			}
		})
	}

	t.Run("full pipeline cropped", func(t *testing.T) {
		p := darkroom.NewPipeline()
		for _, tt := range single {
			p.Set(tt.a)
		}
		p.SetCrop(darkroom.CropRect{Left: 0.1, Top: 0.2, Right: 0.9, Bottom: 0.7})
		got, err := b.Process(context.Background(), src, p)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		diff := darkroom.MaxDiff(got, adjust.Reference(src, p))
		t.Logf("max error: %d", diff)
		if diff < 0 || diff > 6 {
			t.Errorf("max error %d exceeds 6", diff)
		}
	})
}
