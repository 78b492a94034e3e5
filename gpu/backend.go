// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu renders darkroom pipelines with a WGSL compute kernel through
// gogpu/wgpu.
//
// The kernel (shaders/adjust.wgsl) runs one thread per output pixel in
// 16x16 workgroups. All scalar parameters travel in one uniform block; tone
// curves are generated on the host and uploaded as four 256-entry tables.
//
// When no adapter can be opened, New returns an error wrapping
// darkroom.ErrUnavailable and callers fall back to package cpu. Build with
// -tags nogpu to drop the GPU dependency entirely.
package gpu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/darkroom"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Backend is the GPU implementation of darkroom.Backend.
//
// Device and pipeline objects are created once in New and destroyed once in
// Close. Each Process call allocates its own buffers and releases all of
// them before returning, on success and on every failure path.
type Backend struct {
	mu sync.Mutex // serializes dispatch against Close

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	adapterName    string
	externalDevice bool // true when using shared device (don't destroy on Close)
	fenceTimeout   time.Duration

	busy   atomic.Bool
	closed bool

	beforeDispatch func() // test hook, runs with the frame lock held
}

var _ darkroom.Backend = (*Backend)(nil)

// Available reports whether a Vulkan adapter can be enumerated on this
// machine. The probe runs once; later calls return the cached answer.
// A true result does not guarantee New succeeds.
func Available() bool { return probe() }

var probe = sync.OnceValue(func() bool {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		slogger().Debug("gpu: vulkan backend not registered")
		return false
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		slogger().Debug("gpu: create instance failed", "err", err)
		return false
	}
	defer instance.Destroy()
	n := len(instance.EnumerateAdapters(nil))
	slogger().Debug("gpu: probe", "adapters", n)
	return n > 0
})

// New opens a device and builds the compute pipeline.
func New(opts ...Option) (*Backend, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &Backend{fenceTimeout: o.fenceTimeout}
	switch {
	case o.device != nil || o.queue != nil:
		if o.device == nil || o.queue == nil {
			return nil, fmt.Errorf("gpu: %w: WithHAL needs both device and queue", darkroom.ErrUnavailable)
		}
		b.device, b.queue = o.device, o.queue
		b.externalDevice = true
		b.adapterName = "external"
	case o.provider != nil:
		device, queue, err := halFromProvider(o.provider)
		if err != nil {
			return nil, fmt.Errorf("gpu: %w: %w", darkroom.ErrUnavailable, err)
		}
		b.device, b.queue = device, queue
		b.externalDevice = true
		b.adapterName = "shared"
	default:
		if err := b.openDevice(); err != nil {
			b.release()
			return nil, fmt.Errorf("gpu: %w: %w", darkroom.ErrUnavailable, err)
		}
	}

	if err := b.createPipeline(); err != nil {
		b.release()
		return nil, fmt.Errorf("gpu: %w: %w", darkroom.ErrUnavailable, err)
	}
	slogger().Info("gpu: backend ready", "adapter", b.adapterName, "shared", b.externalDevice)
	return b, nil
}

// halFromProvider extracts HAL handles from a provider that exposes them.
func halFromProvider(provider gpucontext.DeviceProvider) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, errors.New("provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, errors.New("provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, errors.New("provider HalQueue is not hal.Queue")
	}
	return device, queue, nil
}

// openDevice creates an instance and opens the first discrete or
// integrated adapter, or the first adapter of any type.
func (b *Backend) openDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	b.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return errors.New("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	b.device = openDev.Device
	b.queue = openDev.Queue
	b.adapterName = selected.Info.Name
	return nil
}

func (b *Backend) createPipeline() error {
	shader, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "darkroom_adjust",
		Source: hal.ShaderSource{WGSL: adjustShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile adjust shader: %w", err)
	}
	b.shader = shader

	bindLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "darkroom_adjust_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	b.bindLayout = bindLayout

	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "darkroom_adjust_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{b.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	b.pipeLayout = pipeLayout

	pipeline, err := b.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "darkroom_adjust_pipeline", Layout: b.pipeLayout,
		Compute: hal.ComputeState{Module: b.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	b.pipeline = pipeline
	return nil
}

func (b *Backend) destroyPipeline() {
	if b.device == nil {
		return
	}
	if b.pipeline != nil {
		b.device.DestroyComputePipeline(b.pipeline)
		b.pipeline = nil
	}
	if b.pipeLayout != nil {
		b.device.DestroyPipelineLayout(b.pipeLayout)
		b.pipeLayout = nil
	}
	if b.bindLayout != nil {
		b.device.DestroyBindGroupLayout(b.bindLayout)
		b.bindLayout = nil
	}
	if b.shader != nil {
		b.device.DestroyShaderModule(b.shader)
		b.shader = nil
	}
}

// release destroys everything the backend owns.
func (b *Backend) release() {
	b.destroyPipeline()
	if !b.externalDevice {
		if b.device != nil {
			b.device.Destroy()
		}
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
	b.instance = nil
}

// Name returns "gpu".
func (b *Backend) Name() string { return "gpu" }

// AdapterName returns the name of the opened adapter, "shared" for a
// provider device or "external" for WithHAL.
func (b *Backend) AdapterName() string { return b.adapterName }

// Busy reports whether a frame is being processed.
func (b *Backend) Busy() bool { return b.busy.Load() }

// SetLogger sets the logger for package gpu. darkroom.SetLogger calls this
// automatically.
func (b *Backend) SetLogger(l *slog.Logger) { setLogger(l) }

// Process renders p over src on the GPU.
//
// A call made while another is in flight fails immediately with
// darkroom.ErrBusy. Once submitted, a frame is not cancelled; ctx only
// shortens the fence wait when its deadline is earlier than the configured
// timeout.
func (b *Backend) Process(ctx context.Context, src darkroom.RawPixelData, p *darkroom.Pipeline) (*darkroom.Frame, error) {
	if err := darkroom.CheckInput(src, p); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !b.busy.CompareAndSwap(false, true) {
		return nil, darkroom.ErrBusy
	}
	defer b.busy.Store(false)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, darkroom.ErrClosed
	}
	if b.beforeDispatch != nil {
		b.beforeDispatch()
	}

	timeout := b.fenceTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(dl))
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	frame, err := b.dispatch(src, p, timeout)
	if err != nil {
		slogger().Warn("gpu: frame failed", "err", err)
		return nil, fmt.Errorf("gpu: %w", err)
	}
	return frame, nil
}

// dispatch uploads src and p, runs the kernel over the crop region and
// reads the result back.
func (b *Backend) dispatch(src darkroom.RawPixelData, p *darkroom.Pipeline, timeout time.Duration) (*darkroom.Frame, error) {
	region := darkroom.CropRegion(p.CropRect(), src.Width, src.Height)
	outW, outH := region.Width(), region.Height()

	paramBytes := newFrameParams(p, src.Width, src.Height, region).bytes()
	lutBytes := packLUTs(p.ToneCurve())
	srcBytes := packRGB(src.Pix)
	outSize := uint64(outW * outH * 4) //nolint:gosec // positive image dimensions

	slogger().Debug("gpu: dispatch",
		"src_bytes", len(srcBytes), "out", fmt.Sprintf("%dx%d", outW, outH),
		"crop", !region.IsFull(src.Width, src.Height))

	paramsBuf, err := b.createBuffer("darkroom_params", paramsSize,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	defer b.device.DestroyBuffer(paramsBuf)

	srcBuf, err := b.createBuffer("darkroom_src", uint64(len(srcBytes)),
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	defer b.device.DestroyBuffer(srcBuf)

	lutBuf, err := b.createBuffer("darkroom_luts", lutSize,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	defer b.device.DestroyBuffer(lutBuf)

	dstBuf, err := b.createBuffer("darkroom_dst", outSize,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc)
	if err != nil {
		return nil, err
	}
	defer b.device.DestroyBuffer(dstBuf)

	stagingBuf, err := b.createBuffer("darkroom_staging", outSize,
		gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	defer b.device.DestroyBuffer(stagingBuf)

	b.queue.WriteBuffer(paramsBuf, 0, paramBytes)
	b.queue.WriteBuffer(srcBuf, 0, srcBytes)
	b.queue.WriteBuffer(lutBuf, 0, lutBytes)

	bindGroup, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "darkroom_adjust_bind", Layout: b.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: srcBuf.NativeHandle(), Offset: 0, Size: uint64(len(srcBytes))}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: lutBuf.NativeHandle(), Offset: 0, Size: lutSize}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: dstBuf.NativeHandle(), Offset: 0, Size: outSize}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	defer b.device.DestroyBindGroup(bindGroup)

	gx, gy := workgroups(outW, outH)
	if err := b.submit(bindGroup, dstBuf, stagingBuf, outSize, gx, gy, timeout); err != nil {
		return nil, err
	}

	frame := &darkroom.Frame{Width: outW, Height: outH, Pix: make([]byte, outSize)}
	if err := b.queue.ReadBuffer(stagingBuf, 0, frame.Pix); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	return frame, nil
}

func (b *Backend) createBuffer(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer (%d bytes): %w", label, size, err)
	}
	return buf, nil
}

// submit records the compute pass and the copy into staging, submits them
// and waits on a fence.
func (b *Backend) submit(bindGroup hal.BindGroup, dstBuf, stagingBuf hal.Buffer, size uint64, gx, gy uint32, timeout time.Duration) error {
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "darkroom_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("darkroom_adjust"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "darkroom_adjust_pass"})
	pass.SetPipeline(b.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch(gx, gy, 1)
	pass.End()

	encoder.CopyBufferToBuffer(dstBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := b.device.Wait(fence, 1, timeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !fenceOK {
		return fmt.Errorf("wait for GPU: timed out after %v", timeout)
	}
	return nil
}

// Close destroys the pipeline and, unless shared, the device and instance.
// It waits for an in-flight frame. Close is safe to call multiple times.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.release()
	slogger().Info("gpu: backend closed")
	return nil
}
