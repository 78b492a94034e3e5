//go:build !nogpu

package gpu

import (
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// defaultFenceTimeout bounds the wait for one frame's command buffer.
const defaultFenceTimeout = 5 * time.Second

// Option configures a Backend during creation.
//
// Example:
//
//	// Own Vulkan device
//	b, err := gpu.New()
//
//	// Share the device of a gogpu application
//	b, err := gpu.New(gpu.WithDeviceProvider(app.DeviceProvider()))
type Option func(*options)

type options struct {
	device       hal.Device
	queue        hal.Queue
	provider     gpucontext.DeviceProvider
	fenceTimeout time.Duration
}

func defaultOptions() options {
	return options{fenceTimeout: defaultFenceTimeout}
}

// WithDeviceProvider shares the GPU device of an external provider (e.g.
// gogpu). The provider must also expose HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue. The backend never destroys a shared
// device.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) { o.provider = p }
}

// WithHAL uses an already opened HAL device and queue. The backend never
// destroys them.
func WithHAL(device hal.Device, queue hal.Queue) Option {
	return func(o *options) {
		o.device = device
		o.queue = queue
	}
}

// WithFenceTimeout bounds how long Process waits for the GPU to finish a
// frame. A context deadline shorter than the timeout takes precedence.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fenceTimeout = d
		}
	}
}
