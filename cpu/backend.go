// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cpu renders darkroom pipelines on the CPU.
//
// Each Backend owns one worker goroutine that takes a frame request at a
// time, plus a pool that splits the frame into row bands. Per-channel
// adjustments run as fused lookup tables cached between frames, so moving a
// single slider regenerates only the tables that changed.
package cpu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/darkroom"
	"github.com/gogpu/darkroom/internal/adjust"
	"github.com/gogpu/darkroom/internal/lutcache"
	"github.com/gogpu/darkroom/internal/parallel"
)

// Result is the outcome of an asynchronous Process call.
type Result struct {
	Frame *darkroom.Frame
	Err   error
}

type job struct {
	src   darkroom.RawPixelData
	p     *darkroom.Pipeline
	reply chan Result
}

// Backend is the CPU implementation of darkroom.Backend.
//
// Only one frame is processed at a time: a call made while another is in
// flight fails immediately with darkroom.ErrBusy.
type Backend struct {
	opts  options
	pool  *parallel.Pool
	cache *lutcache.Cache

	mu     sync.Mutex // guards jobs against Close
	jobs   chan job
	closed bool
	busy   atomic.Bool
	done   chan struct{}

	// beforeRender, if set, runs on the worker goroutine at the start of
	// each frame. Tests use it to hold a frame in flight.
	beforeRender func()
}

var _ darkroom.Backend = (*Backend)(nil)

// New starts a CPU backend.
func New(opts ...Option) *Backend {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &Backend{
		opts: o,
		pool: parallel.NewPool(o.workers),
		jobs: make(chan job, 1),
		done: make(chan struct{}),
	}
	if !o.noCache {
		b.cache = lutcache.New()
	}
	go b.loop()

	slogger().Debug("cpu: backend started", "workers", b.pool.Workers(), "band_height", o.bandHeight)
	return b
}

// Name returns "cpu".
func (b *Backend) Name() string { return "cpu" }

// Busy reports whether a frame is being processed.
func (b *Backend) Busy() bool { return b.busy.Load() }

// Process renders p over src and waits for the result.
//
// If ctx ends first, Process returns ctx.Err(). The frame still runs to
// completion in the background and the backend stays busy until it does.
func (b *Backend) Process(ctx context.Context, src darkroom.RawPixelData, p *darkroom.Pipeline) (*darkroom.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case r := <-b.ProcessAsync(src, p):
		return r.Frame, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ProcessAsync queues a frame and returns a channel that receives exactly
// one Result. The pipeline is copied before returning, so the caller may
// keep editing it.
func (b *Backend) ProcessAsync(src darkroom.RawPixelData, p *darkroom.Pipeline) <-chan Result {
	reply := make(chan Result, 1)
	fail := func(err error) <-chan Result {
		reply <- Result{Err: err}
		close(reply)
		return reply
	}

	if err := darkroom.CheckInput(src, p); err != nil {
		return fail(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fail(darkroom.ErrClosed)
	}
	if !b.busy.CompareAndSwap(false, true) {
		return fail(darkroom.ErrBusy)
	}
	b.jobs <- job{src: src, p: p.Clone(), reply: reply}
	return reply
}

// loop is the backend's worker goroutine.
func (b *Backend) loop() {
	defer close(b.done)
	for j := range b.jobs {
		frame, err := b.render(j.src, j.p)
		b.busy.Store(false)
		j.reply <- Result{Frame: frame, Err: err}
		close(j.reply)
	}
}

// render applies p to src. A panic in any stage fails the whole frame.
func (b *Backend) render(src darkroom.RawPixelData, p *darkroom.Pipeline) (frame *darkroom.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			frame, err = nil, fmt.Errorf("cpu: render panicked: %v", r)
		}
	}()
	if b.beforeRender != nil {
		b.beforeRender()
	}

	start := time.Now()
	region := darkroom.CropRegion(p.CropRect(), src.Width, src.Height)
	w, h := region.Width(), region.Height()

	var lookup adjust.Lookup
	if b.cache != nil {
		lookup = b.cache.Lookup
	}
	plan := adjust.NewPlan(p, lookup)

	rgb := make([]byte, w*h*3)
	out := darkroom.NewFrame(w, h)
	err = b.pool.Rows(h, b.opts.bandHeight, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			off := ((region.Y0+y)*src.Width + region.X0) * 3
			copy(rgb[y*w*3:(y+1)*w*3], src.Pix[off:off+w*3])
		}
		band := rgb[y0*w*3 : y1*w*3]
		plan.Apply(band)
		adjust.ExpandRGBA(out.Pix[y0*w*4:y1*w*4], band)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cpu: %w", err)
	}

	if log := slogger(); log.Enabled(context.Background(), slog.LevelDebug) {
		cached := 0
		if b.cache != nil {
			cached = b.cache.Len()
		}
		log.Debug("cpu: frame",
			"src", fmt.Sprintf("%dx%d", src.Width, src.Height),
			"out", fmt.Sprintf("%dx%d", w, h),
			"active", len(p.Active()),
			"cached_kinds", cached,
			"elapsed", time.Since(start))
	}
	return out, nil
}

// InvalidateCache drops every cached lookup table.
func (b *Backend) InvalidateCache() {
	if b.cache != nil {
		b.cache.Invalidate()
	}
}

// CacheStats returns LUT cache hit and miss counts. Both are zero when the
// cache is disabled.
func (b *Backend) CacheStats() (hits, misses int) {
	if b.cache == nil {
		return 0, 0
	}
	s := b.cache.Stats()
	return s.Hits, s.Misses
}

// Close waits for an in-flight frame, then stops the worker and the pool.
// Close is safe to call multiple times.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.jobs)
	b.mu.Unlock()

	<-b.done
	b.pool.Close()
	slogger().Debug("cpu: backend closed")
	return nil
}
