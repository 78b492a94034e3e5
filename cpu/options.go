// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cpu

// Option configures a Backend during creation.
//
// Example:
//
//	b := cpu.New(cpu.WithWorkers(4), cpu.WithBandHeight(64))
type Option func(*options)

type options struct {
	workers    int
	bandHeight int
	noCache    bool
}

func defaultOptions() options {
	return options{
		workers:    0, // GOMAXPROCS
		bandHeight: 0, // one band per worker
	}
}

// WithWorkers sets the number of goroutines that process row bands.
// Zero or negative uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithBandHeight fixes the number of rows per band. Zero or negative splits
// the frame into one band per worker.
func WithBandHeight(rows int) Option {
	return func(o *options) { o.bandHeight = rows }
}

// WithoutCache disables LUT reuse between frames. Every Process call then
// regenerates its tables.
func WithoutCache() Option {
	return func(o *options) { o.noCache = true }
}
