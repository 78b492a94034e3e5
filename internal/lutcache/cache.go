// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package lutcache caches generated lookup tables between frames.
//
// Interactive editing re-renders the same image many times while usually
// only one slider moves. The cache keeps exactly one slot per adjustment
// kind, keyed by the adjustment's parameter values: an unchanged adjustment
// reuses its tables, a changed one overwrites the slot.
//
//	c := lutcache.New()
//	plan := adjust.NewPlan(pipeline, c.Lookup)
//
// Cache is safe for concurrent use. It is owned by one backend instance and
// never shared implicitly.
package lutcache

import (
	"sync"

	"github.com/gogpu/darkroom"
	"github.com/gogpu/darkroom/internal/adjust"
)

// slot holds the tables of the last value seen for one kind.
type slot struct {
	value  darkroom.Adjustment
	tables adjust.Tables
}

// Stats reports cache activity since creation.
type Stats struct {
	Hits          int
	Misses        int
	Invalidations int
}

// Cache is a single-slot-per-kind LUT cache.
type Cache struct {
	mu    sync.Mutex
	slots map[darkroom.Kind]*slot
	stats Stats
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{slots: make(map[darkroom.Kind]*slot)}
}

// Lookup returns the cached tables for a when its kind's slot holds an
// equal value, otherwise calls build and stores the result in that slot.
// build runs under the lock so concurrent callers never build twice.
//
// Lookup has the signature of adjust.Lookup.
func (c *Cache) Lookup(a darkroom.Adjustment, build func() adjust.Tables) adjust.Tables {
	c.mu.Lock()
	defer c.mu.Unlock()

	kind := a.Kind()
	if s, ok := c.slots[kind]; ok && sameValue(s.value, a) {
		c.stats.Hits++
		return s.tables
	}

	c.stats.Misses++
	tables := build()
	c.slots[kind] = &slot{value: snapshot(a), tables: tables}
	return tables
}

// Invalidate drops every slot.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.slots) > 0 {
		c.stats.Invalidations++
	}
	c.slots = make(map[darkroom.Kind]*slot)
}

// Len returns the number of occupied slots.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// sameValue compares two adjustments of the same kind by parameter values.
func sameValue(a, b darkroom.Adjustment) bool {
	if ta, ok := a.(darkroom.ToneCurve); ok {
		tb, ok := b.(darkroom.ToneCurve)
		return ok && ta.Equal(tb)
	}
	if _, ok := b.(darkroom.ToneCurve); ok {
		return false
	}
	return a == b
}

// snapshot detaches a from caller-owned slices.
func snapshot(a darkroom.Adjustment) darkroom.Adjustment {
	if tc, ok := a.(darkroom.ToneCurve); ok {
		return tc.Clone()
	}
	return a
}
