// Package darkroom is a non-destructive photo adjustment engine.
//
// # Overview
//
// A [Pipeline] holds one instance of each of seven adjustments and an
// optional normalized crop. Applying it to a decoded 8-bit RGB image
// ([RawPixelData]) produces a display-ready RGBA [Frame]. The source image
// is never modified, so any edit can be changed or reset later.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/darkroom"
//	    "github.com/gogpu/darkroom/cpu"
//	)
//
//	p := darkroom.NewPipeline()
//	p.Set(darkroom.Exposure{Value: 0.7})
//	p.Set(darkroom.SaturationVibrance{Vibrance: 25})
//	p.SetCrop(darkroom.CropRect{Left: 0.1, Top: 0.1, Right: 0.9, Bottom: 0.9})
//
//	b := cpu.New()
//	defer b.Close()
//	frame, err := b.Process(ctx, src, p)
//
// # Adjustments
//
// Adjustments are applied in a fixed order regardless of how they were set:
//
//  1. [WhiteBalance]
//  2. [Exposure]
//  3. [Contrast]
//  4. [HighlightsShadows]
//  5. [BlacksWhites]
//  6. [ToneCurve]
//  7. [SaturationVibrance]
//
// Every step clamps to [0, 255] and rounds to the nearest level before the
// next one runs. Neutral adjustments are skipped.
//
// # Backends
//
// Two interchangeable backends implement [Backend]:
//   - cpu: a dedicated worker goroutine with LUT fusion and row-band parallelism
//   - gpu: a WGSL compute kernel dispatched through gogpu/wgpu
//
// The GPU backend reports [ErrUnavailable] when no adapter can be opened;
// callers fall back to the CPU backend. Both backends size their output with
// [CropRegion] and agree on every pixel within two levels.
//
// # Logging
//
// darkroom is silent by default. Call [SetLogger] to route diagnostics to a
// [log/slog] handler.
package darkroom
