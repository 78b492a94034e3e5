// Command darkroom applies a photo adjustment pipeline to an image file.
//
// Usage:
//
//	darkroom -in photo.tiff -out edited.png -exposure 0.5 -contrast 20
//	darkroom -in photo.png -pipeline edit.json -crop 0.1,0.1,0.9,0.9
//
// A pipeline sidecar in JSON is loaded first; adjustment flags that are set
// on the command line override it. The GPU backend is used when available,
// otherwise the CPU backend. Set DARKROOM_VERBOSE=1 or pass -v for debug
// logging.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/gogpu/darkroom"
	"github.com/gogpu/darkroom/cpu"
	"github.com/gogpu/darkroom/gpu"
)

type config struct {
	in, out      string
	pipeline     string
	dump         string
	backend      string
	workers      int
	preview      int
	crop         string
	fenceTimeout time.Duration
	verbose      bool

	temperature, tint    float64
	exposure, contrast   float64
	highlights, shadows  float64
	blacks, whites       float64
	saturation, vibrance float64
	set                  map[string]bool
}

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("darkroom: %v", err)
	}
	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("darkroom: %v", err)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (*config, error) {
	cfg := &config{}
	fs.StringVar(&cfg.in, "in", "", "input image (PNG, JPEG or TIFF)")
	fs.StringVar(&cfg.out, "out", "out.png", "output PNG file")
	fs.StringVar(&cfg.pipeline, "pipeline", "", "pipeline JSON sidecar")
	fs.StringVar(&cfg.dump, "dump", "", "write the effective pipeline as JSON to this file")
	fs.StringVar(&cfg.backend, "backend", "auto", "backend: auto, cpu or gpu")
	fs.IntVar(&cfg.workers, "workers", 0, "CPU worker count (0 = GOMAXPROCS)")
	fs.IntVar(&cfg.preview, "preview", 0, "downscale input so its long edge is at most N pixels")
	fs.StringVar(&cfg.crop, "crop", "", "normalized crop as left,top,right,bottom")
	fs.DurationVar(&cfg.fenceTimeout, "gpu-timeout", 0, "GPU frame timeout (0 = default)")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")

	fs.Float64Var(&cfg.temperature, "temperature", darkroom.NeutralTemperature, "white balance temperature in K")
	fs.Float64Var(&cfg.tint, "tint", 0, "white balance tint")
	fs.Float64Var(&cfg.exposure, "exposure", 0, "exposure in EV")
	fs.Float64Var(&cfg.contrast, "contrast", 0, "contrast")
	fs.Float64Var(&cfg.highlights, "highlights", 0, "highlights")
	fs.Float64Var(&cfg.shadows, "shadows", 0, "shadows")
	fs.Float64Var(&cfg.blacks, "blacks", 0, "black point")
	fs.Float64Var(&cfg.whites, "whites", 0, "white point")
	fs.Float64Var(&cfg.saturation, "saturation", 0, "saturation")
	fs.Float64Var(&cfg.vibrance, "vibrance", 0, "vibrance")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })
	return cfg, nil
}

func run(ctx context.Context, cfg *config) error {
	if cfg.verbose || os.Getenv("DARKROOM_VERBOSE") == "1" {
		darkroom.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if cfg.in == "" {
		return errors.New("missing -in")
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	if cfg.dump != "" {
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.dump, data, 0o600); err != nil {
			return err
		}
	}

	src, err := loadImage(cfg.in, cfg.preview)
	if err != nil {
		return err
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	start := time.Now()
	frame, err := backend.Process(ctx, src, p)
	if err != nil {
		return fmt.Errorf("%s: %w", backend.Name(), err)
	}
	darkroom.Logger().Info("frame rendered",
		"backend", backend.Name(), "size", fmt.Sprintf("%dx%d", frame.Width, frame.Height),
		"elapsed", time.Since(start))

	if err := savePNG(cfg.out, frame.Image()); err != nil {
		return err
	}
	log.Printf("saved %s (%dx%d, %s backend)\n", cfg.out, frame.Width, frame.Height, backend.Name())
	return nil
}

// buildPipeline loads the sidecar, if any, and applies flag overrides.
func buildPipeline(cfg *config) (*darkroom.Pipeline, error) {
	p := darkroom.NewPipeline()
	if cfg.pipeline != "" {
		data, err := os.ReadFile(cfg.pipeline)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.pipeline, err)
		}
	}

	if cfg.set["temperature"] || cfg.set["tint"] {
		wb := p.WhiteBalance()
		if cfg.set["temperature"] {
			wb.Temperature = cfg.temperature
		}
		if cfg.set["tint"] {
			wb.Tint = cfg.tint
		}
		p.Set(wb)
	}
	if cfg.set["exposure"] {
		p.Set(darkroom.Exposure{Value: cfg.exposure})
	}
	if cfg.set["contrast"] {
		p.Set(darkroom.Contrast{Value: cfg.contrast})
	}
	if cfg.set["highlights"] || cfg.set["shadows"] {
		hs := p.HighlightsShadows()
		if cfg.set["highlights"] {
			hs.Highlights = cfg.highlights
		}
		if cfg.set["shadows"] {
			hs.Shadows = cfg.shadows
		}
		p.Set(hs)
	}
	if cfg.set["blacks"] || cfg.set["whites"] {
		bw := p.BlacksWhites()
		if cfg.set["blacks"] {
			bw.Blacks = cfg.blacks
		}
		if cfg.set["whites"] {
			bw.Whites = cfg.whites
		}
		p.Set(bw)
	}
	if cfg.set["saturation"] || cfg.set["vibrance"] {
		sv := p.SaturationVibrance()
		if cfg.set["saturation"] {
			sv.Saturation = cfg.saturation
		}
		if cfg.set["vibrance"] {
			sv.Vibrance = cfg.vibrance
		}
		p.Set(sv)
	}
	if cfg.crop != "" {
		c, err := parseCrop(cfg.crop)
		if err != nil {
			return nil, err
		}
		p.SetCrop(c)
	}
	return p, nil
}

// parseCrop parses "left,top,right,bottom".
func parseCrop(s string) (darkroom.CropRect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return darkroom.CropRect{}, fmt.Errorf("crop %q: want left,top,right,bottom", s)
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return darkroom.CropRect{}, fmt.Errorf("crop %q: %w", s, err)
		}
		v[i] = f
	}
	c := darkroom.CropRect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}
	if !c.Valid() {
		return darkroom.CropRect{}, fmt.Errorf("crop %q: edges must be in [0, 1] with left < right and top < bottom", s)
	}
	return c, nil
}

func loadImage(path string, preview int) (darkroom.RawPixelData, error) {
	f, err := os.Open(path)
	if err != nil {
		return darkroom.RawPixelData{}, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return darkroom.RawPixelData{}, fmt.Errorf("decode %s: %w", path, err)
	}
	darkroom.Logger().Debug("image loaded", "path", path, "format", format, "bounds", img.Bounds())
	if preview > 0 {
		img = downscale(img, preview)
	}
	return darkroom.RawPixelDataFromImage(img), nil
}

// downscale fits img inside a maxEdge x maxEdge box. Smaller images are
// returned unchanged.
func downscale(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}
	if w >= h {
		h = max(1, h*maxEdge/w)
		w = maxEdge
	} else {
		w = max(1, w*maxEdge/h)
		h = maxEdge
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func openBackend(cfg *config) (darkroom.Backend, error) {
	cpuBackend := func() darkroom.Backend {
		var opts []cpu.Option
		if cfg.workers > 0 {
			opts = append(opts, cpu.WithWorkers(cfg.workers))
		}
		return cpu.New(opts...)
	}

	switch cfg.backend {
	case "cpu":
		return cpuBackend(), nil
	case "gpu", "auto":
		var opts []gpu.Option
		if cfg.fenceTimeout > 0 {
			opts = append(opts, gpu.WithFenceTimeout(cfg.fenceTimeout))
		}
		b, err := gpu.New(opts...)
		if err == nil {
			return b, nil
		}
		if cfg.backend == "gpu" {
			return nil, err
		}
		darkroom.Logger().Warn("GPU unavailable, using CPU", "err", err)
		return cpuBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.backend)
	}
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
