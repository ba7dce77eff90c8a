package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Config contains the parallel rendering configuration
type Config struct {
	Workers   int     // Number of parallel workers (0 = use CPU count)
	TileSize  int     // Edge length of each square tile in pixels
	Seed      int64   // Base seed; each tile derives its own sampler from it
	Gamma     float64 // Display gamma applied when quantizing to 8 bits (<= 0 means linear)
	SceneName string  // Tag attached to recorded metrics
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Workers:   0,
		TileSize:  32,
		Seed:      1,
		Gamma:     2.0,
		SceneName: "scene",
	}
}

// Raytracer renders a scene into an image by splitting it into tiles and
// estimating every pixel with the path tracing integrator.
// A Raytracer runs one Render at a time; PixelColor reads the result once Render has returned.
type Raytracer struct {
	camera          Camera
	integrator      integrator.Integrator
	width, height   int
	samplesPerPixel int
	config          Config
	logger          core.Logger

	pixelStats [][]PixelStats // Indexed [y][x]
}

// NewRaytracer creates a raytracer for a preprocessed scene
func NewRaytracer(s *scene.Scene, config Config, logger core.Logger) (*Raytracer, error) {
	if s.Camera == nil {
		return nil, fmt.Errorf("scene has no camera; was it preprocessed?")
	}
	return newRaytracer(s.Camera, s.Camera.Width(), s.Camera.Height(), s.SamplingConfig.SamplesPerPixel,
		integrator.NewPathTracingIntegrator(s), config, logger)
}

func newRaytracer(camera Camera, width, height, spp int, integ integrator.Integrator, config Config, logger core.Logger) (*Raytracer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image size must be positive, got %dx%d", width, height)
	}
	if spp <= 0 {
		return nil, fmt.Errorf("samples per pixel must be positive, got %d", spp)
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultConfig().TileSize
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	return &Raytracer{
		camera:          camera,
		integrator:      integ,
		width:           width,
		height:          height,
		samplesPerPixel: spp,
		config:          config,
		logger:          logger,
	}, nil
}

// Bounds returns the rectangle of the rendered image
func (rt *Raytracer) Bounds() image.Rectangle {
	return image.Rect(0, 0, rt.width, rt.height)
}

// Render estimates every pixel and returns the gamma-corrected image.
// Cancelling ctx stops tiles that have not started; Render then returns ctx's error.
func (rt *Raytracer) Render(ctx context.Context) (*image.RGBA, RenderStats, error) {
	tracer := otel.Tracer("go-pathtracer/renderer")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Raytracer.Render")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("width", int64(rt.width)),
		attribute.Int64("height", int64(rt.height)),
		attribute.Int64("spp", int64(rt.samplesPerPixel)),
	)

	startTime := time.Now()
	rt.resetPixelStats()

	tiles := NewTileGrid(rt.width, rt.height, rt.config.TileSize, rt.config.Seed)
	tileRenderer := NewTileRenderer(rt.camera, rt.integrator)
	pool := NewWorkerPool(rt.config.Workers)

	rt.logger.Printf("Rendering %dx%d at %d samples per pixel (%d tiles, %d workers)...\n",
		rt.width, rt.height, rt.samplesPerPixel, len(tiles), pool.GetNumWorkers())

	var totals RenderStats
	var totalsMu sync.Mutex

	err := pool.Run(ctx, tiles, func(ctx context.Context, tile *Tile) error {
		var span trace.Span
		ctx, span = tracer.Start(ctx, "Raytracer.renderTile")
		defer span.End()
		span.SetAttributes(attribute.Int64("tile", int64(tile.ID)))

		if err := ctx.Err(); err != nil {
			return err
		}

		tileStart := time.Now()
		tileStats := tileRenderer.RenderTileBounds(tile.Bounds, rt.pixelStats, tile.Sampler(), rt.samplesPerPixel)
		if err := recordTile(ctx, rt.config.SceneName, tileStats, time.Since(tileStart)); err != nil {
			// Metrics never fail a render
			rt.logger.Printf("Tile %d: %v\n", tile.ID, err)
		}

		totalsMu.Lock()
		totals.merge(tileStats)
		totalsMu.Unlock()
		return nil
	})

	totals.finalize()
	totals.Duration = time.Since(startTime)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		rt.logger.Printf("Render stopped after %d of %d tiles: %v\n", totals.Tiles, len(tiles), err)
		return nil, totals, fmt.Errorf("while rendering %d tiles: %w", len(tiles), err)
	}

	if totals.NonFiniteSamples > 0 {
		rt.logger.Printf("Dropped %d non-finite samples\n", totals.NonFiniteSamples)
	}
	rt.logger.Printf("Render completed in %v (%.1f samples/pixel)\n", totals.Duration, totals.AverageSamples)
	span.SetStatus(codes.Ok, "")

	return rt.assembleImage(), totals, nil
}

// PixelColor returns the linear radiance estimate of pixel (x, y) from the last render.
// It must not be called while Render is running.
func (rt *Raytracer) PixelColor(x, y int) core.Vec3 {
	if y < 0 || y >= len(rt.pixelStats) || x < 0 || x >= len(rt.pixelStats[y]) {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return rt.pixelStats[y][x].GetColor()
}

func (rt *Raytracer) resetPixelStats() {
	rt.pixelStats = make([][]PixelStats, rt.height)
	for y := range rt.pixelStats {
		rt.pixelStats[y] = make([]PixelStats, rt.width)
	}
}

// assembleImage converts the accumulated pixel statistics to an 8-bit image
func (rt *Raytracer) assembleImage() *image.RGBA {
	img := image.NewRGBA(rt.Bounds())
	for y := 0; y < rt.height; y++ {
		for x := 0; x < rt.width; x++ {
			img.SetRGBA(x, y, vec3ToColor(rt.pixelStats[y][x].GetColor(), rt.config.Gamma))
		}
	}
	return img
}

// vec3ToColor converts a Vec3 color to RGBA with proper clamping and gamma correction
func vec3ToColor(colorVec core.Vec3, gamma float64) color.RGBA {
	colorVec = colorVec.Clamp(0.0, 1.0)
	if gamma > 0 {
		colorVec = colorVec.GammaCorrect(gamma)
	}

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}
