package renderer

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"go.opencensus.io/stats/view"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// recordingLogger captures log lines
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, format)
}

// cancellingIntegrator cancels the render on its first call and returns black
type cancellingIntegrator struct {
	once   sync.Once
	cancel context.CancelFunc
}

func (c *cancellingIntegrator) RayColor(ray core.Ray, sampler core.Sampler) core.Vec3 {
	c.once.Do(c.cancel)
	return core.NewVec3(0, 0, 0)
}

func newFurnaceRaytracer(t *testing.T, spp int, config Config) *Raytracer {
	t.Helper()
	s := scene.NewFurnaceScene()
	s.SamplingConfig.SamplesPerPixel = spp
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	rt, err := NewRaytracer(s, config, nil)
	if err != nil {
		t.Fatalf("NewRaytracer: %v", err)
	}
	return rt
}

func TestNewRaytracerErrors(t *testing.T) {
	if _, err := NewRaytracer(&scene.Scene{}, DefaultConfig(), nil); err == nil {
		t.Error("Expected an error for a scene without a camera")
	}

	s := scene.NewFurnaceScene()
	s.SamplingConfig.SamplesPerPixel = 0
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if _, err := NewRaytracer(s, DefaultConfig(), nil); err == nil {
		t.Error("Expected an error for zero samples per pixel")
	}

	if _, err := newRaytracer(MockCamera{}, 0, 4, 1, samplerIntegrator{}, DefaultConfig(), nil); err == nil {
		t.Error("Expected an error for a zero-width image")
	}
}

func TestRaytracerFurnace(t *testing.T) {
	config := DefaultConfig()
	config.Workers = 4
	config.TileSize = 16
	rt := newFurnaceRaytracer(t, 16, config)

	img, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if img.Bounds() != rt.Bounds() {
		t.Errorf("Image bounds %v, want %v", img.Bounds(), rt.Bounds())
	}
	pixels := rt.Bounds().Dx() * rt.Bounds().Dy()
	if stats.TotalPixels != pixels || stats.TotalSamples != pixels*16 {
		t.Errorf("Unexpected stats %+v for %d pixels", stats, pixels)
	}
	if stats.Tiles != 16 {
		t.Errorf("Expected 16 tiles, got %d", stats.Tiles)
	}

	// Corner rays miss the sphere and see only the emitting shell
	corner := rt.PixelColor(0, 0)
	want := core.NewVec3(scene.FurnaceRadiance, scene.FurnaceRadiance, scene.FurnaceRadiance)
	if corner != want {
		t.Errorf("corner radiance = %v, want %v", corner, want)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("corner pixel = %v, want white", got)
	}

	// The sphere reflects albedo * radiance
	sum := 0.0
	n := 0
	for y := 28; y < 36; y++ {
		for x := 28; x < 36; x++ {
			sum += rt.PixelColor(x, y).Luminance()
			n++
		}
	}
	mean := sum / float64(n)
	expected := scene.FurnaceAlbedo * scene.FurnaceRadiance
	if math.Abs(mean-expected) > 0.05 {
		t.Errorf("center radiance = %f, want %f ± 0.05", mean, expected)
	}
}

func TestRaytracerPixelColorAfterRender(t *testing.T) {
	want := core.NewVec3(0.5, 0.25, 1)
	config := DefaultConfig()
	config.Workers = 1
	config.TileSize = 4
	rt, err := newRaytracer(MockCamera{}, 8, 4, 2, &MockIntegrator{returnColor: want}, config, nil)
	if err != nil {
		t.Fatalf("newRaytracer: %v", err)
	}

	img, _, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if got := rt.PixelColor(3, 2); got != want {
		t.Errorf("PixelColor(3, 2) = %v, want %v", got, want)
	}
	if got, wantRGBA := img.RGBAAt(3, 2), vec3ToColor(want, config.Gamma); got != wantRGBA {
		t.Errorf("image pixel = %v, want %v", got, wantRGBA)
	}

	outside := []struct{ x, y int }{{-1, 0}, {8, 0}, {0, -1}, {0, 4}}
	for _, p := range outside {
		if got := rt.PixelColor(p.x, p.y); got != (core.Vec3{}) {
			t.Errorf("PixelColor(%d, %d) = %v, want zero", p.x, p.y, got)
		}
	}
}

func TestRaytracerDeterministicAcrossWorkerCounts(t *testing.T) {
	render := func(workers int) []byte {
		config := DefaultConfig()
		config.Workers = workers
		config.TileSize = 8
		config.Seed = 99
		img, _, err := newFurnaceRaytracer(t, 2, config).Render(context.Background())
		if err != nil {
			t.Fatalf("Render with %d workers: %v", workers, err)
		}
		return img.Pix
	}

	single := render(1)
	parallel := render(4)
	if !bytes.Equal(single, parallel) {
		t.Error("Expected identical images regardless of worker count")
	}
}

func TestRaytracerSeedChangesImage(t *testing.T) {
	render := func(seed int64) []byte {
		config := DefaultConfig()
		config.Seed = seed
		img, _, err := newFurnaceRaytracer(t, 1, config).Render(context.Background())
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		return img.Pix
	}

	if bytes.Equal(render(1), render(2)) {
		t.Error("Expected different seeds to produce different noise")
	}
}

func TestRaytracerCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	img, stats, err := newFurnaceRaytracer(t, 1, DefaultConfig()).Render(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if img != nil {
		t.Error("Expected no image from a cancelled render")
	}
	if stats.Tiles != 0 {
		t.Errorf("Expected no tiles rendered, got %d", stats.Tiles)
	}
}

func TestRaytracerCancelledMidRender(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := DefaultConfig()
	config.Workers = 1
	config.TileSize = 2
	logger := &recordingLogger{}
	rt, err := newRaytracer(MockCamera{}, 8, 8, 1, &cancellingIntegrator{cancel: cancel}, config, logger)
	if err != nil {
		t.Fatalf("newRaytracer: %v", err)
	}

	_, stats, err := rt.Render(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if stats.Tiles == 0 || stats.Tiles >= 16 {
		t.Errorf("Expected the render to stop part way, rendered %d of 16 tiles", stats.Tiles)
	}
	if len(logger.lines) == 0 {
		t.Error("Expected the render to log")
	}
}

func TestRaytracerRecordsMetrics(t *testing.T) {
	if err := RegisterViews(); err != nil {
		t.Fatalf("RegisterViews: %v", err)
	}
	defer view.Unregister(SampleCountView, NonFiniteCountView, TileCountView, TileLatencyView)

	config := DefaultConfig()
	config.TileSize = 4
	config.SceneName = "metrics-test"
	integ := &MockIntegrator{sequence: []core.Vec3{core.NewVec3(1, 1, 1), core.NewVec3(math.Inf(1), 0, 0)}}
	config.Workers = 1
	rt, err := newRaytracer(MockCamera{}, 8, 4, 2, integ, config, nil)
	if err != nil {
		t.Fatalf("newRaytracer: %v", err)
	}
	if _, _, err := rt.Render(context.Background()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	sumFor := func(name string) float64 {
		rows, err := view.RetrieveData(name)
		if err != nil {
			t.Fatalf("RetrieveData(%s): %v", name, err)
		}
		for _, row := range rows {
			for _, tg := range row.Tags {
				if tg.Key == sceneKey && tg.Value == "metrics-test" {
					switch data := row.Data.(type) {
					case *view.SumData:
						return data.Value
					case *view.CountData:
						return float64(data.Value)
					}
				}
			}
		}
		return 0
	}

	if got := sumFor("pathtracer/samples"); got != 32 {
		t.Errorf("samples = %f, want 32", got)
	}
	if got := sumFor("pathtracer/nonfinite_samples"); got != 32 {
		t.Errorf("non-finite samples = %f, want 32", got)
	}
	if got := sumFor("pathtracer/tiles"); got != 2 {
		t.Errorf("tiles = %f, want 2", got)
	}
}

func TestVec3ToColor(t *testing.T) {
	tests := []struct {
		name  string
		in    core.Vec3
		gamma float64
		want  color.RGBA
	}{
		{"black", core.NewVec3(0, 0, 0), 2, color.RGBA{0, 0, 0, 255}},
		{"clamped", core.NewVec3(4, -1, 1), 2, color.RGBA{255, 0, 255, 255}},
		{"gamma 2", core.NewVec3(0.25, 0.25, 0.25), 2, color.RGBA{127, 127, 127, 255}},
		{"linear", core.NewVec3(0.25, 0.25, 0.25), 0, color.RGBA{63, 63, 63, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vec3ToColor(tt.in, tt.gamma); got != tt.want {
				t.Errorf("vec3ToColor(%v, %v) = %v, want %v", tt.in, tt.gamma, got, tt.want)
			}
		})
	}
}

func TestSavePNG(t *testing.T) {
	config := DefaultConfig()
	config.Workers = 1
	rt, err := newRaytracer(MockCamera{}, 4, 3, 1, &MockIntegrator{returnColor: core.NewVec3(1, 0, 0)}, config, nil)
	if err != nil {
		t.Fatalf("newRaytracer: %v", err)
	}
	img, _, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	path := filepath.Join(t.TempDir(), "nested", "out.png")
	if err := SavePNG(img, path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	if err := SavePNG(img, filepath.Join(path, "under-a-file.png")); err == nil {
		t.Error("Expected an error writing below a regular file")
	}
}
