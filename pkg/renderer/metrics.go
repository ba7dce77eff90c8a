package renderer

import (
	"context"
	"fmt"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	sceneKey = tag.MustNewKey("scene")

	sampleCount    = stats.Int64("pathtracer/samples", "Camera samples accumulated into pixels", stats.UnitDimensionless)
	nonFiniteCount = stats.Int64("pathtracer/nonfinite_samples", "Camera samples dropped for NaN or infinite radiance", stats.UnitDimensionless)
	tileCount      = stats.Int64("pathtracer/tiles", "Tiles rendered", stats.UnitDimensionless)
	tileLatency    = stats.Float64("pathtracer/tile_latency_ms", "Wall time to render one tile", stats.UnitMilliseconds)
)

// Views exported by the renderer. Nothing is recorded into them until RegisterViews is called.
var (
	SampleCountView = &view.View{
		Name:        "pathtracer/samples",
		Description: "Total camera samples accumulated into pixels",
		TagKeys:     []tag.Key{sceneKey},
		Measure:     sampleCount,
		Aggregation: view.Sum(),
	}
	NonFiniteCountView = &view.View{
		Name:        "pathtracer/nonfinite_samples",
		Description: "Total camera samples dropped for NaN or infinite radiance",
		TagKeys:     []tag.Key{sceneKey},
		Measure:     nonFiniteCount,
		Aggregation: view.Sum(),
	}
	TileCountView = &view.View{
		Name:        "pathtracer/tiles",
		Description: "Counter of tiles that have been rendered",
		TagKeys:     []tag.Key{sceneKey},
		Measure:     tileCount,
		Aggregation: view.Count(),
	}
	TileLatencyView = &view.View{
		Name:        "pathtracer/tile_latency_ms",
		Description: "Distribution of tile render times",
		TagKeys:     []tag.Key{sceneKey},
		Measure:     tileLatency,
		Aggregation: view.Distribution(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
	}
)

// RegisterViews registers the renderer's views with the opencensus view package
func RegisterViews() error {
	if err := view.Register(SampleCountView, NonFiniteCountView, TileCountView, TileLatencyView); err != nil {
		return fmt.Errorf("while registering renderer views: %w", err)
	}
	return nil
}

// recordTile records the measurements of one finished tile
func recordTile(ctx context.Context, sceneName string, tileStats RenderStats, elapsed time.Duration) error {
	err := stats.RecordWithOptions(
		ctx,
		stats.WithTags(tag.Insert(sceneKey, sceneName)),
		stats.WithMeasurements(
			sampleCount.M(int64(tileStats.TotalSamples)),
			nonFiniteCount.M(int64(tileStats.NonFiniteSamples)),
			tileCount.M(1),
			tileLatency.M(float64(elapsed)/float64(time.Millisecond)),
		))
	if err != nil {
		return fmt.Errorf("while recording tile metrics for scene %q: %w", sceneName, err)
	}
	return nil
}
