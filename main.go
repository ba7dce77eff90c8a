// pathtracer renders scenes with a Monte Carlo path tracer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"go.opencensus.io/stats/view"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

var cmdRoot = &cobra.Command{
	Use:          "pathtracer",
	Short:        "Monte Carlo path tracer",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// glog's flags were parsed by cobra; keep it from complaining that flag.Parse never ran
		flag.CommandLine.Parse([]string{})
	},
}

func init() {
	cmdRoot.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

// renderFlags holds the render subcommand's flags
type renderFlags struct {
	configPath string
	scene      string
	spp        int
	maxDepth   int
	rr         float64
	workers    int
	tileSize   int
	seed       int64
	output     string
	metrics    bool
}

var renderOpts renderFlags

var cmdRender = &cobra.Command{
	Use:   "render",
	Short: "Render a scene preset or a YAML scene description to PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := renderOpts.config(cmd.Flags().Changed)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if renderOpts.metrics {
			if err := renderer.RegisterViews(); err != nil {
				return err
			}
			defer logViews()
		}

		return runRender(ctx, cfg, glogLogger{})
	},
}

func init() {
	f := cmdRender.Flags()
	f.StringVar(&renderOpts.configPath, "config", "", "YAML configuration file")
	f.StringVar(&renderOpts.scene, "scene", "", "Scene preset ("+strings.Join(scene.PresetNames(), ", ")+"); replaces the configured scene")
	f.IntVar(&renderOpts.spp, "spp", 0, "Samples per pixel")
	f.IntVar(&renderOpts.maxDepth, "max-depth", 0, "Maximum path depth")
	f.Float64Var(&renderOpts.rr, "rr", 0, "Russian roulette continuation probability in (0, 1)")
	f.IntVar(&renderOpts.workers, "workers", 0, "Concurrent tiles (0 = one per CPU)")
	f.IntVar(&renderOpts.tileSize, "tile-size", 0, "Tile edge length in pixels")
	f.Int64Var(&renderOpts.seed, "seed", 0, "Base random seed")
	f.StringVar(&renderOpts.output, "output", "", "Output PNG path (empty = output/<scene>/render_<timestamp>.png)")
	f.BoolVar(&renderOpts.metrics, "metrics", false, "Log renderer metrics when the render finishes")
}

var cmdScenes = &cobra.Command{
	Use:   "scenes",
	Short: "List the built-in scene presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range scene.PresetNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

// config loads the configuration file, if any, and overlays the flags the user set
func (f *renderFlags) config(changed func(name string) bool) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("while loading %s: %w", f.configPath, err)
		}
		cfg = loaded
	}

	if changed("scene") {
		cfg.Scene = config.SceneConfig{Preset: f.scene}
	}
	if changed("spp") {
		cfg.Render.SamplesPerPixel = f.spp
	}
	if changed("max-depth") {
		cfg.Render.MaxDepth = f.maxDepth
	}
	if changed("rr") {
		cfg.Render.RussianRoulette = f.rr
	}
	if changed("workers") {
		cfg.Render.Workers = f.workers
	}
	if changed("tile-size") {
		cfg.Render.TileSize = f.tileSize
	}
	if changed("seed") {
		cfg.Render.Seed = f.seed
	}
	if changed("output") {
		cfg.Render.Output = f.output
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// sceneName names the configured scene for output paths and metrics
func sceneName(cfg *config.Config) string {
	if cfg.Scene.Preset != "" && len(cfg.Scene.Objects) == 0 {
		return strings.ToLower(cfg.Scene.Preset)
	}
	return "custom"
}

// createScene builds and preprocesses the configured scene
func createScene(cfg *config.Config) (*scene.Scene, error) {
	s, err := scene.FromConfig(cfg.Scene, cfg.Render)
	if err != nil {
		return nil, fmt.Errorf("while building scene: %w", err)
	}
	if err := s.Preprocess(); err != nil {
		return nil, fmt.Errorf("while preprocessing scene: %w", err)
	}
	return s, nil
}

// outputPath returns the configured output, or a timestamped path under output/<scene>
func outputPath(cfg *config.Config, now time.Time) string {
	if cfg.Render.Output != "" {
		return cfg.Render.Output
	}
	return filepath.Join("output", sceneName(cfg), fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

// runRender renders the configured scene and writes the PNG
func runRender(ctx context.Context, cfg *config.Config, logger core.Logger) error {
	s, err := createScene(cfg)
	if err != nil {
		return err
	}
	glog.Infof("Scene %s: %d primitives, %d emitters (area %.3g), %dx%d",
		sceneName(cfg), s.PrimitiveCount(), len(s.Emitters()), s.EmissiveArea(), s.Camera.Width(), s.Camera.Height())
	if len(s.Emitters()) == 0 {
		glog.Warningf("Scene %s has no emitters; only the background will contribute", sceneName(cfg))
	}

	rt, err := renderer.NewRaytracer(s, renderer.Config{
		Workers:   cfg.Render.Workers,
		TileSize:  cfg.Render.TileSize,
		Seed:      cfg.Render.Seed,
		Gamma:     cfg.Render.Gamma,
		SceneName: sceneName(cfg),
	}, logger)
	if err != nil {
		return fmt.Errorf("while creating renderer: %w", err)
	}

	img, stats, err := rt.Render(ctx)
	if err != nil {
		return err
	}
	if stats.NonFiniteSamples > 0 {
		glog.Warningf("Dropped %d of %d samples with non-finite radiance",
			stats.NonFiniteSamples, stats.NonFiniteSamples+stats.TotalSamples)
	}

	path := outputPath(cfg, time.Now())
	if err := renderer.SavePNG(img, path); err != nil {
		return err
	}
	glog.Infof("Render saved as %s", path)
	return nil
}

// logViews writes the renderer's aggregated metrics to the log
func logViews() {
	for _, v := range []*view.View{renderer.SampleCountView, renderer.NonFiniteCountView, renderer.TileCountView, renderer.TileLatencyView} {
		rows, err := view.RetrieveData(v.Name)
		if err != nil {
			glog.Warningf("while retrieving view %s: %v", v.Name, err)
			continue
		}
		for _, row := range rows {
			glog.Infof("%s %v", v.Name, row)
		}
	}
}

// glogLogger adapts glog to core.Logger
type glogLogger struct{}

func (glogLogger) Printf(format string, args ...interface{}) {
	glog.InfoDepth(1, strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
}

func main() {
	glog.CopyStandardLogTo("INFO")

	cmdRoot.AddCommand(cmdRender, cmdScenes)

	err := cmdRoot.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
