package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const exampleYAML = `
render:
  samples_per_pixel: 16
  max_depth: 8
  russian_roulette: 0.6
  bvh_split: naive
scene:
  background: [0.1, 0.2, 0.3]
  camera:
    center: [0, 1, 5]
    look_at: [0, 1, 0]
    width: 64
    aspect_ratio: 1
    vfov: 40
  materials:
    white:
      type: lambertian
      albedo: [0.73, 0.73, 0.73]
    light:
      type: emissive
      emission: [10, 10, 10]
  objects:
    - type: sphere
      material: white
      center: [0, 1, 0]
      radius: 1
    - type: quad
      material: light
      corner: [-1, 3, -1]
      u: [2, 0, 0]
      v: [0, 0, 2]
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := ioutil.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, exampleYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	want := DefaultConfig().Render
	want.SamplesPerPixel = 16
	want.MaxDepth = 8
	want.RussianRoulette = 0.6
	want.BVHSplit = "naive"
	if diff := cmp.Diff(want, config.Render); diff != "" {
		t.Errorf("Render config mismatch (-want +got):\n%s", diff)
	}

	if config.Scene.Preset != "" {
		t.Errorf("Explicit scene should not inherit the default preset, got %q", config.Scene.Preset)
	}
	if len(config.Scene.Objects) != 2 || len(config.Scene.Materials) != 2 {
		t.Errorf("Expected 2 objects and 2 materials, got %d and %d", len(config.Scene.Objects), len(config.Scene.Materials))
	}
	if got := config.Scene.Background.Vec3(); got.Y != 0.2 {
		t.Errorf("Unexpected background %v", got)
	}
}

func TestLoadConfig_RenderOnlyKeepsPreset(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "render:\n  samples_per_pixel: 4\n"))
	if err != nil {
		t.Fatal(err)
	}
	if config.Scene.Preset != "cornell" {
		t.Errorf("Expected default preset, got %q", config.Scene.Preset)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(os.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := LoadConfig(writeConfig(t, "render:\n  unknown_field: 3\n")); err == nil {
		t.Error("Expected error for unknown field")
	}
	if _, err := LoadConfig(writeConfig(t, "render: [1, 2")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := writeConfig(t, exampleYAML)
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	reloaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(config, reloaded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Round trip changed config (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"zero spp", func(c *Config) { c.Render.SamplesPerPixel = 0 }, "samples_per_pixel"},
		{"negative depth", func(c *Config) { c.Render.MaxDepth = -1 }, "max_depth"},
		{"roulette zero", func(c *Config) { c.Render.RussianRoulette = 0 }, "russian_roulette"},
		{"roulette one", func(c *Config) { c.Render.RussianRoulette = 1 }, "russian_roulette"},
		{"bad split", func(c *Config) { c.Render.BVHSplit = "octree" }, "split"},
		{"bad preset", func(c *Config) { c.Scene.Preset = "sponza" }, "preset"},
		{"undefined material", func(c *Config) {
			c.Scene.Objects = []ObjectConfig{{Type: "sphere", Material: "gold", Center: Vector{0, 0, 0}, Radius: 1}}
		}, "undefined material"},
		{"short vector", func(c *Config) {
			c.Scene.Materials = map[string]MaterialConfig{"white": {Type: "lambertian", Albedo: Vector{1, 1}}}
		}, "3 components"},
		{"unknown object", func(c *Config) {
			c.Scene.Materials = map[string]MaterialConfig{"white": {Type: "lambertian", Albedo: Vector{1, 1, 1}}}
			c.Scene.Objects = []ObjectConfig{{Type: "torus", Material: "white"}}
		}, "unknown object type"},
		{"triangle vertex count", func(c *Config) {
			c.Scene.Materials = map[string]MaterialConfig{"white": {Type: "lambertian", Albedo: Vector{1, 1, 1}}}
			c.Scene.Objects = []ObjectConfig{{Type: "triangle", Material: "white", Vertices: []Vector{{0, 0, 0}, {1, 0, 0}}}}
		}, "exactly 3 vertices"},
		{"no camera without preset", func(c *Config) {
			c.Scene.Preset = ""
			c.Scene.Materials = map[string]MaterialConfig{"white": {Type: "lambertian", Albedo: Vector{1, 1, 1}}}
			c.Scene.Objects = []ObjectConfig{{Type: "sphere", Material: "white", Center: Vector{0, 0, 0}, Radius: 1}}
		}, "camera is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
