package config

import (
	"fmt"
	"io/ioutil"

	"github.com/df07/go-pathtracer/pkg/core"
	"gopkg.in/yaml.v2"
)

// Config represents the main configuration
type Config struct {
	Render RenderConfig `yaml:"render"`
	Scene  SceneConfig  `yaml:"scene"`
}

// RenderConfig contains sampling and scheduling configuration
type RenderConfig struct {
	SamplesPerPixel int     `yaml:"samples_per_pixel"`
	MaxDepth        int     `yaml:"max_depth"`        // Hard cap on path vertices
	RussianRoulette float64 `yaml:"russian_roulette"` // Continuation probability, exclusive (0,1)
	Workers         int     `yaml:"workers"`          // Concurrent tiles; 0 means one per CPU
	TileSize        int     `yaml:"tile_size"`
	Seed            int64   `yaml:"seed"`
	BVHSplit        string  `yaml:"bvh_split"` // naive or sah
	Gamma           float64 `yaml:"gamma"`
	Output          string  `yaml:"output"`
}

// SceneConfig describes the scene, either as a preset or as explicit objects
type SceneConfig struct {
	Preset     string                    `yaml:"preset"` // cornell or furnace; objects are added to the preset
	Background Vector                    `yaml:"background"`
	Camera     *CameraConfig             `yaml:"camera"`
	Materials  map[string]MaterialConfig `yaml:"materials"`
	Objects    []ObjectConfig            `yaml:"objects"`
}

// CameraConfig mirrors geometry.CameraConfig with YAML-friendly vectors
type CameraConfig struct {
	Center        Vector  `yaml:"center"`
	LookAt        Vector  `yaml:"look_at"`
	Up            Vector  `yaml:"up"`
	Width         int     `yaml:"width"`
	AspectRatio   float64 `yaml:"aspect_ratio"`
	VFov          float64 `yaml:"vfov"`
	Aperture      float64 `yaml:"aperture"`
	FocusDistance float64 `yaml:"focus_distance"`
}

// MaterialConfig describes one named material
type MaterialConfig struct {
	Type     string `yaml:"type"` // lambertian or emissive
	Albedo   Vector `yaml:"albedo"`
	Emission Vector `yaml:"emission"`
}

// ObjectConfig describes one object; which fields apply depends on Type
type ObjectConfig struct {
	Type     string `yaml:"type"` // sphere, quad, triangle, box, mesh
	Material string `yaml:"material"`

	// sphere
	Center Vector  `yaml:"center"`
	Radius float64 `yaml:"radius"`

	// quad
	Corner Vector `yaml:"corner"`
	U      Vector `yaml:"u"`
	V      Vector `yaml:"v"`

	// triangle and inline mesh
	Vertices []Vector `yaml:"vertices"`
	Faces    []int    `yaml:"faces"`

	// box (half extents) and mesh transforms
	Size     Vector `yaml:"size"`
	Rotation Vector `yaml:"rotation"` // Degrees around X, Y, Z

	// mesh loaded from disk
	PLY string `yaml:"ply"`
}

// Vector is a three-component list such as [0.73, 0.73, 0.73]
type Vector []float64

// Vec3 converts the vector; an empty vector is the zero vector
func (v Vector) Vec3() core.Vec3 {
	if len(v) != 3 {
		return core.Vec3{}
	}
	return core.NewVec3(v[0], v[1], v[2])
}

// IsSet reports whether the vector was given at all
func (v Vector) IsSet() bool {
	return len(v) > 0
}

func (v Vector) check(field string) error {
	if len(v) != 0 && len(v) != 3 {
		return fmt.Errorf("%s: want 3 components, got %d", field, len(v))
	}
	return nil
}

// DefaultConfig creates a default configuration rendering the Cornell box
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			SamplesPerPixel: 64,
			MaxDepth:        50,
			RussianRoulette: 0.8,
			Workers:         0,
			TileSize:        32,
			Seed:            1,
			BVHSplit:        "sah",
			Gamma:           2.0,
			Output:          "output.png",
		},
		Scene: SceneConfig{
			Preset: "cornell",
		},
	}
}

// LoadConfig loads the configuration from a file.
// Render settings overlay the defaults; the scene comes from the file alone
// and falls back to the default preset only when the file describes no scene.
func LoadConfig(filePath string) (*Config, error) {
	data, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("while reading config file: %w", err)
	}

	config := DefaultConfig()
	config.Scene = SceneConfig{}
	if err := Parse(data, config); err != nil {
		return nil, err
	}

	if config.Scene.Preset == "" && len(config.Scene.Objects) == 0 {
		config.Scene.Preset = DefaultConfig().Scene.Preset
	}

	return config, nil
}

// Parse decodes YAML into config. Fields absent from data keep their current values.
func Parse(data []byte, config *Config) error {
	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return fmt.Errorf("while parsing config: %w", err)
	}
	return nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("while serializing config: %w", err)
	}

	if err := ioutil.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("while writing config file: %w", err)
	}

	return nil
}
