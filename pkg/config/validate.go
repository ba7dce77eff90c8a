package config

import (
	"fmt"
	"strings"

	"github.com/df07/go-pathtracer/pkg/geometry"
)

// Validate checks the configuration for values the renderer cannot use
func (c *Config) Validate() error {
	if err := c.Render.Validate(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := c.Scene.Validate(); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	return nil
}

// Validate checks sampling and scheduling parameters
func (r *RenderConfig) Validate() error {
	if r.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples_per_pixel must be positive, got %d", r.SamplesPerPixel)
	}
	if r.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", r.MaxDepth)
	}
	if r.RussianRoulette <= 0 || r.RussianRoulette >= 1 {
		return fmt.Errorf("russian_roulette must be in (0, 1), got %g", r.RussianRoulette)
	}
	if r.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", r.Workers)
	}
	if r.TileSize <= 0 {
		return fmt.Errorf("tile_size must be positive, got %d", r.TileSize)
	}
	if r.Gamma <= 0 {
		return fmt.Errorf("gamma must be positive, got %g", r.Gamma)
	}
	if _, err := geometry.ParseSplitMethod(r.BVHSplit); err != nil {
		return err
	}
	return nil
}

// Validate checks that materials are well formed and every object references one
func (s *SceneConfig) Validate() error {
	switch strings.ToLower(s.Preset) {
	case "", "cornell", "furnace":
	default:
		return fmt.Errorf("unknown preset %q", s.Preset)
	}

	if s.Preset == "" && len(s.Objects) == 0 {
		return fmt.Errorf("no preset and no objects")
	}
	if err := s.Background.check("background"); err != nil {
		return err
	}

	if s.Camera != nil {
		if err := s.Camera.Validate(); err != nil {
			return fmt.Errorf("camera: %w", err)
		}
	} else if s.Preset == "" {
		return fmt.Errorf("camera is required without a preset")
	}

	for name, mat := range s.Materials {
		if err := mat.Validate(); err != nil {
			return fmt.Errorf("material %q: %w", name, err)
		}
	}

	for i, obj := range s.Objects {
		if err := obj.Validate(); err != nil {
			return fmt.Errorf("object %d (%s): %w", i, obj.Type, err)
		}
		if _, ok := s.Materials[obj.Material]; !ok {
			return fmt.Errorf("object %d (%s): undefined material %q", i, obj.Type, obj.Material)
		}
	}

	return nil
}

// Validate checks the camera parameters
func (c *CameraConfig) Validate() error {
	for field, v := range map[string]Vector{"center": c.Center, "look_at": c.LookAt, "up": c.Up} {
		if err := v.check(field); err != nil {
			return err
		}
	}
	if c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", c.Width)
	}
	if c.AspectRatio <= 0 {
		return fmt.Errorf("aspect_ratio must be positive, got %g", c.AspectRatio)
	}
	if c.VFov <= 0 || c.VFov >= 180 {
		return fmt.Errorf("vfov must be in (0, 180), got %g", c.VFov)
	}
	if c.Center.Vec3() == c.LookAt.Vec3() {
		return fmt.Errorf("center and look_at coincide")
	}
	return nil
}

// Validate checks the material type and its parameters
func (m *MaterialConfig) Validate() error {
	switch m.Type {
	case "lambertian":
		if !m.Albedo.IsSet() {
			return fmt.Errorf("lambertian requires albedo")
		}
		return m.Albedo.check("albedo")
	case "emissive":
		if !m.Emission.IsSet() {
			return fmt.Errorf("emissive requires emission")
		}
		return m.Emission.check("emission")
	default:
		return fmt.Errorf("unknown material type %q", m.Type)
	}
}

// Validate checks that the fields required by the object type are present
func (o *ObjectConfig) Validate() error {
	for field, v := range map[string]Vector{
		"center": o.Center, "corner": o.Corner, "u": o.U, "v": o.V, "size": o.Size, "rotation": o.Rotation,
	} {
		if err := v.check(field); err != nil {
			return err
		}
	}

	switch o.Type {
	case "sphere":
		if !o.Center.IsSet() || o.Radius <= 0 {
			return fmt.Errorf("sphere requires center and a positive radius")
		}
	case "quad":
		if !o.Corner.IsSet() || !o.U.IsSet() || !o.V.IsSet() {
			return fmt.Errorf("quad requires corner, u and v")
		}
	case "triangle":
		if len(o.Vertices) != 3 {
			return fmt.Errorf("triangle requires exactly 3 vertices, got %d", len(o.Vertices))
		}
	case "box":
		if !o.Center.IsSet() || !o.Size.IsSet() {
			return fmt.Errorf("box requires center and size")
		}
	case "mesh":
		if o.PLY == "" && (len(o.Vertices) == 0 || len(o.Faces) == 0) {
			return fmt.Errorf("mesh requires either ply or vertices and faces")
		}
		if o.PLY != "" && len(o.Vertices) > 0 {
			return fmt.Errorf("mesh takes ply or vertices, not both")
		}
	default:
		return fmt.Errorf("unknown object type %q", o.Type)
	}

	for i, v := range o.Vertices {
		if len(v) != 3 {
			return fmt.Errorf("vertex %d: want 3 components, got %d", i, len(v))
		}
	}
	return nil
}
