package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/material"
)

// FromConfig builds a scene from its configuration. Objects are added to the preset,
// if one is named; render settings always replace the preset's sampling configuration.
func FromConfig(sc config.SceneConfig, rc config.RenderConfig) (*Scene, error) {
	s := &Scene{}
	if sc.Preset != "" {
		preset, err := NewPreset(sc.Preset)
		if err != nil {
			return nil, err
		}
		s = preset
	}

	if sc.Background.IsSet() {
		s.BackgroundColor = sc.Background.Vec3()
	}
	if sc.Camera != nil {
		s.CameraConfig = cameraConfig(sc.Camera)
		s.Camera = nil
	}

	materials := make(map[string]material.Material, len(sc.Materials))
	for name, mc := range sc.Materials {
		mat, err := buildMaterial(mc)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}

	for i, oc := range sc.Objects {
		mat, ok := materials[oc.Material]
		if !ok {
			return nil, fmt.Errorf("object %d (%s): undefined material %q", i, oc.Type, oc.Material)
		}
		obj, err := buildObject(oc, mat)
		if err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, oc.Type, err)
		}
		s.Objects = append(s.Objects, obj)
	}

	split, err := geometry.ParseSplitMethod(rc.BVHSplit)
	if err != nil {
		return nil, err
	}
	s.SplitMethod = split
	s.SamplingConfig = SamplingConfig{
		SamplesPerPixel: rc.SamplesPerPixel,
		MaxDepth:        rc.MaxDepth,
		RussianRoulette: rc.RussianRoulette,
	}

	return s, nil
}

func cameraConfig(c *config.CameraConfig) geometry.CameraConfig {
	return geometry.CameraConfig{
		Center:        c.Center.Vec3(),
		LookAt:        c.LookAt.Vec3(),
		Up:            c.Up.Vec3(),
		Width:         c.Width,
		AspectRatio:   c.AspectRatio,
		VFov:          c.VFov,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDistance,
	}
}

func buildMaterial(mc config.MaterialConfig) (material.Material, error) {
	switch mc.Type {
	case "lambertian":
		return material.NewLambertian(mc.Albedo.Vec3()), nil
	case "emissive":
		return material.NewEmissive(mc.Emission.Vec3()), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", mc.Type)
	}
}

func buildObject(oc config.ObjectConfig, mat material.Material) (geometry.Object, error) {
	switch oc.Type {
	case "sphere":
		return geometry.NewSphere(oc.Center.Vec3(), oc.Radius, mat), nil
	case "quad":
		return geometry.NewQuad(oc.Corner.Vec3(), oc.U.Vec3(), oc.V.Vec3(), mat), nil
	case "triangle":
		if len(oc.Vertices) != 3 {
			return nil, fmt.Errorf("want 3 vertices, got %d", len(oc.Vertices))
		}
		return geometry.NewTriangle(oc.Vertices[0].Vec3(), oc.Vertices[1].Vec3(), oc.Vertices[2].Vec3(), mat), nil
	case "box":
		return geometry.NewBox(oc.Center.Vec3(), oc.Size.Vec3(), degreesToRadians(oc.Rotation.Vec3()), mat), nil
	case "mesh":
		return buildMesh(oc, mat)
	default:
		return nil, fmt.Errorf("unknown object type %q", oc.Type)
	}
}

func buildMesh(oc config.ObjectConfig, mat material.Material) (geometry.Object, error) {
	var vertices []core.Vec3
	var faces []int
	if oc.PLY != "" {
		data, err := loaders.LoadPLY(oc.PLY)
		if err != nil {
			return nil, err
		}
		vertices, faces = data.Vertices, data.Faces
	} else {
		vertices = make([]core.Vec3, len(oc.Vertices))
		for i, v := range oc.Vertices {
			vertices[i] = v.Vec3()
		}
		faces = oc.Faces
	}

	options := &geometry.TriangleMeshOptions{}
	if oc.Rotation.IsSet() {
		rotation := degreesToRadians(oc.Rotation.Vec3())
		options.Rotation = &rotation
	}
	if oc.Center.IsSet() {
		center := oc.Center.Vec3()
		options.Center = &center
	}

	mesh, err := geometry.NewTriangleMesh(vertices, faces, mat, options)
	if err != nil {
		return nil, err
	}
	return mesh, nil
}

func degreesToRadians(v core.Vec3) core.Vec3 {
	return v.Multiply(math.Pi / 180)
}
