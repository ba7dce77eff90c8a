package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/lights"
	"github.com/df07/go-pathtracer/pkg/material"
)

// SelfIntersectionEpsilon is the minimum ray parameter accepted by Intersect,
// so rays leaving a surface do not hit it again at t ≈ 0
const SelfIntersectionEpsilon = 1e-4

// Scene contains all the elements needed for rendering
// After Preprocess a scene is only read, so any number of goroutines may query it.
type Scene struct {
	Camera          *geometry.Camera
	CameraConfig    geometry.CameraConfig
	Objects         []geometry.Object // Objects in the scene, in insertion order
	BackgroundColor core.Vec3         // Radiance of camera rays that escape
	SamplingConfig  SamplingConfig
	SplitMethod     geometry.SplitMethod
	BVH             *geometry.BVH // Acceleration structure for ray-object intersection

	lights *lights.AreaLightSampler
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int     // Number of rays per pixel
	MaxDepth        int     // Hard cap on path vertices; 0 renders black
	RussianRoulette float64 // Probability of continuing a path at each bounce
}

// Preprocess prepares the scene for rendering: it builds the BVH once and
// caches the emissive objects for light sampling
func (s *Scene) Preprocess() error {
	if s.SamplingConfig.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative, got %d", s.SamplingConfig.MaxDepth)
	}
	if rr := s.SamplingConfig.RussianRoulette; rr < 0 || rr > 1 {
		return fmt.Errorf("russian roulette probability must be in [0, 1], got %g", rr)
	}
	for i, obj := range s.Objects {
		if obj == nil {
			return fmt.Errorf("object %d is nil", i)
		}
	}

	s.BVH = geometry.NewBVH(s.Objects, s.SplitMethod)

	s.lights = lights.NewAreaLightSampler(s.Objects)

	if s.Camera == nil && s.CameraConfig.Width > 0 {
		s.Camera = geometry.NewCamera(s.CameraConfig)
	}

	return nil
}

// Intersect returns the nearest hit along the ray, or an intersection with Happened == false
func (s *Scene) Intersect(ray core.Ray) geometry.Intersection {
	if s.BVH == nil {
		hit, _ := s.Trace(ray, s.Objects)
		return hit
	}
	return s.BVH.Intersect(ray, SelfIntersectionEpsilon, geometry.NoHit().Distance)
}

// Trace scans objects linearly and returns the nearest hit with the index of the object hit (-1 on a miss).
// It is the reference the BVH is checked against.
func (s *Scene) Trace(ray core.Ray, objects []geometry.Object) (geometry.Intersection, int) {
	closest := geometry.NoHit()
	index := -1
	for i, obj := range objects {
		if hit := obj.Intersect(ray, SelfIntersectionEpsilon, closest.Distance); hit.Happened {
			closest = hit
			index = i
		}
	}
	return closest, index
}

// SampleLight picks a point on an emissive object, choosing objects proportionally to their area.
// The pdf is per unit area over the whole emissive surface, 1/EmissiveArea().
// Without emitters it returns a non-hit and pdf 0.
func (s *Scene) SampleLight(sampler core.Sampler) (geometry.Intersection, float64) {
	if s.lights == nil {
		return geometry.NoHit(), 0
	}
	return s.lights.Sample(sampler)
}

// EmissiveArea returns the summed area of every emissive object
func (s *Scene) EmissiveArea() float64 {
	if s.lights == nil {
		return 0
	}
	return s.lights.TotalArea()
}

// Emitters returns the emissive objects found by Preprocess
func (s *Scene) Emitters() []geometry.Object {
	if s.lights == nil {
		return nil
	}
	return s.lights.Emitters()
}

// PrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) PrimitiveCount() int {
	count := 0
	for _, obj := range s.Objects {
		switch o := obj.(type) {
		case *geometry.TriangleMesh:
			count += o.TriangleCount()
		case *geometry.Box:
			count += len(o.Faces())
		default:
			count++
		}
	}
	return count
}

// AddSphereLight adds a spherical light to the scene
func (s *Scene) AddSphereLight(center core.Vec3, radius float64, emission core.Vec3) *geometry.Sphere {
	light := geometry.NewSphere(center, radius, material.NewEmissive(emission))
	s.Objects = append(s.Objects, light)
	return light
}

// AddQuadLight adds a rectangular area light to the scene; it emits toward u × v
func (s *Scene) AddQuadLight(corner, u, v core.Vec3, emission core.Vec3) *geometry.Quad {
	light := geometry.NewQuad(corner, u, v, material.NewEmissive(emission))
	s.Objects = append(s.Objects, light)
	return light
}
