package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Sphere represents a sphere shape
// A negative radius turns the surface inside out: normals point toward the center,
// which makes an enclosing sphere emit inward.
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, material material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Intersect tests if a ray intersects with the sphere
func (s *Sphere) Intersect(ray core.Ray, tMin, tMax float64) Intersection {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return NoHit()
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root <= tMin || root >= tMax {
		root = (-halfB + sqrtD) / a
		if root <= tMin || root >= tMax {
			return NoHit()
		}
	}

	outwardNormal := ray.At(root).Subtract(s.Center).Multiply(1.0 / s.Radius)
	return newHit(ray, root, outwardNormal, s.Material, s)
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	r := math.Abs(s.Radius)
	radius := core.NewVec3(r, r, r)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}

// Area returns 4πr²
func (s *Sphere) Area() float64 {
	return 4 * math.Pi * s.Radius * s.Radius
}

// HasEmit implements Object
func (s *Sphere) HasEmit() bool {
	return hasEmission(s.Material)
}

// Sample picks a point uniformly on the sphere surface
func (s *Sphere) Sample(sampler core.Sampler) (Intersection, float64) {
	dir := core.SampleOnUnitSphere(sampler.Get2D())
	point := s.Center.Add(dir.Multiply(s.Radius))
	normal := point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	return newSample(point, normal, s.Material, s), 1.0 / s.Area()
}
