package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Object is an intersectable primitive that can also be sampled as a light source
type Object interface {
	// Intersect returns the nearest hit with t in (tMin, tMax), or a record with Happened == false
	Intersect(ray core.Ray, tMin, tMax float64) Intersection

	// BoundingBox returns the world-space bounds used by the BVH
	BoundingBox() core.AABB

	// Area returns the total surface area
	Area() float64

	// HasEmit reports whether the object's material emits light
	HasEmit() bool

	// Sample picks a point uniformly over the surface.
	// Returns the point as an intersection (outward normal, emitted radiance) and its pdf per unit area.
	Sample(sampler core.Sampler) (Intersection, float64)
}

// Intersection is the result of a visibility query or a surface sample.
// When Happened is false every other field is meaningless except Distance, which is +Inf.
type Intersection struct {
	Happened bool
	Coords   core.Vec3         // World-space hit point
	Normal   core.Vec3         // Unit surface normal
	Distance float64           // Ray parameter of the hit
	Emit     core.Vec3         // Radiance emitted at this point
	Material material.Material // Material of the hit object
	Object   Object            // Object that was hit or sampled
}

// NoHit returns the "nothing was hit" sentinel
func NoHit() Intersection {
	return Intersection{Distance: math.Inf(1)}
}

// SetFaceNormal stores the normal facing against the incoming ray
func (h *Intersection) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	if ray.Direction.Dot(outwardNormal) < 0 {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// newHit fills in the fields shared by every primitive hit
func newHit(ray core.Ray, t float64, outwardNormal core.Vec3, mat material.Material, obj Object) Intersection {
	hit := Intersection{
		Happened: true,
		Coords:   ray.At(t),
		Distance: t,
		Material: mat,
		Object:   obj,
	}
	hit.SetFaceNormal(ray, outwardNormal)
	hit.Emit = emissionOf(mat)
	return hit
}

// newSample builds the intersection record returned by Object.Sample
func newSample(point, normal core.Vec3, mat material.Material, obj Object) Intersection {
	return Intersection{
		Happened: true,
		Coords:   point,
		Normal:   normal,
		Emit:     emissionOf(mat),
		Material: mat,
		Object:   obj,
	}
}

func emissionOf(mat material.Material) core.Vec3 {
	if mat != nil && mat.HasEmission() {
		return mat.Emission()
	}
	return core.Vec3{}
}

func hasEmission(mat material.Material) bool {
	return mat != nil && mat.HasEmission()
}
