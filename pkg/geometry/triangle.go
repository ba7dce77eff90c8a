package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3         // The three vertices
	Material   material.Material // Material of the triangle
	normal     core.Vec3         // Cached normal vector
	bbox       core.AABB         // Cached bounding box
	area       float64
}

// triangleBoundsPadding keeps axis-aligned triangles from having flat bounding boxes
const triangleBoundsPadding = 1e-4

// NewTriangle creates a new triangle from three vertices
// The normal follows the right-hand rule over (V1-V0, V2-V0).
func NewTriangle(v0, v1, v2 core.Vec3, material material.Material) *Triangle {
	cross := v1.Subtract(v0).Cross(v2.Subtract(v0))
	return &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Material: material,
		normal:   cross.Normalize(),
		bbox:     core.NewAABBFromPoints(v0, v1, v2).Expand(triangleBoundsPadding),
		area:     0.5 * cross.Length(),
	}
}

// Intersect tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Intersect(ray core.Ray, tMin, tMax float64) Intersection {
	const epsilon = 1e-12

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in the plane of the triangle
	if a > -epsilon && a < epsilon {
		return NoHit()
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return NoHit()
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return NoHit()
	}

	tParam := f * edge2.Dot(q)
	if tParam <= tMin || tParam >= tMax {
		return NoHit()
	}

	return newHit(ray, tParam, t.normal, t.Material, t)
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// Normal returns the triangle's geometric normal
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// Area returns half the length of the edge cross product
func (t *Triangle) Area() float64 {
	return t.area
}

// HasEmit implements Object
func (t *Triangle) HasEmit() bool {
	return hasEmission(t.Material)
}

// Sample picks a point uniformly on the triangle
func (t *Triangle) Sample(sampler core.Sampler) (Intersection, float64) {
	b1, b2 := core.SampleUniformTriangle(sampler.Get2D())
	point := t.V0.
		Add(t.V1.Subtract(t.V0).Multiply(b1)).
		Add(t.V2.Subtract(t.V0).Multiply(b2))
	return newSample(point, t.normal, t.Material, t), 1.0 / t.area
}
