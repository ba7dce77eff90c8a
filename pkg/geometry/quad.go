package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Quad represents a parallelogram defined by a corner and two edge vectors
type Quad struct {
	Corner   core.Vec3         // One corner of the quad
	U        core.Vec3         // First edge vector
	V        core.Vec3         // Second edge vector
	Normal   core.Vec3         // Normal vector (computed from U × V)
	Material material.Material // Material of the quad
	D        float64           // Plane equation constant: ax + by + cz = d
	W        core.Vec3         // Cached cross product for barycentric coordinates
	area     float64
}

// NewQuad creates a new quad from a corner point and two edge vectors
// The emitting side of a quad light is the side U × V points to.
func NewQuad(corner, u, v core.Vec3, material material.Material) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()

	return &Quad{
		Corner:   corner,
		U:        u,
		V:        v,
		Normal:   normal,
		Material: material,
		D:        normal.Dot(corner),
		W:        cross.Multiply(1.0 / cross.Dot(cross)),
		area:     cross.Length(),
	}
}

// Intersect tests if a ray intersects with the quad
func (q *Quad) Intersect(ray core.Ray, tMin, tMax float64) Intersection {
	denominator := ray.Direction.Dot(q.Normal)

	// Ray parallel to the plane
	if math.Abs(denominator) < 1e-8 {
		return NoHit()
	}

	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator
	if t <= tMin || t >= tMax {
		return NoHit()
	}

	// Planar coordinates of the hit relative to the corner
	hitVector := ray.At(t).Subtract(q.Corner)
	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return NoHit()
	}

	return newHit(ray, t, q.Normal, q.Material, q)
}

// BoundingBox returns the bounds of the four corners, padded so flat quads have volume
func (q *Quad) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(
		q.Corner,
		q.Corner.Add(q.U),
		q.Corner.Add(q.V),
		q.Corner.Add(q.U).Add(q.V),
	).Expand(1e-4)
}

// Area returns |U × V|
func (q *Quad) Area() float64 {
	return q.area
}

// HasEmit implements Object
func (q *Quad) HasEmit() bool {
	return hasEmission(q.Material)
}

// Sample picks a point uniformly on the quad
func (q *Quad) Sample(sampler core.Sampler) (Intersection, float64) {
	uv := sampler.Get2D()
	point := q.Corner.Add(q.U.Multiply(uv.X)).Add(q.V.Multiply(uv.Y))
	return newSample(point, q.Normal, q.Material, q), 1.0 / q.area
}
