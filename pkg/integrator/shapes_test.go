package integrator

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// sphereZone is the part of a sphere centered at the origin with minY <= y <= maxY,
// seen from the inside: sampled normals point toward the center.
type sphereZone struct {
	radius     float64
	minY, maxY float64
	material   material.Material
}

func (z *sphereZone) Intersect(ray core.Ray, tMin, tMax float64) geometry.Intersection {
	a := ray.Direction.Dot(ray.Direction)
	halfB := ray.Origin.Dot(ray.Direction)
	c := ray.Origin.Dot(ray.Origin) - z.radius*z.radius
	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return geometry.NoHit()
	}

	sqrtD := math.Sqrt(discriminant)
	for _, t := range []float64{(-halfB - sqrtD) / a, (-halfB + sqrtD) / a} {
		if t <= tMin || t >= tMax {
			continue
		}
		point := ray.At(t)
		if point.Y < z.minY || point.Y > z.maxY {
			continue
		}

		hit := geometry.Intersection{
			Happened: true,
			Coords:   point,
			Distance: t,
			Material: z.material,
			Object:   z,
		}
		hit.SetFaceNormal(ray, point.Multiply(1/z.radius))
		if z.material.HasEmission() {
			hit.Emit = z.material.Emission()
		}
		return hit
	}
	return geometry.NoHit()
}

func (z *sphereZone) BoundingBox() core.AABB {
	return core.NewAABB(core.NewVec3(-z.radius, z.minY, -z.radius), core.NewVec3(z.radius, z.maxY, z.radius))
}

// Area of a spherical zone is 2πR times its height
func (z *sphereZone) Area() float64 {
	return 2 * math.Pi * z.radius * (z.maxY - z.minY)
}

func (z *sphereZone) HasEmit() bool {
	return z.material.HasEmission()
}

// Sample is uniform over the zone: on a sphere, uniform height gives uniform area
func (z *sphereZone) Sample(sampler core.Sampler) (geometry.Intersection, float64) {
	u := sampler.Get2D()
	y := z.minY + u.X*(z.maxY-z.minY)
	r := math.Sqrt(math.Max(0, z.radius*z.radius-y*y))
	phi := 2 * math.Pi * u.Y
	point := core.NewVec3(r*math.Cos(phi), y, r*math.Sin(phi))

	sample := geometry.Intersection{
		Happened: true,
		Coords:   point,
		Normal:   point.Multiply(-1 / z.radius),
		Material: z.material,
		Object:   z,
	}
	if z.material.HasEmission() {
		sample.Emit = z.material.Emission()
	}
	return sample, 1 / z.Area()
}

// countingMaterial wraps a material and counts calls to Sample
type countingMaterial struct {
	material.Material
	samples int
}

func (m *countingMaterial) Sample(wi, normal core.Vec3, sampler core.Sampler) core.Vec3 {
	m.samples++
	return m.Material.Sample(wi, normal, sampler)
}

// zeroPDFMaterial reflects like a Lambertian surface but reports a zero sampling density
type zeroPDFMaterial struct {
	*material.Lambertian
}

func (zeroPDFMaterial) PDF(wi, wo, normal core.Vec3) float64 {
	return 0
}

// panicSampler fails the test if the estimator draws any random number
type panicSampler struct{}

func (panicSampler) Get1D() float64   { panic("unexpected Get1D") }
func (panicSampler) Get2D() core.Vec2 { panic("unexpected Get2D") }
func (panicSampler) Get3D() core.Vec3 { panic("unexpected Get3D") }
