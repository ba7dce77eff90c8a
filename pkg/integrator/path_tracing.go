package integrator

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/scene"
)

const (
	// occlusionEpsilon is how much shorter than the light distance a shadow hit may be
	// and still count as reaching the light
	occlusionEpsilon = 5e-4

	// pdfEpsilon is the smallest sampling density the indirect term divides by
	pdfEpsilon = 1e-8
)

// PathTracingIntegrator implements unidirectional path tracing with next-event
// estimation and Russian roulette termination
type PathTracingIntegrator struct {
	scene *scene.Scene
}

// NewPathTracingIntegrator creates a new path tracing integrator for a preprocessed scene
func NewPathTracingIntegrator(s *scene.Scene) *PathTracingIntegrator {
	return &PathTracingIntegrator{scene: s}
}

// RayColor computes the color for a single primary ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, sampler core.Sampler) core.Vec3 {
	return pt.CastRay(ray, 0, sampler)
}

// CastRay returns the radiance arriving along ray at path depth depth.
// MaxDepth counts path vertices, the primary hit being depth 0: vertices at or beyond
// it contribute nothing, so MaxDepth 1 gives emission and direct light only.
// A miss returns the background color.
func (pt *PathTracingIntegrator) CastRay(ray core.Ray, depth int, sampler core.Sampler) core.Vec3 {
	if depth >= pt.scene.SamplingConfig.MaxDepth {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	ray.Direction = ray.Direction.Normalize()
	hit := pt.scene.Intersect(ray)
	if !hit.Happened {
		return pt.scene.BackgroundColor
	}

	return pt.shade(hit, ray.Direction.Negate(), depth, sampler)
}

// Shade estimates the radiance leaving hit toward wo, a unit vector pointing away from the surface
func (pt *PathTracingIntegrator) Shade(hit geometry.Intersection, wo core.Vec3, sampler core.Sampler) core.Vec3 {
	return pt.shade(hit, wo, 0, sampler)
}

// shade walks the path iteratively. Each vertex adds its direct lighting weighted by
// the throughput of the path so far; the indirect bounce becomes the next vertex.
func (pt *PathTracingIntegrator) shade(hit geometry.Intersection, wo core.Vec3, depth int, sampler core.Sampler) core.Vec3 {
	radiance := core.Vec3{X: 0, Y: 0, Z: 0}
	throughput := core.Vec3{X: 1, Y: 1, Z: 1}

	for {
		if hit.Material == nil {
			return radiance
		}

		// Emitters don't reflect
		if hit.Material.HasEmission() {
			return radiance.Add(throughput.MultiplyVec(hit.Material.Emission()))
		}

		radiance = radiance.Add(throughput.MultiplyVec(pt.directLighting(hit, wo, sampler)))

		next, nextWo, weight, ok := pt.indirectBounce(hit, wo, depth, sampler)
		if !ok {
			return radiance
		}

		throughput = throughput.MultiplyVec(weight)
		hit, wo = next, nextWo
		depth++
	}
}

// directLighting samples one point on the emitters and returns its unoccluded contribution
func (pt *PathTracingIntegrator) directLighting(hit geometry.Intersection, wo core.Vec3, sampler core.Sampler) core.Vec3 {
	lightHit, lightPdf := pt.scene.SampleLight(sampler)
	if !lightHit.Happened || lightPdf <= 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	toLight := lightHit.Coords.Subtract(hit.Coords)
	distanceSquared := toLight.LengthSquared()
	if distanceSquared == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	distance := math.Sqrt(distanceSquared)
	light2ObjDir := toLight.Multiply(-1.0 / distance)

	// Shadow ray toward the light
	shadow := pt.scene.Intersect(core.NewRay(hit.Coords, light2ObjDir.Negate()))
	if shadow.Distance < distance-occlusionEpsilon {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	fr := hit.Material.Eval(light2ObjDir, wo, hit.Normal)
	cosA := math.Max(0, hit.Normal.Dot(light2ObjDir.Negate()))
	cosB := math.Max(0, lightHit.Normal.Dot(light2ObjDir))

	return lightHit.Emit.MultiplyVec(fr).Multiply(cosA * cosB / distanceSquared / lightPdf)
}

// indirectBounce plays Russian roulette and, if the path survives, samples the next
// non-emissive vertex. The returned weight is f_r·cos/pdf/p for that bounce.
func (pt *PathTracingIntegrator) indirectBounce(hit geometry.Intersection, wo core.Vec3, depth int, sampler core.Sampler) (geometry.Intersection, core.Vec3, core.Vec3, bool) {
	p := pt.scene.SamplingConfig.RussianRoulette
	if sampler.Get1D() >= p {
		return geometry.Intersection{}, core.Vec3{}, core.Vec3{}, false
	}
	if depth+1 >= pt.scene.SamplingConfig.MaxDepth {
		return geometry.Intersection{}, core.Vec3{}, core.Vec3{}, false
	}

	dir := hit.Material.Sample(wo.Negate(), hit.Normal, sampler).Normalize()
	next := pt.scene.Intersect(core.NewRay(hit.Coords, dir))

	// Light reaching hit straight from an emitter is already in the direct term
	if !next.Happened || next.Material == nil || next.Material.HasEmission() {
		return geometry.Intersection{}, core.Vec3{}, core.Vec3{}, false
	}

	pdf := hit.Material.PDF(dir.Negate(), wo, hit.Normal)
	if pdf <= pdfEpsilon {
		return geometry.Intersection{}, core.Vec3{}, core.Vec3{}, false
	}

	fr := hit.Material.Eval(dir.Negate(), wo, hit.Normal)
	cosX := math.Max(0, hit.Normal.Dot(dir))
	weight := fr.Multiply(cosX / pdf / p)
	if !weight.IsFinite() {
		return geometry.Intersection{}, core.Vec3{}, core.Vec3{}, false
	}

	return next, dir.Negate(), weight, true
}
