package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Base color/reflectance
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// HasEmission implements Material
func (l *Lambertian) HasEmission() bool {
	return false
}

// Emission implements Material
func (l *Lambertian) Emission() core.Vec3 {
	return core.Vec3{}
}

// Eval returns albedo/π when the viewer is on the normal's side of the surface
func (l *Lambertian) Eval(wi, wo, normal core.Vec3) core.Vec3 {
	if wo.Dot(normal) <= 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0} // Below surface
	}
	return l.Albedo.Multiply(1.0 / math.Pi)
}

// Sample generates a cosine-weighted direction in the hemisphere around normal
func (l *Lambertian) Sample(wi, normal core.Vec3, sampler core.Sampler) core.Vec3 {
	return core.SampleCosineHemisphere(normal, sampler.Get2D())
}

// PDF returns cos(θ)/π for the sampled direction -wi
func (l *Lambertian) PDF(wi, wo, normal core.Vec3) float64 {
	if wo.Dot(normal) <= 0 {
		return 0.0
	}
	cosTheta := wi.Negate().Dot(normal)
	if cosTheta <= 0 {
		return 0.0
	}
	return cosTheta / math.Pi
}
