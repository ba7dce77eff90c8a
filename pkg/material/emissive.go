package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Emissive represents a light-emitting material
// Emitters do not reflect: the estimator returns their emission and stops.
type Emissive struct {
	Radiance core.Vec3 // Emitted light color/intensity
}

// NewEmissive creates a new emissive material
func NewEmissive(emission core.Vec3) *Emissive {
	return &Emissive{Radiance: emission}
}

// HasEmission implements Material
func (e *Emissive) HasEmission() bool {
	return !e.Radiance.IsZero()
}

// Emission returns the emitted light for this material
func (e *Emissive) Emission() core.Vec3 {
	return e.Radiance
}

// Eval implements Material; lights don't reflect
func (e *Emissive) Eval(wi, wo, normal core.Vec3) core.Vec3 {
	return core.Vec3{X: 0, Y: 0, Z: 0}
}

// Sample implements Material; emitters never continue a path, so the normal is returned
func (e *Emissive) Sample(wi, normal core.Vec3, sampler core.Sampler) core.Vec3 {
	return normal
}

// PDF implements Material; emissive materials don't scatter, so PDF is always 0
func (e *Emissive) PDF(wi, wo, normal core.Vec3) float64 {
	return 0.0
}
